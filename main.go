package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fedoragold/walletshell/addressbook"
	"github.com/fedoragold/walletshell/client"
	"github.com/fedoragold/walletshell/nodes"
	"github.com/fedoragold/walletshell/server"
	"github.com/fedoragold/walletshell/source"
	"github.com/sirupsen/logrus"
)

var (
	repoType    = flag.String("repo_type", "fs", "settings repository type: fs, http, s3, gcs or git")
	path        = flag.String("path", "", "settings file path, or path inside the git repository")
	URL         = flag.String("url", "", "settings url for http and git")
	bucket      = flag.String("bucket", "", "bucket holding the settings for s3 and gcs")
	object      = flag.String("object", "", "object name of the settings for s3 and gcs")
	region      = flag.String("region", "", "s3 region")
	branch      = flag.String("branch", "", "git branch to track")
	authKey     = flag.String("auth_key", "", "auth key for the server")
	addr        = flag.String("addr", "127.0.0.1:8080", "address the helper server listens on")
	refresh     = flag.Duration("refresh", time.Minute, "settings and node list refresh interval")
	logLevel    = flag.String("log_level", "info", "log level")
	addressBook = flag.String("address_book", "", "address book file, disabled when empty")
	apiKey      = flag.String("api_key", "", "X-API-Key header sent with -repo_type http, defaults to $WALLETSHELL_REPO_API_KEY")
)

func main() {
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(level)

	repository, err := NewRepository(*repoType, Options{
		Path:     *path,
		URL:      *URL,
		Bucket:   *bucket,
		Object:   *object,
		Region:   *region,
		Branch:   *branch,
		APIKey:   repoAPIKey(),
		Username: os.Getenv("WALLETSHELL_REPO_USERNAME"),
		Password: os.Getenv("WALLETSHELL_REPO_PASSWORD"),
	})
	if err != nil {
		logrus.WithError(err).Fatal("error creating repository")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// a failed first refresh is logged by the client, which serves defaults
	c, _ := client.NewClient(ctx, repository, *refresh)
	defer c.Close()
	s := c.Settings()

	var nodeSource source.Repository
	if s.RemoteNodeListUpdateURL != "" {
		nodeSource, err = source.NewWebRepository("nodes", s.RemoteNodeListUpdateURL)
		if err != nil {
			logrus.WithError(err).Fatal("invalid remote node list url")
		}
	}
	list := nodes.NewList(s.RemoteNodeListFallback, s.RemoteNodeDefaultHost, nodeSource)

	var book *addressbook.Book
	if *addressBook != "" {
		book, err = addressbook.Open(*addressBook, addressbook.Options{
			Obfuscate: s.AddressBookObfuscateEntries,
			Key:       s.AddressBookObfuscationKey,
			Format:    s.AddressFormat(),
			Samples:   s.AddressBookSampleEntries,
		})
		if err != nil {
			logrus.WithError(err).Fatal("error opening address book")
		}
	}

	srv := server.NewServer(c, list, book)
	srv.AuthKey = *authKey
	srv.NodeRefreshInterval = *refresh
	if fileRepository, ok := repository.(*source.FileRepository); ok {
		srv.WatchPath = fileRepository.Path
	}

	if err := srv.Run(ctx, *addr); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
	logrus.Info("server stopped")
}

func repoAPIKey() string {
	if *apiKey != "" {
		return *apiKey
	}
	return os.Getenv("WALLETSHELL_REPO_API_KEY")
}
