package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/sirupsen/logrus"
)

// GitRepository reads the document from a file in a Git repository. The
// repository is cloned into memory on the first refresh and pulled on every
// refresh after that.
type GitRepository struct {
	document
	Name   string          // Name of the source
	URL    *url.URL        // Clone URL of the Git repository
	Path   string          // Path of the YAML file inside the repository
	Branch string          // Branch to track, the remote HEAD when empty
	Auth   *http.BasicAuth // Optional credentials for HTTP remotes

	mu            sync.Mutex // serializes clone and pull
	gitRepository *git.Repository
	fs            billy.Filesystem
}

// GetName returns the name of the source.
func (g *GitRepository) GetName() string {
	return g.Name
}

func (g *GitRepository) auth() transport.AuthMethod {
	if g.Auth == nil {
		return nil
	}
	return g.Auth
}

// Refresh pulls the repository and reads the file again.
func (g *GitRepository) Refresh(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.sync(ctx); err != nil {
		return err
	}

	file, err := g.fs.Open(g.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", g.Path, err)
	}
	defer func(file billy.File) {
		err := file.Close()
		if err != nil {
			logrus.WithError(err).Error("error closing file")
		}
	}(file)

	fileContent, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", g.Path, err)
	}
	if err := g.store(fileContent); err != nil {
		logrus.Debug("error unmarshalling file")
		return err
	}
	return nil
}

func (g *GitRepository) sync(ctx context.Context) error {
	if g.gitRepository == nil {
		fs := memfs.New()
		logrus.Debugf("Cloning %s into memory", g.URL.Redacted())
		opts := &git.CloneOptions{
			URL:  g.URL.String(),
			Auth: g.auth(),
		}
		if g.Branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(g.Branch)
			opts.SingleBranch = true
		}
		r, err := git.CloneContext(ctx, memory.NewStorage(), fs, opts)
		if err != nil {
			return fmt.Errorf("clone %s: %w", g.URL.Redacted(), err)
		}
		logrus.Debug("Cloned")
		g.gitRepository = r
		g.fs = fs
		return nil
	}

	w, err := g.gitRepository.Worktree()
	if err != nil {
		return err
	}
	logrus.Debug("Pulling")
	pullOptions := &git.PullOptions{
		RemoteName: git.DefaultRemoteName,
		Auth:       g.auth(),
		Force:      true,
	}
	if g.Branch != "" {
		pullOptions.ReferenceName = plumbing.NewBranchReferenceName(g.Branch)
		pullOptions.SingleBranch = true
	}
	err = w.PullContext(ctx, pullOptions)
	switch {
	case errors.Is(err, git.NoErrAlreadyUpToDate):
		logrus.Debug("Already up to date")
	case err != nil:
		return fmt.Errorf("pull %s: %w", g.URL.Redacted(), err)
	default:
		logrus.Debug("Pulled")
	}
	return nil
}
