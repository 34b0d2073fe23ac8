package main

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/fedoragold/walletshell/source"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Options selects and configures the settings repository.
type Options struct {
	Name   string
	Path   string // file path for fs, path inside the repository for git
	URL    string
	Bucket string
	Object string
	Region string
	Branch string
	APIKey string

	// Optional credentials: S3 access key pair or git basic auth.
	Username string
	Password string
}

// NewRepository returns the repository of the given kind. An empty kind
// means fs.
func NewRepository(kind string, opts Options) (source.Repository, error) {
	if opts.Name == "" {
		opts.Name = "settings"
	}
	switch kind {
	case "", "fs":
		if opts.Path == "" {
			return nil, errors.New("path is required")
		}
		return &source.FileRepository{Name: opts.Name, Path: opts.Path}, nil
	case "http":
		if opts.URL == "" {
			return nil, errors.New("url is required")
		}
		repo, err := source.NewWebRepository(opts.Name, opts.URL)
		if err != nil {
			return nil, err
		}
		repo.APIKey = opts.APIKey
		return repo, nil
	case "s3":
		if opts.Bucket == "" || opts.Object == "" {
			return nil, errors.New("bucket and object are required")
		}
		return &source.S3Repository{
			Name:            opts.Name,
			BucketName:      opts.Bucket,
			ObjectName:      opts.Object,
			Region:          opts.Region,
			AccessKeyID:     opts.Username,
			SecretAccessKey: opts.Password,
		}, nil
	case "gcs":
		if opts.Bucket == "" || opts.Object == "" {
			return nil, errors.New("bucket and object are required")
		}
		return &source.GCSRepository{
			Name:       opts.Name,
			BucketName: opts.Bucket,
			ObjectName: opts.Object,
		}, nil
	case "git":
		if opts.URL == "" {
			return nil, errors.New("url is required")
		}
		if opts.Path == "" {
			return nil, errors.New("path is required")
		}
		u, err := url.Parse(opts.URL)
		if err != nil {
			return nil, err
		}
		repo := &source.GitRepository{
			Name:   opts.Name,
			URL:    u,
			Path:   opts.Path,
			Branch: opts.Branch,
		}
		if opts.Username != "" || opts.Password != "" {
			repo.Auth = &http.BasicAuth{Username: opts.Username, Password: opts.Password}
		}
		return repo, nil
	default:
		return nil, fmt.Errorf("unknown repository type %q", kind)
	}
}
