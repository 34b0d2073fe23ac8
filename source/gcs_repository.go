package source

import (
	"context"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// GCSRepository reads the document from an object in a Google Cloud Storage
// bucket.
type GCSRepository struct {
	document
	Name       string // Name of the source
	BucketName string // Name of the GCS bucket
	ObjectName string // Name of the YAML object
	Anonymous  bool   // Access a public bucket without credentials

	Client        *storage.Client // GCS client, created on first refresh when nil
	clientOnce    sync.Once
	clientInitErr error
}

// GetName returns the name of the source.
func (g *GCSRepository) GetName() string {
	return g.Name
}

// Refresh downloads the object again.
func (g *GCSRepository) Refresh(ctx context.Context) error {
	g.clientOnce.Do(func() {
		if g.Client != nil {
			return
		}
		var opts []option.ClientOption
		if g.Anonymous {
			opts = append(opts, option.WithoutAuthentication())
		}
		g.Client, g.clientInitErr = storage.NewClient(ctx, opts...)
	})
	if g.clientInitErr != nil {
		return g.clientInitErr
	}

	reader, err := g.Client.Bucket(g.BucketName).Object(g.ObjectName).NewReader(ctx)
	if err != nil {
		logrus.WithField("bucket", g.BucketName).Debug("error creating reader")
		return err
	}
	defer reader.Close()

	fileContent, err := io.ReadAll(reader)
	if err != nil {
		logrus.Debug("error reading object")
		return err
	}
	return g.store(fileContent)
}
