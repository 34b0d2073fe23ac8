package source

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
)

// FileRepository reads the document from a local file.
type FileRepository struct {
	document
	Name string // Name of the source
	Path string // Path of the YAML file
}

// GetName returns the name of the source.
func (f *FileRepository) GetName() string {
	return f.Name
}

// Refresh reads the file again.
func (f *FileRepository) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		logrus.WithField("path", f.Path).Debug("error reading file")
		return err
	}
	if err := f.store(data); err != nil {
		logrus.WithField("path", f.Path).Debug("error unmarshalling file")
		return err
	}
	return nil
}
