// Package walletfile checks the paths the user picks for wallet files before
// they are handed to the wallet service.
package walletfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// DefaultExt is the extension given to wallet files created by the shell.
const DefaultExt = "wal"

const (
	blankPathMessage   = "Wallet file path cannot be left blank"
	invalidPathMessage = "Please specify a full path to the wallet file and make sure you have a proper write permission to the file"
)

var (
	// ErrBlankPath is matched by errors for an empty wallet path.
	ErrBlankPath = errors.New("blank wallet path")
	// ErrInvalidPath is matched by errors for a path that can not be used.
	ErrInvalidPath = errors.New("invalid wallet path")
)

// PathError carries the message shown to the user when a wallet path is
// rejected. errors.Is matches it against ErrBlankPath or ErrInvalidPath.
type PathError struct {
	Path    string
	Message string
	Err     error
}

func (e *PathError) Error() string {
	return e.Message
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// IsFileExist reports whether anything exists at path.
func IsFileExist(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// IsWritableDirectory reports whether path is a directory the current user
// can write to.
func IsWritableDirectory(path string) bool {
	if path == "" || !writable(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// IsPathWriteable reports whether the current user can write to path.
func IsPathWriteable(path string) bool {
	if path == "" {
		return false
	}
	if !writable(path) {
		logrus.WithField("path", path).Debug("path is not writable")
		return false
	}
	return true
}

// IsRegularFileAndWritable reports whether path is a regular file the
// current user can write to.
func IsRegularFileAndWritable(path string) bool {
	if path == "" || !writable(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// NormalizeFilename makes sure raw ends with the wallet extension ext.
func NormalizeFilename(raw, ext string) string {
	if raw == "" {
		return ""
	}
	ext = strings.TrimPrefix(ext, ".")
	current := filepath.Ext(strings.TrimSpace(raw))
	if strings.HasSuffix(current, "."+ext) {
		return raw
	}
	if strings.HasSuffix(current, ".") {
		return raw + ext
	}
	return raw + "." + ext
}

// ValidatePath turns fullpath into the absolute wallet file path to use.
// Relative paths are resolved against defaultDir, or the working directory
// when defaultDir is empty, and the wallet extension is appended when
// missing. A path naming a directory is rejected. When isExisting is set
// the wallet file must already exist and be writable.
func ValidatePath(ctx context.Context, fullpath, defaultDir string, isExisting bool, ext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if fullpath == "" {
		return "", &PathError{Message: blankPathMessage, Err: ErrBlankPath}
	}
	if ext == "" {
		ext = DefaultExt
	}

	base := defaultDir
	if base == "" {
		base = "."
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return "", &PathError{Path: fullpath, Message: invalidPathMessage, Err: errors.Join(ErrInvalidPath, err)}
	}
	resolved := fullpath
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(base, resolved)
	}
	resolved = filepath.Clean(resolved)
	if isDir(resolved) {
		return "", invalidPath(fullpath)
	}

	resolved = filepath.Clean(NormalizeFilename(resolved, ext))
	info, err := os.Stat(resolved)
	switch {
	case err == nil && info.IsDir():
		return "", invalidPath(fullpath)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		logrus.WithError(err).WithField("path", resolved).Debug("error checking wallet path")
	}

	if isExisting {
		if err != nil || !writable(resolved) {
			return "", invalidPath(fullpath)
		}
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return resolved, nil
}

func invalidPath(path string) error {
	return &PathError{Path: path, Message: invalidPathMessage, Err: ErrInvalidPath}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
