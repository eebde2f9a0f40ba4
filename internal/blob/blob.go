// Package blob implements the file-storage collaborator: opaque byte
// storage for uploaded images.
//
// The backend core treats it as a narrow external interface. Stored paths
// are persisted on the owning record; deletions are requested after the
// owning transaction commits, fire-and-forget - a failed delete is logged
// by the caller and never undoes the main operation.
package blob

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quandary-app/quandary/internal/apperr"
)

// Storage stores and deletes opaque files.
type Storage interface {
	// Store writes data and returns the path it can later be deleted by.
	// ext is the file extension including the dot, e.g. ".png".
	Store(data []byte, ext string) (path string, err error)

	// Delete removes a previously stored file. A failure is an
	// apperr.KindSideEffect error: callers log it and move on.
	Delete(path string) error
}

// DiskStorage stores files under a root directory with UUID names.
type DiskStorage struct {
	root string
}

// NewDiskStorage creates the root directory if needed.
func NewDiskStorage(root string) (*DiskStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, "could not prepare the upload directory", err)
	}
	return &DiskStorage{root: root}, nil
}

// Store writes data to a new UUID-named file and returns its path.
func (d *DiskStorage) Store(data []byte, ext string) (string, error) {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := uuid.Must(uuid.NewV7()).String() + ext
	path := filepath.Join(d.root, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperr.Wrap(apperr.KindStorage, "could not store the file", err)
	}
	return path, nil
}

// Delete removes a stored file. Deleting a path that is already gone is
// not an error.
func (d *DiskStorage) Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return apperr.Wrap(apperr.KindSideEffect,
			fmt.Sprintf("could not delete file %s", filepath.Base(path)), err)
	}
	return nil
}
