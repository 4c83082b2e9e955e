// Package backup keeps a single pre-crop sidecar copy per image.
package backup

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"

	"photosort/internal/fileops"
)

// Suffix is appended to an image path to name its sidecar.
const Suffix = ".bak"

// ErrMissing is returned by Restore when no sidecar exists.
var ErrMissing = errors.New("backup missing")

// Manager creates, restores and discards sidecars on fs.
type Manager struct {
	fs afero.Fs
}

func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// Path returns the sidecar path for an image.
func Path(path string) string {
	return path + Suffix
}

func (m *Manager) Has(path string) bool {
	return fileops.Exists(m.fs, Path(path))
}

// Ensure copies path to its sidecar unless one already exists, so the first
// pre-crop state survives any number of later crops. It reports whether a new
// sidecar was written.
func (m *Manager) Ensure(path string) (bool, error) {
	if m.Has(path) {
		return false, nil
	}
	if err := fileops.CopyFile(m.fs, path, Path(path)); err != nil {
		return false, fmt.Errorf("backup %s: %w", path, err)
	}
	return true, nil
}

// Restore copies the sidecar back over path and removes the sidecar.
func (m *Manager) Restore(path string) error {
	if !m.Has(path) {
		return fmt.Errorf("restore %s: %w", path, ErrMissing)
	}
	if err := fileops.CopyFile(m.fs, Path(path), path); err != nil {
		return fmt.Errorf("restore %s: %w", path, err)
	}
	if err := m.fs.Remove(Path(path)); err != nil {
		return fmt.Errorf("restore %s: remove sidecar: %w", path, err)
	}
	return nil
}

// Discard removes the sidecar without restoring it. A missing sidecar is not
// an error.
func (m *Manager) Discard(path string) error {
	if !m.Has(path) {
		return nil
	}
	if err := m.fs.Remove(Path(path)); err != nil {
		return fmt.Errorf("discard backup %s: %w", path, err)
	}
	return nil
}
