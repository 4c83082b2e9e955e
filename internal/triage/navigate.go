package triage

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"photosort/internal/fileops"
)

// NavigableFolders lists the subfolders of parent sorted by name, leaving out
// the bin folders.
func (s *Session) NavigableFolders(parent string) ([]string, error) {
	return NavigableFolders(s.fs, parent)
}

// NavigableFolders lists the subfolders of parent sorted by name, leaving out
// the bin folders.
func NavigableFolders(fsys afero.Fs, parent string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, parent)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	var out []string
	for _, entry := range entries {
		if !entry.IsDir() || fileops.IsReserved(entry.Name()) {
			continue
		}
		out = append(out, filepath.Join(parent, entry.Name()))
	}
	return out, nil
}

// Folder is the destination folder currently being browsed.
func (s *Session) Folder() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder
}

// AtRoot reports whether browsing is at the destination root.
func (s *Session) AtRoot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.folder == s.destRoot
}

// Up browses to the parent of the current folder.
func (s *Session) Up() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.folder == s.destRoot {
		return failure(ErrNavigation, "up", s.folder, errors.New("already at the root folder"))
	}
	s.folder = filepath.Dir(s.folder)
	return nil
}

// Enter browses into folder without moving anything.
func (s *Session) Enter(folder string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, err := s.navigable(folder)
	if err != nil {
		return err
	}
	s.folder = folder
	return nil
}

// SelectFolder browses into folder when it has subfolders of its own.
// Otherwise the pending image is moved into it and browsing stays where it
// was. The result reports whether a move happened.
func (s *Session) SelectFolder(folder string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, err := s.navigable(folder)
	if err != nil {
		return false, err
	}
	children, err := NavigableFolders(s.fs, folder)
	if err != nil {
		return false, failure(ErrIO, "select", folder, err)
	}

	if len(children) > 0 {
		s.folder = folder
		return false, nil
	}

	if err := s.move(folder); err != nil {
		return false, err
	}
	return true, nil
}

// MoveHere moves the pending image into the folder being browsed and resets
// browsing to the destination root.
func (s *Session) MoveHere() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.move(s.folder)
	s.folder = s.destRoot
	return err
}

// CreateFolder makes a new subfolder of the folder being browsed.
func (s *Session) CreateFolder(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	switch {
	case name == "", name == ".", name == "..":
		return "", failure(ErrNavigation, "create folder", name, errors.New("empty folder name"))
	case strings.ContainsAny(name, `/\`):
		return "", failure(ErrNavigation, "create folder", name, errors.New("folder name must not contain path separators"))
	case fileops.IsReserved(name):
		return "", failure(ErrNavigation, "create folder", name, errors.New("folder name is reserved"))
	}

	path := filepath.Join(s.folder, name)
	if fileops.Exists(s.fs, path) {
		return "", failure(ErrIO, "create folder", path, fs.ErrExist)
	}
	if err := s.fs.Mkdir(path, 0o755); err != nil {
		return "", failure(ErrIO, "create folder", path, err)
	}
	s.log.Debug("folder created", "path", path)
	return path, nil
}

func (s *Session) navigable(folder string) (string, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return "", failure(ErrNavigation, "select", folder, err)
	}
	if !s.within(abs) {
		return "", failure(ErrNavigation, "select", abs, errors.New("outside the destination folder"))
	}
	if rel, _ := filepath.Rel(s.destRoot, abs); hasReservedPart(rel) {
		return "", failure(ErrNavigation, "select", abs, errors.New("bin folders cannot be browsed"))
	}
	info, err := s.fs.Stat(abs)
	if err != nil {
		return "", failure(ErrNavigation, "select", abs, err)
	}
	if !info.IsDir() {
		return "", failure(ErrNavigation, "select", abs, errors.New("not a directory"))
	}
	return abs, nil
}

func (s *Session) within(path string) bool {
	if path == "" {
		return false
	}
	rel, err := filepath.Rel(s.destRoot, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func hasReservedPart(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if fileops.IsReserved(part) {
			return true
		}
	}
	return false
}
