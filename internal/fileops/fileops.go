// Package fileops moves, copies and bins image files on an afero filesystem.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// BinDirName is the reserved folder under the destination root that holds
	// every session bin.
	BinDirName = "Del"
	// BinPrefix starts the name of each per-session bin folder.
	BinPrefix = "Delete_folder_"
)

// IsReserved reports whether a directory name is hidden from navigation.
func IsReserved(name string) bool {
	return name == BinDirName || strings.HasPrefix(name, BinPrefix)
}

// BinFolder returns root/Del/Delete_folder_<sessionID>, creating both levels
// when they are missing.
func BinFolder(fsys afero.Fs, root, sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("bin folder: empty session id")
	}
	dir := filepath.Join(root, BinDirName, BinPrefix+sessionID)
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create bin folder %s: %w", dir, err)
	}
	return dir, nil
}

// Relocate moves src into dstDir under its own file name and returns the new
// path. A file already present at the destination is replaced.
func Relocate(fsys afero.Fs, src, dstDir string) (string, error) {
	if _, err := fsys.Stat(src); err != nil {
		return "", fmt.Errorf("relocate %s: %w", src, err)
	}
	info, err := fsys.Stat(dstDir)
	if err != nil {
		return "", fmt.Errorf("relocate %s: %w", src, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("relocate %s: %s is not a directory", src, dstDir)
	}

	dst := filepath.Join(dstDir, filepath.Base(src))
	if filepath.Clean(dst) == filepath.Clean(src) {
		return dst, nil
	}

	if err := fsys.Rename(src, dst); err == nil {
		return dst, nil
	}

	// Rename can fail across devices or over an existing file; fall back to
	// copy and remove. dst is only replaced once the copy is complete.
	if err := CopyFile(fsys, src, dst); err != nil {
		return "", fmt.Errorf("relocate %s: %w", src, err)
	}
	if err := fsys.Remove(src); err != nil {
		return "", fmt.Errorf("relocate %s: remove source: %w", src, err)
	}
	return dst, nil
}

// CopyFile copies src to dst with the source mode and modification time,
// replacing dst atomically.
func CopyFile(fsys afero.Fs, src, dst string) error {
	in, err := fsys.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	err = WriteAtomic(fsys, dst, info.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
	if err != nil {
		return err
	}

	mtime := info.ModTime()
	if err := fsys.Chtimes(dst, mtime, mtime); err != nil {
		return fmt.Errorf("copy %s: preserve times: %w", src, err)
	}
	return nil
}

// WriteAtomic streams content into a temp file beside path and renames it
// over path once fully written.
func WriteAtomic(fsys afero.Fs, path string, perm os.FileMode, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmpFile, err := afero.TempFile(fsys, dir, ".photosort-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmpFile.Name()
	defer fsys.Remove(tmpName)

	if err := write(tmpFile); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		return err
	}

	return replaceFile(fsys, tmpName, path)
}

// RemoveIfEmpty deletes dir when it holds no entries and reports whether it
// did.
func RemoveIfEmpty(fsys afero.Fs, dir string) (bool, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(entries) > 0 {
		return false, nil
	}
	if err := fsys.Remove(dir); err != nil {
		return false, err
	}
	return true, nil
}

// Exists reports whether path names an existing entry.
func Exists(fsys afero.Fs, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// replaceFile renames a finished temp file over dst.
func replaceFile(fsys afero.Fs, src, dst string) error {
	if err := fsys.Rename(src, dst); err == nil {
		return nil
	}
	if err := fsys.Remove(dst); err != nil && !os.IsNotExist(err) {
		return err
	}
	return fsys.Rename(src, dst)
}
