package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Folders are the persisted source and destination of a sorting session.
type Folders struct {
	From string
	To   string
}

// Complete reports whether both folders are set.
func (f Folders) Complete() bool {
	return f.From != "" && f.To != ""
}

// LoadFolders reads the FROM:/TO: file at path. A missing file yields empty
// folders and no error.
func LoadFolders(path string) (Folders, error) {
	var folders Folders

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return folders, nil
		}
		return folders, fmt.Errorf("open folders file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "FROM:"):
			folders.From = strings.TrimSpace(strings.TrimPrefix(line, "FROM:"))
		case strings.HasPrefix(line, "TO:"):
			folders.To = strings.TrimSpace(strings.TrimPrefix(line, "TO:"))
		}
	}
	if err := scanner.Err(); err != nil {
		return folders, fmt.Errorf("read folders file: %w", err)
	}
	return folders, nil
}

// SaveFolders writes both folders as absolute paths.
func SaveFolders(path string, folders Folders) error {
	from, err := filepath.Abs(folders.From)
	if err != nil {
		return err
	}
	to, err := filepath.Abs(folders.To)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	content := fmt.Sprintf("FROM: %s\nTO: %s\n", from, to)
	return os.WriteFile(path, []byte(content), 0o644)
}
