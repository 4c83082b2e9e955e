package triage

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/spf13/afero"

	"photosort/pkg/imgutil"
)

// ScanQueue lists the jpg, jpeg and png files directly inside dir, sorted by
// path. Subdirectories are not visited.
func ScanQueue(fsys afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imgutil.IsCandidate(entry.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}
