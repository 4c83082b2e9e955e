package tui

import (
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/afero"

	"photosort/internal/fileops"
	"photosort/pkg/imgutil"
)

// RenderFolderTree draws the navigable folders below root. With files set,
// the images inside each folder are listed too. Bin folders are left out.
func RenderFolderTree(fsys afero.Fs, root string, files bool) (string, error) {
	t, err := folderTree(fsys, root, root, files)
	if err != nil {
		return "", err
	}
	return t.String(), nil
}

func folderTree(fsys afero.Fs, dir, label string, files bool) (*tree.Tree, error) {
	entries, err := afero.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	t := tree.Root(titleStyle.Render(label)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(dimStyle)

	for _, entry := range entries {
		switch {
		case entry.IsDir():
			if fileops.IsReserved(entry.Name()) {
				continue
			}
			child, err := folderTree(fsys, filepath.Join(dir, entry.Name()), entry.Name()+"/", files)
			if err != nil {
				return nil, err
			}
			t.Child(child)
		case files && imgutil.IsCandidate(entry.Name()):
			t.Child(labelStyle.Render(entry.Name()))
		}
	}
	return t, nil
}
