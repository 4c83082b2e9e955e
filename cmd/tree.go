package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photosort/internal/tui"
)

var (
	treeTo    string
	treeFiles bool
)

var treeCmd = &cobra.Command{
	Use:   "tree [flags]",
	Short: "Print the destination folder tree",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		to := treeTo
		if to == "" {
			to = env.folders.To
		}
		if to == "" {
			return errors.New("no destination folder; pass --to")
		}

		out, err := tui.RenderFolderTree(afero.NewOsFs(), to, treeFiles)
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, out)
		return nil
	},
}

func init() {
	treeCmd.Flags().StringVar(&treeTo, "to", "", "tree root (defaults to the saved destination folder)")
	treeCmd.Flags().BoolVar(&treeFiles, "files", false, "list photos inside each folder")
	rootCmd.AddCommand(treeCmd)
}
