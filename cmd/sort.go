package cmd

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photosort/internal/codec"
	"photosort/internal/config"
	"photosort/internal/triage"
	"photosort/internal/tui"
)

var (
	sortFrom    string
	sortTo      string
	sortSession string
)

var sortCmd = &cobra.Command{
	Use:   "sort [flags]",
	Short: "Sort photos interactively",
	Long: "Opens the sorter on the source folder. Folders default to the ones saved by the last run; " +
		"folders given as flags are saved for next time.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !isTerminal(os.Stdout) || !isTerminal(os.Stdin) {
			return errors.New("sort needs an interactive terminal")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		folders, err := resolveFolders(env, sortFrom, sortTo)
		if err != nil {
			return err
		}

		logger, closeLog, err := env.logger("sort")
		if err != nil {
			return err
		}
		defer closeLog()

		dec := codec.Standard{JPEGQuality: env.settings.Preview.JPEGQuality}
		session, err := triage.New(triage.Options{
			Fs:        afero.NewOsFs(),
			SourceDir: folders.From,
			DestRoot:  folders.To,
			SessionID: sortSession,
			Codec:     dec,
			Logger:    logger,
		})
		if err != nil {
			return err
		}

		model := tui.NewModel(session, tui.Options{
			Codec:     dec,
			Logger:    logger,
			MaxWidth:  env.settings.Preview.MaxWidth,
			MaxHeight: env.settings.Preview.MaxHeight,
			CropFill:  env.settings.Preview.CropFill,
		})
		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return err
		}

		summary := session.Summary()
		logger.Info("session finished",
			"moved", summary.Moved,
			"deleted", summary.Deleted,
			"skipped", summary.Skipped,
			"remaining", summary.Remaining,
		)
		fmt.Fprintln(os.Stdout, tui.RenderSummary(tui.SummaryRows(summary, session.BinDir())))
		return nil
	},
}

// resolveFolders applies flag overrides to the saved folders and saves the
// result when anything changed.
func resolveFolders(env environment, from, to string) (config.Folders, error) {
	folders := env.folders
	if from != "" {
		folders.From = from
	}
	if to != "" {
		folders.To = to
	}
	if !folders.Complete() {
		return folders, errors.New("source and destination folders are not set; pass --from and --to once")
	}
	if from != "" || to != "" {
		if err := config.SaveFolders(config.FoldersPath(env.dir), folders); err != nil {
			return folders, fmt.Errorf("save folders: %w", err)
		}
	}
	return folders, nil
}

func isTerminal(file *os.File) bool {
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func init() {
	sortCmd.Flags().StringVar(&sortFrom, "from", "", "folder holding the photos to sort")
	sortCmd.Flags().StringVar(&sortTo, "to", "", "root of the destination folder tree")
	sortCmd.Flags().StringVar(&sortSession, "session", "", "10-digit id naming this run's bin folder (random when empty)")
	rootCmd.AddCommand(sortCmd)
}
