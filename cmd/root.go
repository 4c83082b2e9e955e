package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"photosort/internal/config"
	"photosort/internal/logging"
)

var configDirFlag string

var rootCmd = &cobra.Command{
	Use:   "photosort",
	Short: "photosort - triage a folder of photos into a folder tree",
	Long: "photosort walks a folder of photos one at a time and moves, deletes, skips or crops each one " +
		"into a destination tree. Every action can be undone while the session runs.",
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "", "directory holding settings.toml and folders.txt")
}

// environment is the resolved configuration shared by every subcommand.
type environment struct {
	dir      string
	settings config.Config
	folders  config.Folders
}

func loadEnvironment() (environment, error) {
	dir, err := config.Dir(configDirFlag)
	if err != nil {
		return environment{}, err
	}
	settings, err := config.Load(config.SettingsPath(dir))
	if err != nil {
		return environment{}, err
	}
	folders, err := config.LoadFolders(config.FoldersPath(dir))
	if err != nil {
		return environment{}, err
	}
	return environment{dir: dir, settings: settings, folders: folders}, nil
}

// logger opens the run log. Output goes to a file because the terminal may
// belong to the sorter UI.
func (e environment) logger(command string) (*slog.Logger, func() error, error) {
	path, err := e.settings.LogPath(e.dir)
	if err != nil {
		return nil, nil, err
	}
	logger, closeFn, err := logging.New(logging.Options{
		Level:       e.settings.Logging.Level,
		Format:      e.settings.Logging.Format,
		OutputPaths: []string{path},
	})
	if err != nil {
		return nil, nil, err
	}
	return logger.With("run", uuid.NewString(), "command", command), closeFn, nil
}
