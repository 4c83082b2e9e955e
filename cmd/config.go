package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"photosort/internal/config"
	"photosort/internal/tui"
)

var (
	configFrom  string
	configTo    string
	configForce bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the config location, saved folders and effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		logPath, err := env.settings.LogPath(env.dir)
		if err != nil {
			return err
		}

		rows := []tui.SummaryRow{
			{Label: "Config dir", Value: env.dir},
			{Label: "From", Value: orDash(env.folders.From)},
			{Label: "To", Value: orDash(env.folders.To)},
			{Label: "Log file", Value: logPath},
		}
		fmt.Fprintln(os.Stdout, tui.RenderSummary(rows))

		data, err := toml.Marshal(env.settings)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\n%s\n%s", configHeadingStyle.Render(config.SettingsPath(env.dir)), data)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set --from DIR --to DIR",
	Short: "Save the source and destination folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFrom == "" && configTo == "" {
			return errors.New("nothing to set; pass --from and/or --to")
		}
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		folders, err := resolveFolders(env, configFrom, configTo)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "From: %s\nTo:   %s\n", folders.From, folders.To)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a settings.toml with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := config.Dir(configDirFlag)
		if err != nil {
			return err
		}
		path := config.SettingsPath(dir)
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists; use --force to overwrite", path)
		}
		if err := config.Save(path, config.Default()); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "Wrote "+path)
		return nil
	},
}

var configHeadingStyle = lipgloss.NewStyle().Bold(true).Foreground(tui.ColorAccent)

func init() {
	configSetCmd.Flags().StringVar(&configFrom, "from", "", "folder holding the photos to sort")
	configSetCmd.Flags().StringVar(&configTo, "to", "", "root of the destination folder tree")
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing settings file")
	configCmd.AddCommand(configShowCmd, configSetCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}
