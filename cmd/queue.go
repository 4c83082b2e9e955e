package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"photosort/internal/codec"
	"photosort/internal/imageinfo"
	"photosort/internal/triage"
)

var (
	queueFrom    string
	queueWorkers int
)

var queueCmd = &cobra.Command{
	Use:   "queue [flags]",
	Short: "List the photos waiting to be sorted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		from := queueFrom
		if from == "" {
			from = env.folders.From
		}
		if from == "" {
			return errors.New("no source folder; pass --from")
		}

		logger, closeLog, err := env.logger("queue")
		if err != nil {
			return err
		}
		defer closeLog()

		fsys := afero.NewOsFs()
		paths, err := triage.ScanQueue(fsys, from)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			fmt.Fprintln(os.Stdout, "No photos waiting in "+from)
			return nil
		}

		dec := codec.Standard{JPEGQuality: env.settings.Preview.JPEGQuality}
		infos, err := imageinfo.Collect(cmd.Context(), fsys, dec, paths, queueWorkers)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		for _, info := range infos {
			if info.Err != nil {
				logger.Warn("inspect failed", "path", info.Path, "error", info.Err)
			}
		}

		fmt.Fprintln(os.Stdout, renderQueue(infos))
		return nil
	},
}

func renderQueue(infos []imageinfo.Info) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "File", "Size", "Dimensions", "Taken", "Camera", "State"})

	for i, info := range infos {
		state := ""
		switch {
		case info.Err != nil && info.Width == 0:
			state = "unreadable"
		case info.Cropped:
			state = "cropped"
		}
		tw.AppendRow(table.Row{
			strconv.Itoa(i + 1),
			info.Name(),
			info.HumanSize(),
			info.Dimensions(),
			orDash(info.Taken),
			orDash(info.Camera),
			state,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	queueCmd.Flags().StringVar(&queueFrom, "from", "", "folder to list (defaults to the saved source folder)")
	queueCmd.Flags().IntVar(&queueWorkers, "workers", 0, "number of files inspected at once (defaults to one per CPU)")
	rootCmd.AddCommand(queueCmd)
}
