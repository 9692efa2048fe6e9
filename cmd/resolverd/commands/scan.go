package commands

import (
	"context"

	"github.com/spf13/cobra"

	"resolverd/internal/app"
	"resolverd/internal/watchdog"
)

// newScanCommand builds the one-shot "scan" subcommand: walk every
// configured library root once, batching by album directory, and run
// every batch through the pipeline.
func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Walk every configured library root once and resolve each album directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			for _, root := range a.Config.LibraryRoots {
				batches, err := watchdog.ScanRoot(root)
				if err != nil {
					a.Logger.Error("scan %s: %v", root, err)
					continue
				}
				a.Logger.Info("scan %s: %d album directories", root, len(batches))
				if err := a.ProcessBatches(ctx, batches, false); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
