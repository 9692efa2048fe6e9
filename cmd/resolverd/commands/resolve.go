package commands

import (
	"context"

	"github.com/spf13/cobra"

	"resolverd/internal/app"
	"resolverd/internal/domain"
	"resolverd/internal/watchdog"
)

// newResolveCommand builds "resolve <dir>": force a single album directory
// through the pipeline with forcePrompt set, bypassing the directory-hash
// and already-processed skip policies (spec.md §4.1 stage 2's
// forcePrompt escape hatch), so an operator can re-run a directory they
// just fixed up by hand.
func newResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <directory>",
		Short: "Force-resolve a single album directory, ignoring cached skip state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			dir := args[0]
			batches, err := watchdog.ScanRoot(dir)
			if err != nil {
				return err
			}
			if len(batches) == 0 {
				batches = []domain.DirectoryBatch{{DirectoryPath: dir}}
			}
			return a.ProcessBatches(context.Background(), batches, true)
		},
	}
}
