package commands

import (
	"context"

	"github.com/spf13/cobra"

	"resolverd/internal/app"
	"resolverd/internal/watchdog"
)

// newDeferredCommand groups the "deferred list" and "deferred process"
// subcommands for spec.md §6's defer_prompts queue: directories that
// needed operator input but were skipped instead, to be handled later in
// one batch.
func newDeferredCommand() *cobra.Command {
	deferred := &cobra.Command{
		Use:   "deferred",
		Short: "Inspect or replay directories that were deferred instead of prompted.",
	}
	deferred.AddCommand(newDeferredListCommand(), newDeferredProcessCommand())
	return deferred
}

func newDeferredListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List directories waiting for an operator decision.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			prompts, err := a.Store.ListDeferredPrompts(context.Background())
			if err != nil {
				return err
			}
			for _, p := range prompts {
				a.Logger.Info("%s: %s (deferred %s)", p.DirectoryPath, p.Reason, p.CreatedAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newDeferredProcessCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Re-run every deferred directory interactively, clearing each on success.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			// Deferred prompts exist precisely because interactive mode was
			// off; replaying them means asking the operator now regardless
			// of the configured mode.
			a.Pipeline.Interactive = true
			a.Pipeline.DeferPrompts = false

			ctx := context.Background()
			prompts, err := a.Store.ListDeferredPrompts(ctx)
			if err != nil {
				return err
			}

			for _, p := range prompts {
				batches, err := watchdog.ScanRoot(p.DirectoryPath)
				if err != nil || len(batches) == 0 {
					a.Logger.Error("%s: could not rescan directory: %v", p.DirectoryPath, err)
					continue
				}
				outcome, err := a.Pipeline.ProcessDirectory(ctx, batches[0], true)
				if err != nil {
					a.Logger.Error("%s: %v", p.DirectoryPath, err)
					continue
				}
				if !outcome.Deferred {
					_ = a.Store.ClearDeferredPrompt(ctx, p.DirectoryPath)
				}
				a.Logger.Info("%s: %s", p.DirectoryPath, outcome.State)
			}
			return nil
		},
	}
}
