package commands

import (
	"context"

	"github.com/spf13/cobra"

	"resolverd/internal/app"
)

// newMovesCommand groups move-history subcommands: spec.md §7 requires
// every apply-time relocation to be recorded so a bad run can be undone.
func newMovesCommand() *cobra.Command {
	moves := &cobra.Command{
		Use:   "moves",
		Short: "Inspect or undo file relocations performed by the organizer.",
	}
	moves.AddCommand(newMovesRollbackCommand())
	return moves
}

func newMovesRollbackCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Move the most recent relocations back to their source paths.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := context.Background()
			moves, err := a.Store.RecentMoves(ctx, limit)
			if err != nil {
				return err
			}
			if a.Pipeline.Relocator == nil {
				a.Logger.Error("moves rollback: organizer is disabled, nothing to roll back with")
				return nil
			}

			for _, m := range moves {
				a.Logger.Info("rolling back %s -> %s", m.TargetPath, m.SourcePath)
				if err := a.Pipeline.Relocator.Move(m.TargetPath, m.SourcePath); err != nil {
					a.Logger.Error("rollback %s: %v", m.TargetPath, err)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum number of recent moves to roll back")
	return cmd
}
