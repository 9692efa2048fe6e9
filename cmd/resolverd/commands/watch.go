package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"resolverd/internal/app"
	"resolverd/internal/domain"
	"resolverd/internal/watchdog"
)

// newWatchCommand builds "watch": scan every library root once, then keep
// running, resolving new album directories as fsnotify reports them
// settled, until interrupted.
func newWatchCommand() *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan every library root, then keep resolving new or changed album directories.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Build(configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			for _, root := range a.Config.LibraryRoots {
				batches, err := watchdog.ScanRoot(root)
				if err != nil {
					a.Logger.Error("watch %s: initial scan failed: %v", root, err)
					continue
				}
				if err := a.ProcessBatches(ctx, batches, false); err != nil {
					return err
				}
			}

			stop := make(chan struct{})
			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			watchers := make([]*watchdog.Watcher, 0, len(a.Config.LibraryRoots))
			for _, root := range a.Config.LibraryRoots {
				w, err := watchdog.New(root, debounce, a.Logger)
				if err != nil {
					a.Logger.Error("watch %s: %v", root, err)
					continue
				}
				watchers = append(watchers, w)
				go w.Run(stop)
			}

			for _, w := range watchers {
				w := w
				go func() {
					for batch := range w.Batches {
						if err := a.ProcessBatches(ctx, []domain.DirectoryBatch{batch}, false); err != nil {
							a.Logger.Error("watch: %v", err)
						}
					}
				}()
			}

			<-sig
			close(stop)
			return nil
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", 3*time.Second, "delay after a filesystem event before resolving its directory")
	return cmd
}
