// Package commands holds resolverd's cobra subcommands, one file per
// subcommand exactly as the teacher's cmd/dab-downloader/commands does.
package commands

import (
	"github.com/spf13/cobra"
)

var configFile string

// NewRootCommand builds the resolverd root command with every subcommand
// attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "resolverd",
		Short: "Reconciles an existing audio library's tags against MusicBrainz and Discogs.",
	}

	root.PersistentFlags().StringVar(&configFile, "config", "resolverd.yaml", "path to the resolverd config file")

	root.AddCommand(
		newScanCommand(),
		newResolveCommand(),
		newWatchCommand(),
		newDeferredCommand(),
		newMovesCommand(),
		newConfigCommand(),
	)
	return root
}
