package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"resolverd/internal/config"
)

// newConfigCommand groups configuration-file helpers.
func newConfigCommand() *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or generate resolverd's configuration file.",
	}
	cfgCmd.AddCommand(newConfigInitCommand())
	return cfgCmd
}

func newConfigInitCommand() *cobra.Command {
	var libraryRoot string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default resolverd config file to --config.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if libraryRoot != "" {
				cfg.LibraryRoots = []string{libraryRoot}
			}
			if err := config.Save(configFile, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", configFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&libraryRoot, "library-root", "", "initial library root to seed the config with")
	return cmd
}
