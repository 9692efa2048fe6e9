// Command resolverd is the daemon entrypoint: a cobra CLI exactly in the
// shape of the teacher's cmd/dab-downloader, generalized from "download
// music" subcommands to "scan, watch, and resolve an existing library"
// subcommands.
package main

import (
	"fmt"
	"os"

	"resolverd/cmd/resolverd/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
