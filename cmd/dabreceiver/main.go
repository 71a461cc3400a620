// Command dabreceiver is the CLI surface spec.md §6 sketches: tune/decode
// an IQ stream into DAB+ audio, metadata, and scraped artifacts, or emit a
// synthetic IQ stream for testing. Subcommand structure and flag style
// adapted from playok-audio-modem/pc/cmd/server's flag-parsing +
// graceful-shutdown pattern, wired into github.com/spf13/cobra the way
// USA-RedDragon-DMRHub's cmd/root.go structures a multi-subcommand CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "dabreceiver",
		Short: "Software-defined DAB/DAB+ receiver",
	}

	root.AddCommand(newReceiveCommand())
	root.AddCommand(newSimulateTransmitterCommand())
	root.AddCommand(newDevicesCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
