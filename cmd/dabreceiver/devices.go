package main

import (
	"github.com/jeongseonghan/dabradio/internal/audio"
	"github.com/spf13/cobra"
)

func newDevicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio input and output devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Init(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.PrintDevices()
		},
	}
}
