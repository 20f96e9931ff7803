package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/resize"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <path>",
		Short: "Show FAT32 geometry and resize headroom for an image or device (read-only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("info requires exactly one path argument")
			}
			path := args[0]

			dev, err := device.OpenFileDevice(path, false)
			if err != nil {
				return err
			}
			defer dev.Close()

			report, err := resize.Info(dev, path)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			return nil
		},
	}
}
