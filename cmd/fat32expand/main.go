// fat32expand resizes a FAT32 filesystem in place to fill a device or
// image that has grown underneath it, without touching any file's
// payload bytes or its starting-cluster number.
//
// Build:
//
//	go build -o fat32expand ./cmd/fat32expand
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:           "fat32expand",
		Short:         "Grow a FAT32 filesystem in place after its device has grown",
		Long:          "fat32expand inspects a FAT32 image or block device and, if the underlying device has grown, relocates the minimum necessary data and extends the FAT to use the new space. See the 'info' and 'resize' subcommands.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newInfoCmd())
	root.AddCommand(newResizeCmd())
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fat32expand: %v\n", err)
		os.Exit(exitCodeFor(err))
	}
}
