package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oetiker/fat32expander/internal/device"
	"github.com/oetiker/fat32expander/internal/fat32err"
	"github.com/oetiker/fat32expander/internal/mount"
	"github.com/oetiker/fat32expander/internal/progress"
	"github.com/oetiker/fat32expander/internal/resize"
)

func newResizeCmd() *cobra.Command {
	var dryRun, verbose, force, noUI bool

	cmd := &cobra.Command{
		Use:   "resize [--dry-run] [--verbose] [--force] <path>",
		Short: "Grow a FAT32 filesystem in place to fill the device or image",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return usageErrorf("resize requires exactly one path argument")
			}
			path := args[0]

			if !dryRun && !mount.IsPrivileged() {
				fmt.Fprintln(cmd.ErrOrStderr(), "warning: not running as root/Administrator; raw device access may fail")
				if !force {
					return usageErrorf("not running as root/Administrator: pass --force to resize anyway")
				}
			}

			dev, err := device.OpenFileDevice(path, !dryRun)
			if err != nil {
				return err
			}
			defer dev.Close()

			report, err := resize.Info(dev, path)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report.String())
			fmt.Fprintln(cmd.OutOrStdout())

			if !report.CanGrow {
				return fat32err.New(fat32err.AlreadyMaxSize, "device offers no additional sectors beyond the current filesystem")
			}

			if !dryRun && !force {
				ok, err := confirm(cmd)
				if err != nil {
					return err
				}
				if !ok {
					return usageErrorf("aborted: pass --force to skip confirmation in automation contexts")
				}
			}

			var rep progress.Reporter = progress.NoopReporter{}
			var ui *progress.TermUI
			if verbose && !noUI {
				ui, err = progress.NewTermUI(fmt.Sprintf("RESIZE %s", path), []string{
					fmt.Sprintf("Current size: %d sectors (%d bytes)", report.TotalSectors, report.CurrentSizeBytes),
					fmt.Sprintf("Device size:  %d sectors", report.DeviceSectors),
				})
				if err != nil {
					return fmt.Errorf("ui init: %w", err)
				}
				defer ui.Close()
				rep = ui
			}

			opts := resize.Options{
				DevicePath: path,
				DryRun:     dryRun,
				Verbose:    verbose,
				Mounter:    mount.NewDefaultChecker(),
				Reporter:   rep,
			}

			result, err := resize.Run(dev, opts)
			if ui != nil {
				ui.Close()
			}
			if err != nil {
				return err
			}

			if verbose {
				fmt.Fprintf(cmd.OutOrStdout(), "run id: %s\n", result.RunID)
				for _, op := range result.Operations {
					fmt.Fprintln(cmd.OutOrStdout(), op)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "resized %s: %d -> %d bytes", path, result.OldSizeBytes, result.NewSizeBytes)
			if result.FATGrew {
				fmt.Fprintf(cmd.OutOrStdout(), " (FAT grew, %d clusters relocated)\n", result.ClustersRelocated)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), " (metadata only, FAT did not grow)")
			}
			if dryRun {
				fmt.Fprintln(cmd.OutOrStdout(), "dry-run: no bytes were written")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "plan the resize and report what would happen without writing anything")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "show per-phase progress, including a full-screen display unless --no-ui")
	cmd.Flags().BoolVar(&force, "force", false, "skip the interactive confirmation prompt (required in automation contexts)")
	cmd.Flags().BoolVar(&noUI, "no-ui", false, "with --verbose, print progress lines instead of a full-screen display")

	return cmd
}

func confirm(cmd *cobra.Command) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Proceed with resize? [y/N] ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes", nil
}
