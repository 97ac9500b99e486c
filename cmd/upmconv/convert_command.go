package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"upmconv/internal/convert"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "convert <unitypackage> <package.json> <destination>",
		Short: "Convert a .unitypackage into a UPM zip archive",
		Long: `Convert reads a Unity asset package, resolves every asset's logical
path, and writes a Unity Package Manager zip archive whose members live
under the <name>@<version> prefix taken from the package.json descriptor.

Entries that cannot be reassembled are reported and skipped; the remaining
entries are still written and the command exits non-zero.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			summary, err := convert.Run(cmd.Context(), convert.Options{
				SourcePath:     args[0],
				ManifestPath:   args[1],
				DestPath:       args[2],
				Overwrite:      overwrite || cfg.Convert.Overwrite,
				SpoolCeiling:   cfg.SpoolCeilingBytes(),
				ZipCompression: cfg.Convert.ZipCompression,
				Logger:         logger,
			})
			if err != nil {
				if errors.Is(err, convert.ErrEntriesFailed) {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s with %d entries; %d entries failed\n",
						args[2], summary.Written, summary.Failed)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%s, %d entries in %s)\n",
				args[2], summary.Package, summary.Written, summary.Duration.Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace the destination archive if it exists")
	return cmd
}
