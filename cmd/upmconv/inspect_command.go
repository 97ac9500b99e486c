package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"upmconv/internal/convert"
)

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect <unitypackage>",
		Short: "List the entries a conversion would produce",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			assets, inspectErr := convert.Inspect(cmd.Context(), convert.InspectOptions{
				SourcePath:   args[0],
				SpoolCeiling: cfg.SpoolCeilingBytes(),
				Logger:       logger,
			})
			if inspectErr != nil && assets == nil {
				return inspectErr
			}

			if asJSON {
				if err := writeJSON(cmd, assets); err != nil {
					return err
				}
				return inspectErr
			}

			rows := make([][]string, 0, len(assets))
			var total int64
			for _, asset := range assets {
				rows = append(rows, []string{asset.Path, strconv.FormatInt(asset.Size, 10)})
				total += asset.Size
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Path", "Bytes"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "%d entries, %d bytes\n", len(assets), total)
			return inspectErr
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the listing as JSON")
	return cmd
}
