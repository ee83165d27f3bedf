package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"osmblocks/internal/geom"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the footprints that extrude cleanly as GeoJSON",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("output", "o", "-", "output file, - for stdout")
}

func runExport(cmd *cobra.Command, _ []string) error {
	out, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cmd, "")
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.pipeline.Build(cmd.Context(), a.cfg.BBox)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create %s: %w", out, err)
		}
		defer f.Close()
		w = f
	}
	features := b.BuiltFeatures()
	if err := geom.WriteFootprints(w, features); err != nil {
		return fmt.Errorf("write footprints: %w", err)
	}
	a.log.Info("exported footprints", "count", len(features), "output", out)
	return nil
}
