package main

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"osmblocks/internal/extrude"
	"osmblocks/internal/geom"
	"osmblocks/internal/pipeline"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Fetch and extrude once, then print a summary or the meshes",
	Args:  cobra.NoArgs,
	RunE:  runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.Flags().Bool("json", false, "print bounds, summary and meshes as JSON")
}

type queryOutput struct {
	Bounds  geom.BoundingBox    `json:"bounds"`
	Summary summaryOutput       `json:"summary"`
	Meshes  []geom.BuildingMesh `json:"meshes"`
}

type summaryOutput struct {
	Features       int `json:"features"`
	Built          int `json:"built"`
	NotBuilding    int `json:"not_building"`
	TooFewVertices int `json:"too_few_vertices"`
	Degenerate     int `json:"degenerate"`
}

func newSummaryOutput(s extrude.Summary) summaryOutput {
	return summaryOutput{
		Features:       s.Features,
		Built:          s.Built,
		NotBuilding:    s.NotBuilding,
		TooFewVertices: s.TooFewVertices,
		Degenerate:     s.Degenerate,
	}
}

func runQuery(cmd *cobra.Command, _ []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
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
	if asJSON {
		return printJSON(cmd, b)
	}

	w := cmd.OutOrStdout()
	s := b.Summary
	fmt.Fprintf(w, "bounds     %.7f,%.7f %.7f,%.7f\n", b.Bounds.MinLat, b.Bounds.MinLon, b.Bounds.MaxLat, b.Bounds.MaxLon)
	fmt.Fprintf(w, "features   %d\n", s.Features)
	fmt.Fprintf(w, "built      %d\n", s.Built)
	fmt.Fprintf(w, "skipped    %d (not building %d, too few vertices %d, degenerate %d)\n",
		s.Skipped(), s.NotBuilding, s.TooFewVertices, s.Degenerate)
	fmt.Fprintf(w, "elapsed    %s\n", b.Elapsed)
	return nil
}

func printJSON(cmd *cobra.Command, b *pipeline.Build) error {
	out := queryOutput{
		Bounds:  b.Bounds,
		Summary: newSummaryOutput(b.Summary),
		Meshes:  b.Meshes,
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
