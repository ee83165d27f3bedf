package extrude

import (
	"log/slog"

	"osmblocks/internal/geom"
)

// SkipReason says why a feature produced no mesh.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipNotBuilding
	SkipTooFewVertices
	SkipDegenerate
)

func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "built"
	case SkipNotBuilding:
		return "not a building way"
	case SkipTooFewVertices:
		return "fewer than 3 vertices"
	case SkipDegenerate:
		return "fewer than 3 distinct vertices"
	default:
		return "unknown"
	}
}

// Extruder turns fetched footprints into flat-topped meshes.
// The zero value is not usable; start from New.
type Extruder struct {
	Scale  geom.Scale
	Logger *slog.Logger
}

// New returns an Extruder with the given scale. A nil logger discards.
func New(scale geom.Scale, logger *slog.Logger) *Extruder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Extruder{Scale: scale, Logger: logger}
}

// Classify applies the per-feature rules without transforming anything.
func Classify(f geom.RawFeature) SkipReason {
	if !f.IsBuildingWay() {
		return SkipNotBuilding
	}
	if len(f.Geometry) < 3 {
		return SkipTooFewVertices
	}
	if len(normalize(f.Geometry)) < 3 {
		return SkipDegenerate
	}
	return SkipNone
}

// Extrude builds one mesh per qualifying feature, in input order, anchored
// at result.Box's minimum corner. It never fails: a nil or empty result
// yields an empty slice and bad features are skipped.
func (e *Extruder) Extrude(result *geom.QueryResult) []geom.BuildingMesh {
	meshes := []geom.BuildingMesh{}
	if result == nil || len(result.Features) == 0 {
		e.Logger.Warn("no buildings to extrude")
		return meshes
	}

	for i, f := range result.Features {
		mesh, reason := e.build(result.Box, f)
		if reason != SkipNone {
			e.Logger.Debug("skipping feature", "index", i, "id", f.ID, "kind", f.Kind, "reason", reason.String())
			continue
		}
		meshes = append(meshes, mesh)
	}

	if len(meshes) == 0 {
		e.Logger.Warn("no buildings to extrude", "features", len(result.Features))
	} else {
		e.Logger.Info("extruded buildings", "count", len(meshes), "features", len(result.Features))
	}
	return meshes
}

func (e *Extruder) build(box geom.BoundingBox, f geom.RawFeature) (geom.BuildingMesh, SkipReason) {
	if r := Classify(f); r != SkipNone {
		return geom.BuildingMesh{}, r
	}
	ring := normalize(f.Geometry)
	outline := make([]geom.LocalVertex, 0, len(ring))
	for _, p := range ring {
		outline = append(outline, e.Scale.ToLocal(box, p))
	}
	// distinct lat/lon pairs can still collapse once scaled
	outline = normalize(outline)
	if len(outline) < 3 {
		return geom.BuildingMesh{}, SkipDegenerate
	}
	return geom.BuildingMesh{
		Outline: outline,
		Depth:   f.HeightOrDefault() * e.Scale.Vertical,
	}, SkipNone
}

// normalize drops consecutive duplicates and the closing duplicate.
func normalize[T comparable](pts []T) []T {
	out := make([]T, 0, len(pts))
	for _, p := range pts {
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// Summary counts what Extrude did with a result.
type Summary struct {
	Features       int
	Built          int
	NotBuilding    int
	TooFewVertices int
	Degenerate     int
}

// Skipped is the number of features that produced no mesh.
func (s Summary) Skipped() int { return s.Features - s.Built }

// Status pairs a feature with its outcome.
type Status struct {
	Feature geom.RawFeature
	Reason  SkipReason
}

// Statuses classifies every feature of result in order.
func (e *Extruder) Statuses(result *geom.QueryResult) []Status {
	if result == nil {
		return nil
	}
	out := make([]Status, 0, len(result.Features))
	for _, f := range result.Features {
		_, r := e.build(result.Box, f)
		out = append(out, Status{Feature: f, Reason: r})
	}
	return out
}

// Summarize tallies statuses.
func Summarize(statuses []Status) Summary {
	s := Summary{Features: len(statuses)}
	for _, st := range statuses {
		switch st.Reason {
		case SkipNone:
			s.Built++
		case SkipNotBuilding:
			s.NotBuilding++
		case SkipTooFewVertices:
			s.TooFewVertices++
		case SkipDegenerate:
			s.Degenerate++
		}
	}
	return s
}
