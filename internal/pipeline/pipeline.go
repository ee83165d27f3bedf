package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"osmblocks/internal/extrude"
	"osmblocks/internal/geom"
	"osmblocks/internal/metrics"
	"osmblocks/internal/overpass"
)

// Fetcher returns the features for a box. *overpass.Client and *FileSource
// satisfy it.
type Fetcher interface {
	Fetch(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error)
}

// Build is the renderer handoff: meshes plus the bounds resolved by the fetch.
type Build struct {
	Result   *geom.QueryResult
	Meshes   []geom.BuildingMesh
	Bounds   geom.BoundingBox
	Statuses []extrude.Status
	Summary  extrude.Summary
	Elapsed  time.Duration
}

// Empty reports a successful fetch that produced nothing to render.
func (b *Build) Empty() bool { return len(b.Meshes) == 0 }

// BuiltFeatures returns the features that produced a mesh, in order.
func (b *Build) BuiltFeatures() []geom.RawFeature {
	var out []geom.RawFeature
	for _, s := range b.Statuses {
		if s.Reason == extrude.SkipNone {
			out = append(out, s.Feature)
		}
	}
	return out
}

// Pipeline runs one fetch followed by one extrusion.
type Pipeline struct {
	fetcher  Fetcher
	extruder *extrude.Extruder
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// New wires a pipeline. m and logger may be nil.
func New(f Fetcher, e *extrude.Extruder, m *metrics.Metrics, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{fetcher: f, extruder: e, metrics: m, log: logger}
}

// Build fetches box and extrudes the result. A fetch failure is logged and
// returned with no build; nothing downstream runs.
func (p *Pipeline) Build(ctx context.Context, box geom.BoundingBox) (*Build, error) {
	start := time.Now()
	res, err := p.fetcher.Fetch(ctx, box)
	elapsed := time.Since(start)
	if p.metrics != nil {
		p.metrics.FetchDuration.Observe(elapsed.Seconds())
	}
	if err != nil {
		p.log.Error("fetch failed", "box", box, "error", err)
		if p.metrics != nil {
			p.metrics.FetchErrors.WithLabelValues(errorKind(err)).Inc()
		}
		return nil, err
	}

	b := p.FromResult(res)
	b.Elapsed = time.Since(start)
	return b, nil
}

// FromResult extrudes an already fetched result.
func (p *Pipeline) FromResult(res *geom.QueryResult) *Build {
	b := &Build{Result: res}
	if res != nil {
		b.Bounds = res.Bounds
	}
	b.Meshes = p.extruder.Extrude(res)
	b.Statuses = p.extruder.Statuses(res)
	b.Summary = extrude.Summarize(b.Statuses)

	p.log.Info("build complete",
		"features", b.Summary.Features,
		"built", b.Summary.Built,
		"skipped", b.Summary.Skipped())
	if b.Empty() {
		p.log.Warn("empty result, nothing to render", "features", b.Summary.Features)
	}

	if p.metrics != nil {
		p.metrics.FeaturesFetched.Add(float64(b.Summary.Features))
		p.metrics.BuildingsBuilt.Add(float64(b.Summary.Built))
		p.metrics.BuildingsSkipped.WithLabelValues("not_building").Add(float64(b.Summary.NotBuilding))
		p.metrics.BuildingsSkipped.WithLabelValues("too_few_vertices").Add(float64(b.Summary.TooFewVertices))
		p.metrics.BuildingsSkipped.WithLabelValues("degenerate").Add(float64(b.Summary.Degenerate))
		p.metrics.LastBuild.SetToCurrentTime()
	}
	return b
}

func errorKind(err error) string {
	var fe *overpass.FetchError
	switch {
	case errors.Is(err, geom.ErrInvalidBounds):
		return "invalid_bounds"
	case errors.As(err, &fe):
		return fe.Op
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "other"
	}
}
