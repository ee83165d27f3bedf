package pipeline_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"osmblocks/internal/extrude"
	"osmblocks/internal/geom"
	"osmblocks/internal/metrics"
	"osmblocks/internal/overpass"
	"osmblocks/internal/pipeline"
)

type mockFetcher struct {
	FetchFn func(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error)
	calls   int
}

func (m *mockFetcher) Fetch(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
	m.calls++
	return m.FetchFn(ctx, box)
}

var nycBox = geom.BoundingBox{MinLat: 40.7128, MinLon: -74.0060, MaxLat: 40.7138, MaxLon: -74.0050}

func nycResult() *geom.QueryResult {
	return &geom.QueryResult{
		Box:    nycBox,
		Bounds: nycBox,
		Features: []geom.RawFeature{
			{
				ID:   1001,
				Kind: geom.KindWay,
				Tags: map[string]string{"building": "yes", "height": "15"},
				Geometry: []geom.LatLon{
					{Lat: 40.7130, Lon: -74.0058},
					{Lat: 40.7130, Lon: -74.0055},
					{Lat: 40.7133, Lon: -74.0055},
					{Lat: 40.7133, Lon: -74.0058},
				},
			},
			{ID: 1002, Kind: geom.KindWay, Tags: map[string]string{"building": "yes"}, Geometry: []geom.LatLon{{Lat: 40.713, Lon: -74.005}}},
			{ID: 5, Kind: geom.KindNode, Tags: map[string]string{"amenity": "cafe"}},
		},
	}
}

func newPipeline(f pipeline.Fetcher, m *metrics.Metrics) *pipeline.Pipeline {
	return pipeline.New(f, extrude.New(geom.DefaultScale(), nil), m, nil)
}

func TestBuildSuccess(t *testing.T) {
	f := &mockFetcher{FetchFn: func(_ context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
		if box != nycBox {
			t.Errorf("fetch box = %+v", box)
		}
		return nycResult(), nil
	}}
	m := metrics.New()

	b, err := newPipeline(f, m).Build(context.Background(), nycBox)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.calls != 1 {
		t.Errorf("fetch calls = %d, want 1", f.calls)
	}
	if b.Empty() || len(b.Meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(b.Meshes))
	}
	if b.Bounds != nycBox {
		t.Errorf("bounds = %+v", b.Bounds)
	}
	want := extrude.Summary{Features: 3, Built: 1, NotBuilding: 1, TooFewVertices: 1}
	if b.Summary != want {
		t.Errorf("summary = %+v, want %+v", b.Summary, want)
	}
	if got := b.BuiltFeatures(); len(got) != 1 || got[0].ID != 1001 {
		t.Errorf("built features = %+v", got)
	}

	if got := testutil.ToFloat64(m.BuildingsBuilt); got != 1 {
		t.Errorf("built metric = %v", got)
	}
	if got := testutil.ToFloat64(m.BuildingsSkipped.WithLabelValues("too_few_vertices")); got != 1 {
		t.Errorf("skipped metric = %v", got)
	}
	if got := testutil.ToFloat64(m.FeaturesFetched); got != 3 {
		t.Errorf("fetched metric = %v", got)
	}
}

func TestBuildFetchFailure(t *testing.T) {
	fetchErr := &overpass.FetchError{Op: "status", StatusCode: 504, Err: errors.New("gateway timeout")}
	f := &mockFetcher{FetchFn: func(context.Context, geom.BoundingBox) (*geom.QueryResult, error) {
		return nil, fetchErr
	}}
	m := metrics.New()

	b, err := newPipeline(f, m).Build(context.Background(), nycBox)
	if b != nil {
		t.Errorf("build = %+v, want nil on failure", b)
	}
	if !errors.Is(err, overpass.ErrFetch) {
		t.Fatalf("error = %v, want ErrFetch", err)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("status")); got != 1 {
		t.Errorf("fetch error metric = %v", got)
	}
	if got := testutil.ToFloat64(m.BuildingsBuilt); got != 0 {
		t.Errorf("built metric = %v after failure", got)
	}
}

func TestBuildInvalidBounds(t *testing.T) {
	f := &mockFetcher{FetchFn: func(_ context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
		if err := box.Validate(); err != nil {
			return nil, err
		}
		return nycResult(), nil
	}}
	m := metrics.New()
	bad := geom.BoundingBox{MinLat: 2, MinLon: 0, MaxLat: 1, MaxLon: 1}
	if _, err := newPipeline(f, m).Build(context.Background(), bad); !errors.Is(err, geom.ErrInvalidBounds) {
		t.Fatalf("error = %v, want ErrInvalidBounds", err)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("invalid_bounds")); got != 1 {
		t.Errorf("invalid bounds metric = %v", got)
	}
}

func TestBuildEmptyResult(t *testing.T) {
	f := &mockFetcher{FetchFn: func(_ context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
		return &geom.QueryResult{Box: box, Bounds: box}, nil
	}}
	b, err := newPipeline(f, nil).Build(context.Background(), nycBox)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !b.Empty() || b.Meshes == nil {
		t.Errorf("meshes = %#v, want empty non-nil", b.Meshes)
	}
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "footprints.geojson")
	out, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := geom.WriteFootprints(out, nycResult().Features[:1]); err != nil {
		t.Fatal(err)
	}
	out.Close()

	b, err := newPipeline(&pipeline.FileSource{Path: path}, nil).Build(context.Background(), nycBox)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(b.Meshes) != 1 {
		t.Fatalf("meshes = %d, want 1", len(b.Meshes))
	}
	if d := b.Meshes[0].Depth; math.Abs(d-15*geom.DefaultVerticalScale) > 1e-15 {
		t.Errorf("depth = %v", d)
	}

	if _, err := (&pipeline.FileSource{Path: filepath.Join(t.TempDir(), "missing.geojson")}).Fetch(context.Background(), nycBox); err == nil {
		t.Error("missing file: expected error")
	}
}

func TestFileSourceTextFormats(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"blocks.wkt": "POLYGON((-74.0058 40.7130, -74.0052 40.7130, -74.0052 40.7135, -74.0058 40.7130))\n",
		"blocks.csv": "id,height,wkt\n7,20,\"POLYGON((-74.0058 40.7130, -74.0052 40.7130, -74.0052 40.7135, -74.0058 40.7130))\"\n",
	}
	wantDepth := map[string]float64{
		"blocks.wkt": geom.DefaultHeight * geom.DefaultVerticalScale,
		"blocks.csv": 20 * geom.DefaultVerticalScale,
	}
	for name, body := range files {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			b, err := newPipeline(&pipeline.FileSource{Path: path}, nil).Build(context.Background(), nycBox)
			if err != nil {
				t.Fatalf("Build: %v", err)
			}
			if len(b.Meshes) != 1 {
				t.Fatalf("meshes = %d, want 1", len(b.Meshes))
			}
			if d := b.Meshes[0].Depth; math.Abs(d-wantDepth[name]) > 1e-15 {
				t.Errorf("depth = %v, want %v", d, wantDepth[name])
			}
		})
	}
}
