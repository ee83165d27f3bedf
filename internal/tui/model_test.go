package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"osmblocks/internal/extrude"
	"osmblocks/internal/geom"
	"osmblocks/internal/pipeline"
)

var testBox = geom.BoundingBox{MinLat: 40.7128, MinLon: -74.0060, MaxLat: 40.7138, MaxLon: -74.0050}

type fetchFunc func(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error)

func (f fetchFunc) Fetch(ctx context.Context, box geom.BoundingBox) (*geom.QueryResult, error) {
	return f(ctx, box)
}

func testBuild(t *testing.T) *pipeline.Build {
	t.Helper()
	res := &geom.QueryResult{
		Box:    testBox,
		Bounds: testBox,
		Features: []geom.RawFeature{
			{
				ID:   1,
				Kind: geom.KindWay,
				Tags: map[string]string{"building": "yes", "height": "15", "name": "Tower"},
				Geometry: []geom.LatLon{
					{Lat: 40.7130, Lon: -74.0058},
					{Lat: 40.7130, Lon: -74.0052},
					{Lat: 40.7135, Lon: -74.0052},
					{Lat: 40.7135, Lon: -74.0058},
				},
			},
			{ID: 2, Kind: geom.KindNode, Tags: map[string]string{"amenity": "cafe"}},
		},
	}
	f := fetchFunc(func(context.Context, geom.BoundingBox) (*geom.QueryResult, error) { return res, nil })
	b, err := pipeline.New(f, extrude.New(geom.DefaultScale(), nil), nil, nil).Build(context.Background(), testBox)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return b
}

func newTestModel() Model {
	m := New(Options{Box: testBox, Scale: geom.DefaultScale()})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBuildFailureLeavesViewerUninitialised(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(buildMsg{err: errors.New("overpass: status 504")})
	m = next.(Model)

	if m.Viewer().Ready() {
		t.Fatal("viewer should not be ready after a failed build")
	}
	if len(m.Viewer().Scene.Objects) != 0 {
		t.Errorf("objects = %d, want 0", len(m.Viewer().Scene.Objects))
	}
	if !strings.Contains(m.Status(), "504") {
		t.Errorf("status = %q", m.Status())
	}
	if !strings.Contains(m.View(), "fetch failed") {
		t.Error("view should report the failure")
	}

	// navigation is ignored without a scene
	yaw := m.Viewer().Orbit.Yaw
	next, _ = m.Update(key("left"))
	if got := next.(Model).Viewer().Orbit.Yaw; got != yaw {
		t.Errorf("yaw changed to %v without a scene", got)
	}
}

func TestBuildSuccessSetsUpViewer(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(buildMsg{build: testBuild(t)})
	m = next.(Model)

	if !m.Viewer().Ready() {
		t.Fatal("viewer should be ready")
	}
	if n := len(m.Viewer().Scene.Objects); n != 1 {
		t.Fatalf("objects = %d, want 1", n)
	}
	if n := len(m.l.Items()); n != 1 {
		t.Errorf("sidebar items = %d, want 1", n)
	}
	if !strings.Contains(m.Status(), "1 buildings") {
		t.Errorf("status = %q", m.Status())
	}

	out := m.renderScene(60, 20)
	if lines := strings.Count(out, "\n") + 1; lines != 20 {
		t.Errorf("rendered %d lines, want 20", lines)
	}
	if strings.IndexFunc(out, func(r rune) bool { return r > 0x2800 && r <= 0x28FF }) < 0 {
		t.Error("scene rendered no braille dots")
	}
}

func TestKeys(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(buildMsg{build: testBuild(t)})
	m = next.(Model)

	yaw := m.Viewer().Orbit.Yaw
	next, _ = m.Update(key("left"))
	m = next.(Model)
	if m.Viewer().Orbit.Yaw == yaw {
		t.Error("left should orbit")
	}

	r := m.Viewer().Orbit.Radius
	next, _ = m.Update(key("+"))
	m = next.(Model)
	if m.Viewer().Orbit.Radius >= r {
		t.Errorf("radius %v after zoom in, was %v", m.Viewer().Orbit.Radius, r)
	}

	next, _ = m.Update(key("r"))
	m = next.(Model)
	if m.Viewer().Orbit.Yaw != yaw || m.Viewer().Orbit.Radius != r {
		t.Error("reset should restore the framed orbit")
	}

	next, _ = m.Update(key("f"))
	m = next.(Model)
	if m.showFill {
		t.Error("f should toggle roof fill off")
	}

	next, _ = m.Update(key("t"))
	m = next.(Model)
	if !m.showAttrs {
		t.Fatal("t should open the feature table")
	}
	if n := len(m.tbl.Rows()); n != 2 {
		t.Errorf("table rows = %d, want 2", n)
	}
	next, _ = m.Update(key("esc"))
	m = next.(Model)
	if m.showAttrs {
		t.Error("esc should close the feature table")
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestSelectBuildingRetargetsOrbit(t *testing.T) {
	m := newTestModel()
	next, _ := m.Update(buildMsg{build: testBuild(t)})
	m = next.(Model)

	m.selectBuilding(0)
	if m.selected != 0 {
		t.Fatalf("selected = %d", m.selected)
	}
	c := outlineCentroid(m.Viewer().Scene.Objects[0].Mesh.Outline)
	if tg := m.Viewer().Orbit.Target; tg.X != c.X || tg.Z != -c.Y {
		t.Errorf("target = %+v, want centroid %+v", tg, c)
	}
	if !strings.Contains(m.Status(), "Tower") {
		t.Errorf("status = %q", m.Status())
	}

	m.selectBuilding(5)
	if m.selected != 0 {
		t.Error("out of range selection should be ignored")
	}
}

func TestBrailleBuf(t *testing.T) {
	b := newBrailleBuf(2, 1)
	b.setPixel(0, 0, layerRoof)
	b.setPixel(3, 3, layerWall)
	b.setPixel(-1, 0, layerWall)
	b.setPixel(4, 0, layerWall)

	lines := b.toLines(nil)
	if len(lines) != 1 {
		t.Fatalf("lines = %d", len(lines))
	}
	if want := string([]rune{0x2801, 0x2880}); lines[0] != want {
		t.Errorf("line = %q, want %q", lines[0], want)
	}
}
