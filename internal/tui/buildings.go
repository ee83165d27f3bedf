package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"osmblocks/internal/geom"
	"osmblocks/internal/scene"
)

type buildingItem struct {
	title, desc string
	index       int // scene object index
}

func (b buildingItem) Title() string       { return b.title }
func (b buildingItem) Description() string { return b.desc }
func (b buildingItem) FilterValue() string { return b.title }

// refreshBuildings lists the built features in scene order.
func (m *Model) refreshBuildings() {
	if m.build == nil {
		m.l.SetItems(nil)
		return
	}
	var items []list.Item
	for i, f := range m.build.BuiltFeatures() {
		items = append(items, buildingItem{
			title: buildingTitle(f),
			desc:  fmt.Sprintf("%s  %d pts", formatMeters(f.HeightOrDefault()), len(m.viewer.Scene.Objects[i].Mesh.Outline)),
			index: i,
		})
	}
	m.l.SetItems(items)
}

func buildingTitle(f geom.RawFeature) string {
	if name := strings.TrimSpace(f.Tags["name"]); name != "" {
		return name
	}
	if kind := f.Tags["building"]; kind != "" && kind != "yes" {
		return fmt.Sprintf("%s %d", kind, f.ID)
	}
	return fmt.Sprintf("way %d", f.ID)
}

// selectBuilding highlights object i and moves the orbit target onto it.
func (m *Model) selectBuilding(i int) {
	objs := m.viewer.Scene.Objects
	if i < 0 || i >= len(objs) {
		return
	}
	m.selected = i
	c := outlineCentroid(objs[i].Mesh.Outline)
	m.viewer.Orbit.Target = scene.V3(c.X, 0, -c.Y)
	m.viewer.Orbit.Apply(&m.viewer.Camera)
	if feats := m.build.BuiltFeatures(); i < len(feats) {
		f := feats[i]
		m.status = fmt.Sprintf("%s  height %s  area %.0f m²", buildingTitle(f), formatMeters(f.HeightOrDefault()), f.FootprintArea())
	}
}

func outlineCentroid(pts []geom.LocalVertex) geom.LocalVertex {
	var c geom.LocalVertex
	if len(pts) == 0 {
		return c
	}
	for _, p := range pts {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(pts))
	c.Y /= float64(len(pts))
	return c
}
