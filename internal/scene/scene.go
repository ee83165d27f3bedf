package scene

import (
	"osmblocks/internal/extrude"
	"osmblocks/internal/geom"
)

// LightKind selects how a light contributes.
type LightKind uint8

const (
	LightAmbient LightKind = iota
	LightDirectional
)

// Light is a minimal light setup.
type Light struct {
	Kind      LightKind
	Intensity float64 // 0..1
	Dir       Vec3    // direction towards the scene, directional only
}

// Ground is a flat rectangle at y=0.
type Ground struct {
	Center Vec3
	Width  float64 // along X
	Depth  float64 // along Z
}

// Corners returns the ground rectangle counter-clockwise seen from above.
func (g Ground) Corners() [4]Vec3 {
	hw, hd := g.Width/2, g.Depth/2
	c := g.Center
	return [4]Vec3{
		V3(c.X-hw, 0, c.Z+hd),
		V3(c.X+hw, 0, c.Z+hd),
		V3(c.X+hw, 0, c.Z-hd),
		V3(c.X-hw, 0, c.Z-hd),
	}
}

// Object is one building in the scene.
type Object struct {
	Mesh  geom.BuildingMesh
	Solid extrude.Solid
}

// Scene holds everything the renderer draws.
type Scene struct {
	Objects  []Object
	Ground   Ground
	Lights   []Light
	ShowAxes bool
	AxisLen  float64
}

// NewScene returns an empty scene with a unit ground plane at the origin and
// an ambient plus directional light.
func NewScene() *Scene {
	return &Scene{
		Ground: Ground{Width: 1, Depth: 1},
		Lights: []Light{
			{Kind: LightAmbient, Intensity: 0.5},
			{Kind: LightDirectional, Intensity: 0.5, Dir: Normalize(V3(0, -1, -1))},
		},
		ShowAxes: true,
		AxisLen:  1,
	}
}

// Add solidifies m and appends it. Returns the object index.
func (s *Scene) Add(m geom.BuildingMesh) int {
	s.Objects = append(s.Objects, Object{Mesh: m, Solid: extrude.Solidify(m)})
	return len(s.Objects) - 1
}

// Clear drops every object and keeps ground and lights.
func (s *Scene) Clear() { s.Objects = nil }

// Shade returns the light intensity in [0, 1] for a surface normal.
func (s *Scene) Shade(normal Vec3) float64 {
	n := Normalize(normal)
	var v float64
	for _, l := range s.Lights {
		switch l.Kind {
		case LightAmbient:
			v += l.Intensity
		case LightDirectional:
			d := Dot(n, Normalize(l.Dir).Mul(-1))
			if d > 0 {
				v += l.Intensity * d
			}
		}
	}
	return clamp(v, 0, 1)
}

// Extent returns the bounding box of all objects in world space.
func (s *Scene) Extent() (lo, hi Vec3, ok bool) {
	for _, o := range s.Objects {
		for _, p := range o.Solid.Vertices {
			v := FromArray(p)
			if !ok {
				lo, hi, ok = v, v, true
				continue
			}
			lo = V3(min(lo.X, v.X), min(lo.Y, v.Y), min(lo.Z, v.Z))
			hi = V3(max(hi.X, v.X), max(hi.Y, v.Y), max(hi.Z, v.Z))
		}
	}
	return lo, hi, ok
}
