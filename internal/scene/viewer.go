package scene

import (
	"math"

	"osmblocks/internal/geom"
)

// Viewer is the render context: one scene, one camera and its orbit controls.
// It starts uninitialised; Setup populates it once a build succeeds.
type Viewer struct {
	Scene  *Scene
	Camera Camera
	Orbit  Orbit

	home  Orbit
	ready bool
}

// NewViewer returns a viewer in its pre-initialisation state.
func NewViewer() *Viewer {
	v := &Viewer{
		Scene:  NewScene(),
		Camera: DefaultCamera(),
		Orbit:  Orbit{Yaw: 0, Pitch: math.Pi / 4, Radius: 3},
	}
	v.home = v.Orbit
	v.Orbit.Apply(&v.Camera)
	return v
}

// Ready reports whether Setup has run.
func (v *Viewer) Ready() bool { return v.ready }

// Setup adds one solid per mesh, sizes the ground to the query box extent and
// frames the camera on it. Meshes are not modified.
func (v *Viewer) Setup(box geom.BoundingBox, meshes []geom.BuildingMesh, scale geom.Scale) {
	v.Scene.Clear()
	for _, m := range meshes {
		v.Scene.Add(m)
	}

	w, h := scale.Extent(box)
	c := scale.ToLocal(box, box.Center())
	center := V3(c.X, 0, -c.Y)
	v.Scene.Ground = Ground{Center: center, Width: w, Depth: h}

	size := math.Max(w, h)
	if _, hi, ok := v.Scene.Extent(); ok {
		size = math.Max(size, hi.Y)
	}
	if size <= 0 {
		size = 1
	}
	v.Scene.AxisLen = size / 4

	v.Orbit = Orbit{
		Target:    center,
		Yaw:       -math.Pi / 6,
		Pitch:     math.Pi / 4,
		Radius:    size * 1.2,
		MinRadius: size * 0.05,
		MaxRadius: size * 20,
	}
	v.home = v.Orbit
	v.Orbit.Apply(&v.Camera)
	v.ready = true
}

// Reset returns the orbit to where Setup framed it.
func (v *Viewer) Reset() {
	v.Orbit = v.home
	v.Orbit.Apply(&v.Camera)
}

func (v *Viewer) Rotate(dYaw, dPitch float64) {
	v.Orbit.Rotate(dYaw, dPitch)
	v.Orbit.Apply(&v.Camera)
}

func (v *Viewer) Zoom(factor float64) {
	v.Orbit.Zoom(factor)
	v.Orbit.Apply(&v.Camera)
}

func (v *Viewer) Pan(dx, dz float64) {
	v.Orbit.Pan(dx, dz)
	v.Orbit.Apply(&v.Camera)
}

// Projector maps world points to a w*h pixel target for one frame.
type Projector struct {
	m    Mat4
	w, h int
}

// Projector captures the current view-projection for a w*h target.
func (v *Viewer) Projector(w, h int) Projector {
	aspect := 1.0
	if h > 0 {
		aspect = float64(w) / float64(h)
	}
	return Projector{
		m: Mat4Mul(v.Camera.Projection(aspect), v.Camera.View()),
		w: w,
		h: h,
	}
}

// Project returns pixel coordinates of p; ok is false behind the camera.
func (pr Projector) Project(p Vec3) (x, y float64, ok bool) {
	c := Mat4MulV4(pr.m, Vec4{p.X, p.Y, p.Z, 1})
	if c.W <= 0 {
		return 0, 0, false
	}
	nx, ny := c.X/c.W, c.Y/c.W
	x = (nx*0.5 + 0.5) * float64(pr.w-1)
	y = (1 - (ny*0.5 + 0.5)) * float64(pr.h-1)
	return x, y, true
}

// Project is a one-off convenience over Projector.
func (v *Viewer) Project(p Vec3, w, h int) (x, y float64, ok bool) {
	return v.Projector(w, h).Project(p)
}
