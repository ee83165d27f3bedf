package scene

import "math"

// Camera is a perspective camera.
type Camera struct {
	Position Vec3
	Target   Vec3
	Up       Vec3

	FOVYRad float64
	Near    float64
	Far     float64
}

// DefaultCamera matches a 75 degree perspective camera at z=5.
func DefaultCamera() Camera {
	return Camera{
		Position: V3(0, 0, 5),
		Up:       V3(0, 1, 0),
		FOVYRad:  75 * math.Pi / 180,
		Near:     0.1,
		Far:      1000,
	}
}

func (c Camera) View() Mat4 {
	up := c.Up
	if up == (Vec3{}) {
		up = V3(0, 1, 0)
	}
	return Mat4LookAt(c.Position, c.Target, up)
}

func (c Camera) Projection(aspect float64) Mat4 {
	fov := c.FOVYRad
	if fov == 0 {
		fov = 1
	}
	return Mat4Perspective(fov, aspect, c.Near, c.Far)
}

// Pitch limits keep the camera above the ground plane and off the pole.
const (
	MinPitch = 0.02
	MaxPitch = math.Pi/2 - 0.02
)

// Orbit moves a camera around a target point. Pitch is the elevation above
// the ground plane in radians.
type Orbit struct {
	Target Vec3
	Yaw    float64
	Pitch  float64
	Radius float64

	MinRadius float64
	MaxRadius float64
}

// Apply positions cam on the orbit sphere. Near and far follow the radius so
// scenes at any scale stay inside the frustum.
func (o *Orbit) Apply(cam *Camera) {
	if cam == nil {
		return
	}
	r := o.Radius
	if r <= 0 {
		r = 3
	}
	m := Mat4Mul(Mat4RotateY(o.Yaw), Mat4RotateX(-o.Pitch))
	p := Mat4MulV4(m, Vec4{X: 0, Y: 0, Z: r, W: 1})

	cam.Position = o.Target.Add(V3(p.X, p.Y, p.Z))
	cam.Target = o.Target
	if cam.Up == (Vec3{}) {
		cam.Up = V3(0, 1, 0)
	}
	cam.Near = r * 0.001
	cam.Far = r * 100
}

func (o *Orbit) Rotate(deltaYaw, deltaPitch float64) {
	o.Yaw = math.Mod(o.Yaw+deltaYaw, 2*math.Pi)
	o.Pitch = clamp(o.Pitch+deltaPitch, MinPitch, MaxPitch)
}

// Zoom scales the radius; factors below 1 move closer.
func (o *Orbit) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	o.Radius *= factor
	if o.MinRadius > 0 && o.Radius < o.MinRadius {
		o.Radius = o.MinRadius
	}
	if o.MaxRadius > 0 && o.Radius > o.MaxRadius {
		o.Radius = o.MaxRadius
	}
}

// Pan slides the target along the ground plane relative to the view
// direction. dx is screen-right, dz is screen-forward, both as fractions of
// the radius.
func (o *Orbit) Pan(dx, dz float64) {
	sin, cos := math.Sincos(o.Yaw)
	right := V3(cos, 0, -sin)
	forward := V3(-sin, 0, -cos)
	o.Target = o.Target.Add(right.Mul(dx * o.Radius)).Add(forward.Mul(dz * o.Radius))
}
