package tui

import (
	"math"
	"strings"

	"osmblocks/internal/extrude"
	"osmblocks/internal/scene"
)

// frame holds one projection pass over the scene at micro-pixel resolution.
type frame struct {
	pr         scene.Projector
	br         *brailleBuf
	wMic, hMic float64
}

func newFrame(v *scene.Viewer, w, h int) *frame {
	return &frame{
		pr:   v.Projector(w*2, h*4),
		br:   newBrailleBuf(w, h),
		wMic: float64(w*2 - 1),
		hMic: float64(h*4 - 1),
	}
}

// line projects a world segment, clips it to the canvas and draws it.
func (f *frame) line(a, b scene.Vec3, ly layer) {
	ax, ay, okA := f.pr.Project(a)
	bx, by, okB := f.pr.Project(b)
	if !okA || !okB {
		return
	}
	ax, ay, bx, by, ok := clipSegment(ax, ay, bx, by, f.wMic, f.hMic)
	if !ok {
		return
	}
	f.br.drawLineMicro(round(ax), round(ay), round(bx), round(by), ly)
}

// micro projects p to integer micro coords.
func (f *frame) micro(p scene.Vec3) (int, int, bool) {
	x, y, ok := f.pr.Project(p)
	if !ok || math.Abs(x) > 1e6 || math.Abs(y) > 1e6 {
		return 0, 0, false
	}
	return round(x), round(y), true
}

func round(v float64) int { return int(math.Round(v)) }

// renderScene draws ground, axes and every building as a braille wireframe.
func (m Model) renderScene(w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	f := newFrame(m.viewer, w, h)
	sc := m.viewer.Scene

	// ground outline plus a coarse grid
	g := sc.Ground
	c := g.Corners()
	for i := 0; i < 4; i++ {
		f.line(c[i], c[(i+1)%4], layerGround)
	}
	const gridN = 4
	for i := 1; i < gridN; i++ {
		t := float64(i) / gridN
		f.line(lerp(c[0], c[1], t), lerp(c[3], c[2], t), layerGround)
		f.line(lerp(c[0], c[3], t), lerp(c[1], c[2], t), layerGround)
	}

	if sc.ShowAxes {
		o := scene.V3(0, 0, 0)
		f.line(o, scene.V3(sc.AxisLen, 0, 0), layerAxisX)
		f.line(o, scene.V3(0, sc.AxisLen, 0), layerAxisY)
		f.line(o, scene.V3(0, 0, sc.AxisLen), layerAxisZ)
	}

	roofShade := sc.Shade(scene.V3(0, 1, 0))
	for i, obj := range sc.Objects {
		m.drawObject(f, sc, obj, i, roofShade)
	}

	if m.hovering && m.hoverIndex >= 0 {
		f.br.setPixel(m.hoverMicX, m.hoverMicY, layerHover)
	}
	return strings.Join(f.br.toLines(layerStyles), "\n")
}

func (m Model) drawObject(f *frame, sc *scene.Scene, obj scene.Object, idx int, roofShade float64) {
	s := obj.Solid
	n := len(obj.Mesh.Outline)
	if n == 0 {
		return
	}
	selected := idx == m.selected

	if m.showFill {
		ring := make([][2]int, 0, n)
		for i := 0; i < n; i++ {
			if x, y, ok := f.micro(scene.FromArray(s.Vertices[n+i])); ok {
				ring = append(ring, [2]int{x, y})
			}
		}
		if len(ring) == n {
			f.br.fillPolygonMicro(ring, layerFill)
		}
	}

	ccw := extrude.SignedArea(obj.Mesh.Outline) >= 0
	for _, e := range s.Edges {
		a, b := scene.FromArray(s.Vertices[e[0]]), scene.FromArray(s.Vertices[e[1]])
		var ly layer
		switch {
		case selected:
			ly = layerSelected
		case e[0] >= n && e[1] >= n:
			if roofShade >= 0.8 {
				ly = layerRoof
			} else {
				ly = wallLayer(roofShade)
			}
		default:
			ly = wallLayer(sc.Shade(wallNormal(obj, e[0]%n, ccw)))
		}
		f.line(a, b, ly)
	}
}

// wallNormal is the outward world normal of the wall starting at outline vertex i.
func wallNormal(obj scene.Object, i int, ccw bool) scene.Vec3 {
	pts := obj.Mesh.Outline
	a, b := pts[i], pts[(i+1)%len(pts)]
	dx, dy := b.X-a.X, b.Y-a.Y
	// local outward normal (dy, -dx) for ccw; world maps local y to -Z
	nx, ny := dy, -dx
	if !ccw {
		nx, ny = -nx, -ny
	}
	return scene.V3(nx, 0, -ny)
}

func lerp(a, b scene.Vec3, t float64) scene.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// nearestBuilding returns the object whose projected roof centroid is closest
// to the micro coordinate (mx, my).
func (m Model) nearestBuilding(mx, my, w, h int) (idx, bx, by int) {
	f := newFrame(m.viewer, w, h)
	best := math.MaxInt
	idx = -1
	for i, obj := range m.viewer.Scene.Objects {
		c := outlineCentroid(obj.Mesh.Outline)
		x, y, ok := f.micro(scene.V3(c.X, obj.Mesh.Depth, -c.Y))
		if !ok {
			continue
		}
		dx, dy := x-mx, y-my
		if d := dx*dx + dy*dy; d < best {
			best, idx, bx, by = d, i, x, y
		}
	}
	return idx, bx, by
}
