package extrude

import "osmblocks/internal/geom"

// Solid is a triangulated extrusion in world coordinates:
// X east, Y up, Z south (north is -Z).
type Solid struct {
	Vertices  [][3]float64
	Triangles [][3]int
	Edges     [][2]int
}

// Solidify builds the bottom cap at y=0, the top cap at y=Depth and one wall
// quad per outline edge, closing edge included. The first len(Outline)
// vertices are the bottom ring, the rest the top ring.
func Solidify(m geom.BuildingMesh) Solid {
	n := len(m.Outline)
	s := Solid{
		Vertices: make([][3]float64, 0, 2*n),
		Edges:    make([][2]int, 0, 3*n),
	}
	for _, p := range m.Outline {
		s.Vertices = append(s.Vertices, [3]float64{p.X, 0, -p.Y})
	}
	for _, p := range m.Outline {
		s.Vertices = append(s.Vertices, [3]float64{p.X, m.Depth, -p.Y})
	}

	caps := Triangulate(m.Outline)
	for _, t := range caps {
		s.Triangles = append(s.Triangles, [3]int{t[2], t[1], t[0]})
	}
	for _, t := range caps {
		s.Triangles = append(s.Triangles, [3]int{t[0] + n, t[1] + n, t[2] + n})
	}
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		s.Triangles = append(s.Triangles,
			[3]int{i, j, n + j},
			[3]int{i, n + j, n + i},
		)
		s.Edges = append(s.Edges, [2]int{i, j}, [2]int{n + i, n + j}, [2]int{i, n + i})
	}
	return s
}

// SignedArea is positive for counter-clockwise outlines.
func SignedArea(pts []geom.LocalVertex) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

// Triangulate ear-clips a simple polygon of either orientation. Triangles
// index into pts and are counter-clockwise. Zero-area input yields none;
// self-intersecting input yields whatever ears could be cut.
func Triangulate(pts []geom.LocalVertex) [][3]int {
	n := len(pts)
	if n < 3 {
		return nil
	}
	area := SignedArea(pts)
	if area == 0 {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		if area > 0 {
			idx[i] = i
		} else {
			idx[i] = n - 1 - i
		}
	}

	tris := make([][3]int, 0, n-2)
	for len(idx) > 3 {
		if i := findEar(pts, idx); i >= 0 {
			m := len(idx)
			tris = append(tris, [3]int{idx[(i+m-1)%m], idx[i], idx[(i+1)%m]})
			idx = append(idx[:i], idx[i+1:]...)
			continue
		}
		// no ear: drop a collinear vertex if there is one, otherwise give up
		i := findCollinear(pts, idx)
		if i < 0 {
			return tris
		}
		idx = append(idx[:i], idx[i+1:]...)
	}
	if cross(pts[idx[0]], pts[idx[1]], pts[idx[2]]) > 0 {
		tris = append(tris, [3]int{idx[0], idx[1], idx[2]})
	}
	return tris
}

func findEar(pts []geom.LocalVertex, idx []int) int {
	m := len(idx)
	for i := 0; i < m; i++ {
		a, b, c := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
		if cross(pts[a], pts[b], pts[c]) <= 0 {
			continue
		}
		ear := true
		for _, k := range idx {
			if k == a || k == b || k == c {
				continue
			}
			p := pts[k]
			if p == pts[a] || p == pts[b] || p == pts[c] {
				continue
			}
			if inTriangle(p, pts[a], pts[b], pts[c]) {
				ear = false
				break
			}
		}
		if ear {
			return i
		}
	}
	return -1
}

func findCollinear(pts []geom.LocalVertex, idx []int) int {
	m := len(idx)
	for i := 0; i < m; i++ {
		if cross(pts[idx[(i+m-1)%m]], pts[idx[i]], pts[idx[(i+1)%m]]) == 0 {
			return i
		}
	}
	return -1
}

func cross(a, b, c geom.LocalVertex) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// inTriangle includes the boundary; abc is counter-clockwise.
func inTriangle(p, a, b, c geom.LocalVertex) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}
