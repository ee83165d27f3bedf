package tui

import (
	"fmt"
	"sort"
)

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sortInts(xs []int) { sort.Ints(xs) }

// clipSegment clips a-b to the rectangle [0,w]x[0,h] (Liang-Barsky).
func clipSegment(ax, ay, bx, by, w, h float64) (float64, float64, float64, float64, bool) {
	t0, t1 := 0.0, 1.0
	dx, dy := bx-ax, by-ay
	for _, e := range [4][2]float64{{-dx, ax}, {dx, w - ax}, {-dy, ay}, {dy, h - ay}} {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return 0, 0, 0, 0, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return 0, 0, 0, 0, false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return 0, 0, 0, 0, false
			}
			if r < t1 {
				t1 = r
			}
		}
	}
	return ax + t0*dx, ay + t0*dy, ax + t1*dx, ay + t1*dy, true
}

func formatMeters(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d m", int64(v))
	}
	return fmt.Sprintf("%.1f m", v)
}
