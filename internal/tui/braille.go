package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// layer decides which style a cell gets; higher layers win.
type layer uint8

const (
	layerNone layer = iota
	layerGround
	layerFill
	layerWallDark
	layerWall
	layerWallLit
	layerRoof
	layerAxisX
	layerAxisY
	layerAxisZ
	layerSelected
	layerHover
)

type brailleBuf struct {
	w, h int       // in cells
	m    [][]uint8 // per-cell 8-bit mask
	l    [][]layer // per-cell top layer
}

func newBrailleBuf(w, h int) *brailleBuf {
	m := make([][]uint8, h)
	l := make([][]layer, h)
	for i := range m {
		m[i] = make([]uint8, w)
		l[i] = make([]layer, w)
	}
	return &brailleBuf{w: w, h: h, m: m, l: l}
}

var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

// setPixel sets a micro-pixel at micro coords (2x4 per cell)
func (b *brailleBuf) setPixel(mx, my int, ly layer) {
	if mx < 0 || my < 0 {
		return
	}
	cx, rx := mx/2, mx%2
	cy, ry := my/4, my%4
	if cy >= b.h || cx >= b.w {
		return
	}
	b.m[cy][cx] |= dotBits[rx][ry]
	if ly > b.l[cy][cx] {
		b.l[cy][cx] = ly
	}
}

// drawLineMicro draws a line on the microgrid using Bresenham
func (b *brailleBuf) drawLineMicro(x0, y0, x1, y1 int, ly layer) {
	dx := abs(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -abs(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		b.setPixel(x0, y0, ly)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// fillPolygonMicro fills ring with the even-odd rule, one scanline per micro row.
func (b *brailleBuf) fillPolygonMicro(ring [][2]int, ly layer) {
	if len(ring) < 3 {
		return
	}
	hMic := b.h * 4
	for yMic := 0; yMic < hMic; yMic++ {
		var xs []int
		for i := 0; i < len(ring); i++ {
			a := ring[i]
			c := ring[(i+1)%len(ring)]
			if a[1] == c[1] {
				continue
			}
			y0, y1 := a[1], c[1]
			x0, x1 := a[0], c[0]
			if (yMic >= y0 && yMic < y1) || (yMic >= y1 && yMic < y0) {
				t := float64(yMic-y0) / float64(y1-y0)
				xs = append(xs, int(float64(x0)+t*float64(x1-x0)))
			}
		}
		if len(xs) < 2 {
			continue
		}
		sortInts(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			xstart, xend := xs[i], xs[i+1]
			for xMic := max(0, xstart); xMic <= min(xend, b.w*2-1); xMic++ {
				b.setPixel(xMic, yMic, ly)
			}
		}
	}
}

// toLines renders each row, styling runs of cells that share a layer.
func (b *brailleBuf) toLines(styles map[layer]lipgloss.Style) []string {
	out := make([]string, b.h)
	var sb, run strings.Builder
	for y := 0; y < b.h; y++ {
		sb.Reset()
		cur := layer(255)
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if st, ok := styles[cur]; ok {
				sb.WriteString(st.Render(run.String()))
			} else {
				sb.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < b.w; x++ {
			mask := b.m[y][x]
			ly := b.l[y][x]
			if mask == 0 {
				ly = layerNone
			}
			if ly != cur {
				flush()
				cur = ly
			}
			if mask == 0 {
				run.WriteRune(' ')
			} else {
				run.WriteRune(rune(0x2800 + int(mask)))
			}
		}
		flush()
		out[y] = sb.String()
	}
	return out
}
