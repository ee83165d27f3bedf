package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"osmblocks/internal/geom"
)

const (
	sidebarWidth = 30
	headerHeight = 1
	footerHeight = 2
)

// layout is the screen split shared by View and mouse handling.
type layout struct {
	contentW, contentH int
	sideW              int
	mapX, mapY         int
	mapW, mapH         int
}

func (m Model) layout() layout {
	var lo layout
	lo.contentH = max(4, m.height-headerHeight-footerHeight)
	lo.contentW = max(10, m.width)
	if m.showSidebar {
		lo.sideW = sidebarWidth
		lo.mapX = sidebarWidth + 1
	}
	lo.mapY = headerHeight
	lo.mapW = max(10, lo.contentW-lo.sideW-1)
	lo.mapH = lo.contentH
	return lo
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	lo := m.layout()

	header := titleStyle.Render(" osmblocks ─ OSM building extrusion viewer ")
	if m.opts.Source != "" {
		header += dimStyle.Render(" " + m.opts.Source)
	}
	header = lipgloss.NewStyle().Width(lo.contentW).MaxHeight(1).Render(header)

	var sidebar string
	if m.showSidebar {
		m.l.SetSize(lo.sideW-2, lo.contentH-2)
		sidebar = lipgloss.NewStyle().Width(lo.sideW).Render(m.l.View())
	}

	var mapView string
	switch {
	case m.loading:
		msg := m.spin.View() + " querying Overpass for " + boxLabel(m.opts.Box)
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, msg)
	case m.showAttrs:
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 2
		}
		maxW := min(lo.mapW, max(32, colW+4))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(lo.mapH-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, attrsBox)
	case m.failed:
		box := boxStyle.Render(errStyle.Render("fetch failed") + "\n" + m.status + "\n\n" + dimStyle.Render("scene left uninitialised, q to quit"))
		mapView = lipgloss.Place(lo.mapW, lo.mapH, lipgloss.Center, lipgloss.Center, box)
	default:
		mapView = lipgloss.NewStyle().Width(lo.mapW).Height(lo.mapH).Render(m.renderScene(lo.mapW, lo.mapH))
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	statusStyle := dimStyle
	if m.failed {
		statusStyle = errStyle
	}
	status := statusStyle.Render(" " + m.status + " ")
	help := m.renderHelp()
	cam := ""
	if m.viewer.Ready() {
		o := m.viewer.Orbit
		cam = dimStyle.Render(fmt.Sprintf("  yaw=%.0f° pitch=%.0f° r=%.3g  ", o.Yaw*180/math.Pi, o.Pitch*180/math.Pi, o.Radius))
	}
	left := lipgloss.JoinVertical(lipgloss.Left, status, help)
	spacerW := max(0, lo.contentW-lipgloss.Width(left)-lipgloss.Width(cam))
	right := lipgloss.Place(spacerW+lipgloss.Width(cam), 1, lipgloss.Right, lipgloss.Center, cam)
	footer := lipgloss.NewStyle().Width(lo.contentW).Render(lipgloss.JoinHorizontal(lipgloss.Top, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(lo.contentW).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"←→↑↓ orbit",
		"+/- zoom",
		"wasd pan",
		"r reset",
		"tab buildings",
		"t table",
		"f fill",
		"x axes",
		"h help",
		"q quit",
	}
	return dimStyle.Render(" " + strings.Join(keys, "  "))
}

func boxLabel(b geom.BoundingBox) string {
	return fmt.Sprintf("[%.5f, %.5f, %.5f, %.5f]", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
