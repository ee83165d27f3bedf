package tui

import (
	"fmt"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	spinner "github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	orbitStep = 0.1
	pitchStep = 0.05
	zoomStep  = 1.2
	panStep   = 0.1
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			lo := m.layout()
			m.l.SetSize(lo.sideW-2, lo.contentH-2)
		}
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case buildMsg:
		m.loading = false
		m.applyBuild(msg)
		return m, nil
	case tea.KeyMsg:
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.showAttrs {
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "esc", "t":
				m.showAttrs = false
				return m, nil
			}
			var cmd tea.Cmd
			m.tbl, cmd = m.tbl.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "h":
			m.helpVisible = !m.helpVisible
			return m, nil
		}
		if !m.viewer.Ready() {
			// nothing to navigate until a build succeeds
			return m, nil
		}
		switch msg.String() {
		case "left":
			m.viewer.Rotate(-orbitStep, 0)
		case "right":
			m.viewer.Rotate(orbitStep, 0)
		case "up":
			if m.showSidebar {
				break
			}
			m.viewer.Rotate(0, pitchStep)
		case "down":
			if m.showSidebar {
				break
			}
			m.viewer.Rotate(0, -pitchStep)
		case "+", "=":
			m.viewer.Zoom(1 / zoomStep)
			m.status = fmt.Sprintf("radius: %.3g", m.viewer.Orbit.Radius)
		case "-", "_":
			m.viewer.Zoom(zoomStep)
			m.status = fmt.Sprintf("radius: %.3g", m.viewer.Orbit.Radius)
		case "w":
			m.viewer.Pan(0, panStep)
		case "s":
			m.viewer.Pan(0, -panStep)
		case "a":
			m.viewer.Pan(-panStep, 0)
		case "d":
			m.viewer.Pan(panStep, 0)
		case "r":
			m.viewer.Reset()
			m.selected = -1
			m.status = "camera reset"
		case "f":
			m.showFill = !m.showFill
			m.status = fmt.Sprintf("roof fill: %v", m.showFill)
		case "x":
			m.viewer.Scene.ShowAxes = !m.viewer.Scene.ShowAxes
			m.status = fmt.Sprintf("axes: %v", m.viewer.Scene.ShowAxes)
		case "t":
			m.showAttrs = true
			m.refreshAttrs()
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				lo := m.layout()
				m.l.SetSize(lo.sideW-2, lo.contentH-2)
			}
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(buildingItem); ok {
					m.selectBuilding(it.index)
				}
			}
		}
	case tea.MouseMsg:
		lo := m.layout()
		cx, cy := msg.X, msg.Y
		if m.viewer.Ready() && !m.showAttrs &&
			cx >= lo.mapX && cx < lo.mapX+lo.mapW && cy >= lo.mapY && cy < lo.mapY+lo.mapH {
			hx := (cx - lo.mapX) * 2
			hy := (cy - lo.mapY) * 4
			idx, bx, by := m.nearestBuilding(hx, hy, lo.mapW, lo.mapH)
			m.hovering = idx >= 0
			m.hoverIndex, m.hoverMicX, m.hoverMicY = idx, bx, by
			if idx >= 0 && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
				m.selectBuilding(idx)
			}
		} else {
			m.hovering = false
		}
		if m.viewer.Ready() && msg.Action == tea.MouseActionPress {
			switch msg.Button {
			case tea.MouseButtonWheelUp:
				m.viewer.Zoom(1 / zoomStep)
			case tea.MouseButtonWheelDown:
				m.viewer.Zoom(zoomStep)
			}
		}
	}
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// applyBuild hands a successful build to the viewer. A failed build leaves
// the viewer in its pre-initialisation state.
func (m *Model) applyBuild(msg buildMsg) {
	if msg.err != nil {
		m.failed = true
		m.status = msg.err.Error()
		m.log.Error("build failed", "error", msg.err)
		return
	}
	b := msg.build
	m.build = b
	box := m.opts.Box
	if b.Result != nil {
		box = b.Result.Box
	}
	m.viewer.Setup(box, b.Meshes, m.opts.Scale)
	m.refreshBuildings()
	if b.Empty() {
		m.status = fmt.Sprintf("no buildings to render (%d features)", b.Summary.Features)
		return
	}
	m.status = fmt.Sprintf("%d buildings  %d skipped  %s", b.Summary.Built, b.Summary.Skipped(), b.Elapsed.Round(time.Millisecond))
}
