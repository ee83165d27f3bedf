package tui

import (
	"fmt"
	"strconv"

	table "github.com/charmbracelet/bubbles/table"
)

// refreshAttrs rebuilds the feature table from the current build: every
// fetched element with the outcome of extrusion.
func (m *Model) refreshAttrs() {
	if m.build == nil || len(m.build.Statuses) == 0 {
		m.showAttrs = false
		m.status = "no features in current result"
		return
	}
	cols := []table.Column{
		{Title: "#", Width: 4},
		{Title: "id", Width: 12},
		{Title: "kind", Width: 8},
		{Title: "building", Width: 12},
		{Title: "height", Width: 8},
		{Title: "pts", Width: 4},
		{Title: "area m²", Width: 9},
		{Title: "status", Width: 24},
		{Title: "name", Width: 20},
	}
	rows := make([]table.Row, 0, len(m.build.Statuses))
	for i, st := range m.build.Statuses {
		f := st.Feature
		height := ""
		if h, ok := f.Height(); ok {
			height = formatMeters(h)
		}
		area := ""
		if a := f.FootprintArea(); a > 0 {
			area = fmt.Sprintf("%.0f", a)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i + 1),
			strconv.FormatInt(f.ID, 10),
			f.Kind,
			f.Tags["building"],
			height,
			strconv.Itoa(len(f.Geometry)),
			area,
			st.Reason.String(),
			f.Tags["name"],
		})
	}
	// clear rows first so columns and rows never disagree mid-update
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(cols)
	m.tbl.SetRows(rows)
}
