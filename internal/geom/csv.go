package geom

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// ReadCSVFootprints reads a CSV whose header names a geometry column holding
// WKT polygons. Column detection is case-insensitive: wkt|geometry|geom for
// the shape and id|osm_id for the identifier. Every other column becomes a
// tag, so a "height" column drives extrusion depth.
func ReadCSVFootprints(r io.Reader) (*QueryResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	recs, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(recs) == 0 {
		return nil, errors.New("empty csv")
	}

	header := recs[0]
	idxGeom, idxID := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "wkt", "geometry", "geom":
			if idxGeom == -1 {
				idxGeom = i
			}
		case "id", "osm_id":
			if idxID == -1 {
				idxID = i
			}
		}
	}
	if idxGeom == -1 {
		return nil, errors.New("csv: geometry column not found")
	}

	var fb footprintBuilder
	for n, row := range recs[1:] {
		if idxGeom >= len(row) {
			continue
		}
		g, err := wkt.Unmarshal(strings.TrimSpace(row[idxGeom]))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", n+2, err)
		}
		id := int64(n + 1)
		if idxID >= 0 && idxID < len(row) {
			if v, err := strconv.ParseInt(strings.TrimSpace(row[idxID]), 10, 64); err == nil {
				id = v
			}
		}
		tags := make(map[string]string, len(header))
		for i, h := range header {
			if i == idxGeom || i == idxID || i >= len(row) {
				continue
			}
			if v := strings.TrimSpace(row[i]); v != "" {
				tags[strings.ToLower(strings.TrimSpace(h))] = v
			}
		}
		fb.add(id, tags, g)
	}
	return fb.result("csv")
}
