package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"osmblocks/internal/geom"
)

// FileSource replays footprints from disk instead of querying Overpass. The
// requested box is ignored; the file's own extent anchors the scene.
// .csv and .wkt files are read as WKT, anything else as GeoJSON.
type FileSource struct {
	Path string
}

func (s *FileSource) Fetch(ctx context.Context, _ geom.BoundingBox) (*geom.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	defer f.Close()
	res, err := readerFor(s.Path)(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Path, err)
	}
	return res, nil
}

func readerFor(path string) func(io.Reader) (*geom.QueryResult, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return geom.ReadCSVFootprints
	case ".wkt":
		return geom.ReadWKTFootprints
	default:
		return geom.ReadFootprints
	}
}
