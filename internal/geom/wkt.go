package geom

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
)

// ReadWKTFootprints reads one WKT geometry per line. Blank lines and lines
// starting with # are skipped. Features are numbered from 1 in file order and
// extrude at the default height.
func ReadWKTFootprints(r io.Reader) (*QueryResult, error) {
	var fb footprintBuilder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16<<20)
	line, id := 0, int64(0)
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		g, err := wkt.Unmarshal(s)
		if err != nil {
			return nil, fmt.Errorf("wkt line %d: %w", line, err)
		}
		id++
		fb.add(id, nil, g)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read wkt: %w", err)
	}
	return fb.result("wkt")
}
