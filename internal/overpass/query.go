package overpass

import (
	"fmt"
	"strconv"

	"osmblocks/internal/geom"
)

// DefaultQueryTimeout is the server-side [timeout:N] in seconds.
const DefaultQueryTimeout = 25

// BuildQuery renders the Overpass QL requesting every building way that
// intersects box, with full geometry inline.
func BuildQuery(box geom.BoundingBox, timeoutSec int) string {
	if timeoutSec <= 0 {
		timeoutSec = DefaultQueryTimeout
	}
	return fmt.Sprintf(`[out:json][timeout:%d];
(
  way["building"](%s,%s,%s,%s);
);
out geom;`, timeoutSec, coord(box.MinLat), coord(box.MinLon), coord(box.MaxLat), coord(box.MaxLon))
}

func coord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
