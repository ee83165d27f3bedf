package geom

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// ErrInvalidBounds matches every *InvalidBoundsError via errors.Is.
var ErrInvalidBounds = errors.New("invalid bounding box")

// InvalidBoundsError reports a box rejected before any query was issued.
type InvalidBoundsError struct {
	Box    BoundingBox
	Reason string
}

func (e *InvalidBoundsError) Error() string {
	return fmt.Sprintf("invalid bounding box [%g, %g, %g, %g]: %s",
		e.Box.MinLat, e.Box.MinLon, e.Box.MaxLat, e.Box.MaxLon, e.Reason)
}

func (e *InvalidBoundsError) Is(target error) bool { return target == ErrInvalidBounds }

// Validate checks ordering and coordinate ranges.
func (b BoundingBox) Validate() error {
	invalid := func(reason string) error { return &InvalidBoundsError{Box: b, Reason: reason} }
	for _, v := range []float64{b.MinLat, b.MinLon, b.MaxLat, b.MaxLon} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid("coordinates must be finite")
		}
	}
	if !(b.MinLat < b.MaxLat) {
		return invalid("min latitude must be below max latitude")
	}
	if !(b.MinLon < b.MaxLon) {
		return invalid("min longitude must be below max longitude")
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return invalid("latitude out of range [-90, 90]")
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return invalid("longitude out of range [-180, 180]")
	}
	return nil
}

func (b BoundingBox) Width() float64  { return b.MaxLon - b.MinLon }
func (b BoundingBox) Height() float64 { return b.MaxLat - b.MinLat }

// Center returns the midpoint of the box.
func (b BoundingBox) Center() LatLon {
	return LatLon{Lat: (b.MinLat + b.MaxLat) / 2, Lon: (b.MinLon + b.MaxLon) / 2}
}

// Bound converts to an orb bound (x = lon, y = lat).
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// FromBound is the inverse of Bound.
func FromBound(bd orb.Bound) BoundingBox {
	return BoundingBox{MinLat: bd.Min[1], MinLon: bd.Min[0], MaxLat: bd.Max[1], MaxLon: bd.Max[0]}
}

// BoundsAccumulator grows a box one vertex or box at a time.
type BoundsAccumulator struct {
	bound orb.Bound
	n     int
}

// Add extends the accumulated bounds to include p.
func (a *BoundsAccumulator) Add(p LatLon) {
	pt := orb.Point{p.Lon, p.Lat}
	if a.n == 0 {
		a.bound = pt.Bound()
	} else {
		a.bound = a.bound.Extend(pt)
	}
	a.n++
}

// AddBox extends the accumulated bounds to include b.
func (a *BoundsAccumulator) AddBox(b BoundingBox) {
	if a.n == 0 {
		a.bound = b.Bound()
	} else {
		a.bound = a.bound.Union(b.Bound())
	}
	a.n++
}

// Box returns the accumulated bounds and whether anything was added.
func (a *BoundsAccumulator) Box() (BoundingBox, bool) {
	if a.n == 0 {
		return BoundingBox{}, false
	}
	return FromBound(a.bound), true
}
