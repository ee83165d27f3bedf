package geom

import (
	"fmt"

	"github.com/paulmach/orb"
)

// footprintBuilder collects outer rings from file formats into a QueryResult.
type footprintBuilder struct {
	acc BoundsAccumulator
	res QueryResult
}

// add appends one feature per polygon in g. Points and lines are ignored.
func (fb *footprintBuilder) add(id int64, tags map[string]string, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Polygon:
		fb.addPolygon(id, tags, g)
	case orb.MultiPolygon:
		for _, p := range g {
			fb.addPolygon(id, tags, p)
		}
	case orb.Collection:
		for _, sub := range g {
			fb.add(id, tags, sub)
		}
	}
}

func (fb *footprintBuilder) addPolygon(id int64, tags map[string]string, p orb.Polygon) {
	if len(p) == 0 {
		return
	}
	rf := RawFeature{ID: id, Kind: KindWay, Tags: make(map[string]string, len(tags)+1)}
	for k, v := range tags {
		rf.Tags[k] = v
	}
	if _, ok := rf.Tags["building"]; !ok {
		rf.Tags["building"] = "yes"
	}
	rf.Geometry = make([]LatLon, 0, len(p[0]))
	for _, pt := range p[0] {
		ll := LatLon{Lat: pt[1], Lon: pt[0]}
		rf.Geometry = append(rf.Geometry, ll)
		fb.acc.Add(ll)
	}
	fb.res.Features = append(fb.res.Features, rf)
}

// result anchors the collected features at their own extent.
func (fb *footprintBuilder) result(format string) (*QueryResult, error) {
	box, ok := fb.acc.Box()
	if !ok {
		return nil, fmt.Errorf("no polygons found in %s", format)
	}
	res := fb.res
	res.Box, res.Bounds = box, box
	return &res, nil
}
