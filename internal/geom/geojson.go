package geom

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/geojson"
)

func init() {
	geojson.CustomJSONMarshaler = jsoniter.ConfigCompatibleWithStandardLibrary
	geojson.CustomJSONUnmarshaler = jsoniter.ConfigCompatibleWithStandardLibrary
}

// Height returns the parsed height tag in meters.
// Accepts "15", "15.5", "15 m" and "15m". ok is false when the tag is
// missing, unparseable or not positive.
func (f RawFeature) Height() (h float64, ok bool) {
	raw, found := f.Tags["height"]
	if !found {
		return 0, false
	}
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.TrimSuffix(s, "m"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

// HeightOrDefault returns Height or DefaultHeight.
func (f RawFeature) HeightOrDefault() float64 {
	if h, ok := f.Height(); ok {
		return h
	}
	return DefaultHeight
}

// Ring returns the outline as a closed orb ring (x = lon, y = lat).
func (f RawFeature) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(f.Geometry)+1)
	for _, p := range f.Geometry {
		ring = append(ring, orb.Point{p.Lon, p.Lat})
	}
	if len(ring) > 0 && !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring
}

// FootprintArea returns the approximate footprint area in square meters.
func (f RawFeature) FootprintArea() float64 {
	if len(f.Geometry) < 3 {
		return 0
	}
	return geo.Area(orb.Polygon{f.Ring()})
}

// FootprintCollection converts features into a FeatureCollection of polygons
// carrying osm_id, height and area properties plus the remaining OSM tags.
func FootprintCollection(features []RawFeature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(orb.Polygon{f.Ring()})
		gf.ID = f.ID
		for k, v := range f.Tags {
			gf.Properties[k] = v
		}
		gf.Properties["osm_id"] = f.ID
		gf.Properties["height"] = f.HeightOrDefault()
		gf.Properties["area_m2"] = math.Round(f.FootprintArea()*100) / 100
		fc.Append(gf)
	}
	return fc
}

// WriteFootprints encodes features as GeoJSON to w.
func WriteFootprints(w io.Writer, features []RawFeature) error {
	data, err := FootprintCollection(features).MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal footprints: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write footprints: %w", err)
	}
	return nil
}

// ReadFootprints decodes a GeoJSON collection written by WriteFootprints (or
// any collection of polygons) back into features. Only outer rings are kept.
// The collection's extent becomes both the box and the bounds.
func ReadFootprints(r io.Reader) (*QueryResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read footprints: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode footprints: %w", err)
	}

	var fb footprintBuilder
	for i, gf := range fc.Features {
		id := int64(i + 1)
		if v, ok := gf.Properties["osm_id"].(float64); ok {
			id = int64(v)
		}
		tags := make(map[string]string, len(gf.Properties))
		for k, v := range gf.Properties {
			switch k {
			case "osm_id", "area_m2":
				continue
			}
			tags[k] = fmt.Sprint(v)
		}
		fb.add(id, tags, gf.Geometry)
	}
	return fb.result("geojson")
}
