package overpass

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"osmblocks/internal/geom"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoBounds is wrapped by the FetchError returned when a response carries
// neither a bounds record nor any geometry to derive one from.
var ErrNoBounds = errors.New("response has no bounds")

type point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type element struct {
	Type     string         `json:"type"`
	ID       int64          `json:"id"`
	Tags     map[string]any `json:"tags"`
	Bounds   map[string]any `json:"bounds"`
	Geometry []*point       `json:"geometry"`
}

// Response is the decoded body of an [out:json] query.
type Response struct {
	Version   float64        `json:"version"`
	Generator string         `json:"generator"`
	Remark    string         `json:"remark"`
	Bounds    map[string]any `json:"bounds"`
	Elements  []element      `json:"elements"`
}

// ErrNoElements is returned by DecodeResponse for a body without an
// elements array, including a bare null.
var ErrNoElements = errors.New("response has no elements array")

// wireResponse keeps a missing elements key apart from an empty one.
type wireResponse struct {
	Version   float64        `json:"version"`
	Generator string         `json:"generator"`
	Remark    string         `json:"remark"`
	Bounds    map[string]any `json:"bounds"`
	Elements  *[]element     `json:"elements"`
}

// DecodeResponse parses an Overpass JSON body. An empty elements array is a
// valid answer; a missing or null one is ErrNoElements.
func DecodeResponse(r io.Reader) (*Response, error) {
	var w wireResponse
	if err := json.NewDecoder(r).Decode(&w); err != nil {
		return nil, err
	}
	if w.Elements == nil {
		return nil, ErrNoElements
	}
	return &Response{
		Version:   w.Version,
		Generator: w.Generator,
		Remark:    w.Remark,
		Bounds:    w.Bounds,
		Elements:  *w.Elements,
	}, nil
}

// Features converts the elements into RawFeatures in response order.
// Null geometry entries are dropped; tag values are normalised to text.
func (r *Response) Features() []geom.RawFeature {
	out := make([]geom.RawFeature, 0, len(r.Elements))
	for _, el := range r.Elements {
		f := geom.RawFeature{
			ID:   el.ID,
			Kind: el.Type,
			Tags: make(map[string]string, len(el.Tags)),
		}
		for k, v := range el.Tags {
			f.Tags[k] = tagString(v)
		}
		for _, p := range el.Geometry {
			if p == nil {
				continue
			}
			f.Geometry = append(f.Geometry, geom.LatLon{Lat: p.Lat, Lon: p.Lon})
		}
		out = append(out, f)
	}
	return out
}

// ResolveBounds picks the top-level bounds record (minlat or minLat casing)
// and falls back to the union of element bounds and geometry.
func (r *Response) ResolveBounds() (geom.BoundingBox, error) {
	if b, ok := boundsRecord(r.Bounds); ok {
		return b, nil
	}
	var acc geom.BoundsAccumulator
	for _, el := range r.Elements {
		if b, ok := boundsRecord(el.Bounds); ok {
			acc.AddBox(b)
			continue
		}
		for _, p := range el.Geometry {
			if p != nil {
				acc.Add(geom.LatLon{Lat: p.Lat, Lon: p.Lon})
			}
		}
	}
	if b, ok := acc.Box(); ok {
		return b, nil
	}
	return geom.BoundingBox{}, ErrNoBounds
}

func boundsRecord(m map[string]any) (geom.BoundingBox, bool) {
	if len(m) == 0 {
		return geom.BoundingBox{}, false
	}
	norm := make(map[string]float64, 4)
	for k, v := range m {
		if f, ok := v.(float64); ok {
			norm[strings.ToLower(k)] = f
		}
	}
	minLat, ok1 := norm["minlat"]
	minLon, ok2 := norm["minlon"]
	maxLat, ok3 := norm["maxlat"]
	maxLon, ok4 := norm["maxlon"]
	if !(ok1 && ok2 && ok3 && ok4) {
		return geom.BoundingBox{}, false
	}
	return geom.BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}, true
}

func tagString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
