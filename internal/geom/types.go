package geom

// BoundingBox is a lat/lon rectangle in degrees.
type BoundingBox struct {
	MinLat float64 `json:"min_lat" mapstructure:"min_lat"`
	MinLon float64 `json:"min_lon" mapstructure:"min_lon"`
	MaxLat float64 `json:"max_lat" mapstructure:"max_lat"`
	MaxLon float64 `json:"max_lon" mapstructure:"max_lon"`
}

// LatLon is a single WGS 84 vertex.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Feature kinds as reported by Overpass.
const (
	KindNode     = "node"
	KindWay      = "way"
	KindRelation = "relation"
)

// RawFeature is one map entity returned by the query service.
type RawFeature struct {
	ID       int64
	Kind     string
	Tags     map[string]string
	Geometry []LatLon // footprint outline, may or may not repeat the first vertex
}

// IsBuildingWay reports whether f is a way tagged as a building.
// building=no is an explicit negation in OSM and does not count.
func (f RawFeature) IsBuildingWay() bool {
	if f.Kind != KindWay {
		return false
	}
	v, ok := f.Tags["building"]
	return ok && v != "" && v != "no"
}

// QueryResult is the outcome of one successful fetch.
type QueryResult struct {
	Box      BoundingBox // box the query was issued for
	Bounds   BoundingBox // bounds resolved from the response
	Features []RawFeature
}

// LocalVertex is a point in the planar scene frame anchored at the query
// box's minimum corner.
type LocalVertex struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BuildingMesh is a closed outline extruded by Depth.
// The outline never repeats its first vertex; closure is implicit.
type BuildingMesh struct {
	Outline []LocalVertex `json:"outline"`
	Depth   float64       `json:"depth"`
}

// Reference scale factors. Horizontal and vertical are independent knobs
// that happen to share a value.
const (
	DefaultHorizontalScale = 0.00001
	DefaultVerticalScale   = 0.00001

	// DefaultHeight is used when a footprint has no usable height tag.
	DefaultHeight = 10.0
)

// Scale holds the horizontal coordinate scale and the vertical extrusion scale.
type Scale struct {
	Horizontal float64 `mapstructure:"horizontal"`
	Vertical   float64 `mapstructure:"vertical"`
}

// DefaultScale returns the reference scale pair.
func DefaultScale() Scale {
	return Scale{Horizontal: DefaultHorizontalScale, Vertical: DefaultVerticalScale}
}

// ToLocal maps a vertex into the scene frame of box.
func (s Scale) ToLocal(box BoundingBox, p LatLon) LocalVertex {
	return LocalVertex{
		X: (p.Lon - box.MinLon) * s.Horizontal,
		Y: (p.Lat - box.MinLat) * s.Horizontal,
	}
}

// Extent returns the size of box in scene units.
func (s Scale) Extent(box BoundingBox) (w, h float64) {
	return box.Width() * s.Horizontal, box.Height() * s.Horizontal
}
