package constraint

import (
	"fmt"
	"math"
)

// ObjectID identifies a scene object. It is opaque to this package and must
// stay stable for the lifetime of the object.
type ObjectID string

// Point is a planar position or displacement in scene length units.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Scale returns p multiplied by k.
func (p Point) Scale(k float64) Point { return Point{X: p.X * k, Y: p.Y * k} }

// Len returns the Euclidean length of p.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// AnchorType is the kind of logical point an anchor refers to.
type AnchorType int

const (
	// Center is the reference point of the object.
	Center AnchorType = iota
	// EdgeTop is the midpoint of the top edge.
	EdgeTop
	// EdgeBottom is the midpoint of the bottom edge.
	EdgeBottom
	// EdgeLeft is the midpoint of the left edge.
	EdgeLeft
	// EdgeRight is the midpoint of the right edge.
	EdgeRight
	// Corner is a corner or polygon vertex, selected by the anchor index.
	Corner
	// Endpoint is a line or polyline endpoint, selected by the anchor index.
	Endpoint
)

var anchorTypeNames = [...]string{
	Center:     "center",
	EdgeTop:    "edge_top",
	EdgeBottom: "edge_bottom",
	EdgeLeft:   "edge_left",
	EdgeRight:  "edge_right",
	Corner:     "corner",
	Endpoint:   "endpoint",
}

var anchorTypesByName = func() map[string]AnchorType {
	m := make(map[string]AnchorType, len(anchorTypeNames))
	for t, name := range anchorTypeNames {
		m[name] = AnchorType(t)
	}
	return m
}()

// AnchorTypes returns every defined anchor type in declaration order.
func AnchorTypes() []AnchorType {
	types := make([]AnchorType, len(anchorTypeNames))
	for i := range anchorTypeNames {
		types[i] = AnchorType(i)
	}
	return types
}

// String returns the serialized name of the anchor type, e.g. "edge_top".
func (t AnchorType) String() string {
	if t.Valid() {
		return anchorTypeNames[t]
	}
	return fmt.Sprintf("AnchorType(%d)", int(t))
}

// Valid reports whether t is one of the defined anchor types.
func (t AnchorType) Valid() bool { return t >= 0 && int(t) < len(anchorTypeNames) }

// ParseAnchorType maps a serialized name back to its AnchorType.
// It returns false for unknown names, including the empty string.
func ParseAnchorType(name string) (AnchorType, bool) {
	t, ok := anchorTypesByName[name]
	return t, ok
}

// AnchorRef identifies one logical point on an object. Index disambiguates
// multiple anchors of the same type (vertex 0 vs vertex 3) and is 0 for types
// that are unique per object.
//
// AnchorRef is comparable and is used directly as the key of anchor offset
// tables passed to [Graph.SolveAnchored].
type AnchorRef struct {
	Object ObjectID
	Type   AnchorType
	Index  int
}

// String formats the anchor as object/type[index].
func (a AnchorRef) String() string {
	return fmt.Sprintf("%s/%s[%d]", a.Object, a.Type, a.Index)
}
