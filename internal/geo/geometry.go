package geo

import (
	"fmt"
	"time"
)

// Kind discriminates the Geometry variants.
type Kind int

// Geometry kinds.
const (
	KindPoint Kind = iota + 1
	KindLineString
	KindPolygon
	KindTrack
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLineString:
		return "LineString"
	case KindPolygon:
		return "Polygon"
	case KindTrack:
		return "Track"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Geometry is the closed set of shapes a placemark can carry:
// *Point, *LineString, *Polygon and *Track.
type Geometry interface {
	Kind() Kind
	BoundingBox() (BoundingBox, bool)
	Clone() Geometry
	geometry()
}

// Point is a single position.
type Point struct {
	Position Coordinate
}

// LineString is an ordered path.
type LineString struct {
	Coords []Coordinate
}

// Polygon is an outer ring with zero or more hole rings.
type Polygon struct {
	Outer []Coordinate
	Holes [][]Coordinate
}

// Track is a path whose positions may carry timestamps.
// When is either empty or parallel to Coords.
type Track struct {
	Coords []Coordinate
	When   []time.Time
}

func (*Point) geometry()      {}
func (*LineString) geometry() {}
func (*Polygon) geometry()    {}
func (*Track) geometry()      {}

// Kind implements Geometry.
func (*Point) Kind() Kind { return KindPoint }

// Kind implements Geometry.
func (*LineString) Kind() Kind { return KindLineString }

// Kind implements Geometry.
func (*Polygon) Kind() Kind { return KindPolygon }

// Kind implements Geometry.
func (*Track) Kind() Kind { return KindTrack }

// BoundingBox implements Geometry.
func (p *Point) BoundingBox() (BoundingBox, bool) {
	return BoundingBoxOf([]Coordinate{p.Position})
}

// BoundingBox implements Geometry.
func (l *LineString) BoundingBox() (BoundingBox, bool) {
	return BoundingBoxOf(l.Coords)
}

// BoundingBox implements Geometry. Holes lie inside the outer ring and do not widen the box.
func (p *Polygon) BoundingBox() (BoundingBox, bool) {
	return BoundingBoxOf(p.Outer)
}

// BoundingBox implements Geometry.
func (t *Track) BoundingBox() (BoundingBox, bool) {
	return BoundingBoxOf(t.Coords)
}

// Clone implements Geometry.
func (p *Point) Clone() Geometry {
	c := *p
	return &c
}

// Clone implements Geometry.
func (l *LineString) Clone() Geometry {
	return &LineString{Coords: CloneCoordinates(l.Coords)}
}

// Clone implements Geometry.
func (p *Polygon) Clone() Geometry {
	out := &Polygon{Outer: CloneCoordinates(p.Outer)}
	if p.Holes != nil {
		out.Holes = make([][]Coordinate, len(p.Holes))
		for i, h := range p.Holes {
			out.Holes[i] = CloneCoordinates(h)
		}
	}
	return out
}

// Clone implements Geometry.
func (t *Track) Clone() Geometry {
	out := &Track{Coords: CloneCoordinates(t.Coords)}
	if t.When != nil {
		out.When = make([]time.Time, len(t.When))
		copy(out.When, t.When)
	}
	return out
}

// Validate checks that timestamps, when present, pair up with positions.
func (t *Track) Validate() error {
	if len(t.When) > 0 && len(t.When) != len(t.Coords) {
		return fmt.Errorf("track has %d timestamps for %d positions", len(t.When), len(t.Coords))
	}
	return nil
}
