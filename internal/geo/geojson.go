package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrUnsupportedGeometry is returned for orb geometries with no Geometry variant.
var ErrUnsupportedGeometry = errors.New("unsupported geometry")

// ToOrb converts a geometry to its orb equivalent ([lon, lat] points).
// A Track becomes a LineString; altitude and timestamps are not carried.
func ToOrb(g Geometry) orb.Geometry {
	switch g := g.(type) {
	case *Point:
		return toOrbPoint(g.Position)
	case *LineString:
		return toOrbLine(g.Coords)
	case *Track:
		return toOrbLine(g.Coords)
	case *Polygon:
		poly := make(orb.Polygon, 0, 1+len(g.Holes))
		poly = append(poly, orb.Ring(toOrbLine(g.Outer)))
		for _, h := range g.Holes {
			poly = append(poly, orb.Ring(toOrbLine(h)))
		}
		return poly
	default:
		return nil
	}
}

// FromOrb converts an orb geometry. Only Point, LineString and Polygon are supported.
func FromOrb(g orb.Geometry) (Geometry, error) {
	switch g := g.(type) {
	case orb.Point:
		return &Point{Position: fromOrbPoint(g)}, nil
	case orb.LineString:
		return &LineString{Coords: fromOrbLine(g)}, nil
	case orb.Polygon:
		if len(g) == 0 {
			return nil, fmt.Errorf("%w: polygon without rings", ErrUnsupportedGeometry)
		}
		poly := &Polygon{Outer: fromOrbLine(g[0])}
		for _, ring := range g[1:] {
			poly.Holes = append(poly.Holes, fromOrbLine(ring))
		}
		return poly, nil
	case nil:
		return nil, fmt.Errorf("%w: null geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

func toOrbPoint(c Coordinate) orb.Point {
	return orb.Point{c.Lon, c.Lat}
}

func fromOrbPoint(p orb.Point) Coordinate {
	return Coordinate{Lon: p[0], Lat: p[1]}
}

func toOrbLine(coords []Coordinate) orb.LineString {
	ls := make(orb.LineString, len(coords))
	for i, c := range coords {
		ls[i] = toOrbPoint(c)
	}
	return ls
}

func fromOrbLine[T ~[]orb.Point](points T) []Coordinate {
	coords := make([]Coordinate, len(points))
	for i, p := range points {
		coords[i] = fromOrbPoint(p)
	}
	return coords
}
