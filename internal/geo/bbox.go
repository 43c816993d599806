package geo

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// BoundingBox is the minimal axis-aligned lat/lon rectangle enclosing a set of positions.
// It is always derived, never stored alongside the coordinates it describes.
type BoundingBox struct {
	North float64 `json:"north"`
	South float64 `json:"south"`
	East  float64 `json:"east"`
	West  float64 `json:"west"`
}

// BoundingBoxOf folds min/max over coords. It reports false for an empty sequence.
func BoundingBoxOf(coords []Coordinate) (BoundingBox, bool) {
	if len(coords) == 0 {
		return BoundingBox{}, false
	}

	mp := make(orb.MultiPoint, len(coords))
	for i, c := range coords {
		mp[i] = orb.Point{c.Lon, c.Lat}
	}

	return FromBound(mp.Bound()), true
}

// FromBound converts an orb bound ([lon, lat] corners).
func FromBound(b orb.Bound) BoundingBox {
	return BoundingBox{
		North: b.Max[1],
		South: b.Min[1],
		East:  b.Max[0],
		West:  b.Min[0],
	}
}

// Bound converts the box to an orb bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.West, b.South},
		Max: orb.Point{b.East, b.North},
	}
}

// Union returns the smallest box containing both b and o.
func (b BoundingBox) Union(o BoundingBox) BoundingBox {
	return FromBound(b.Bound().Union(o.Bound()))
}

// Intersects reports whether the boxes overlap or touch.
func (b BoundingBox) Intersects(o BoundingBox) bool {
	return b.Bound().Intersects(o.Bound())
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() Coordinate {
	c := b.Bound().Center()
	return Coordinate{Lon: c[0], Lat: c[1]}
}

// Corners returns the box corners ordered top-left, top-right, bottom-right, bottom-left.
func (b BoundingBox) Corners() [4]Coordinate {
	return [4]Coordinate{
		{Lat: b.North, Lon: b.West},
		{Lat: b.North, Lon: b.East},
		{Lat: b.South, Lon: b.East},
		{Lat: b.South, Lon: b.West},
	}
}

// ParseBoundingBox parses "west,south,east,north" (GeoJSON bbox order).
func ParseBoundingBox(s string) (BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, fmt.Errorf("bbox must have 4 values, got %d", len(parts))
	}

	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BoundingBox{}, fmt.Errorf("bbox value %q: %w", p, err)
		}
		v[i] = f
	}

	if v[0] > v[2] || v[1] > v[3] {
		return BoundingBox{}, fmt.Errorf("bbox %q: min exceeds max", s)
	}

	return BoundingBox{West: v[0], South: v[1], East: v[2], North: v[3]}, nil
}
