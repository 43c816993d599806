// Package geo handles geographic coordinates, bounding boxes and geometries.
package geo

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 position. Alt is optional and zero when absent.
type Coordinate struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
	Alt float64 `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// ParseCoordinates parses a KML coordinates string: "lon,lat[,alt]" tuples
// separated by whitespace.
func ParseCoordinates(s string) ([]Coordinate, error) {
	tuples := strings.Fields(s)
	coords := make([]Coordinate, 0, len(tuples))

	for _, tuple := range tuples {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid coordinate tuple %q", tuple)
		}

		values := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid coordinate tuple %q: %w", tuple, err)
			}
			values[i] = v
		}

		c := Coordinate{Lon: values[0], Lat: values[1]}
		if len(values) == 3 {
			c.Alt = values[2]
		}
		coords = append(coords, c)
	}

	return coords, nil
}

// ParseTrackCoord parses a gx:coord value: "lon lat [alt]" separated by spaces.
func ParseTrackCoord(s string) (Coordinate, error) {
	parts := strings.Fields(s)
	if len(parts) < 2 || len(parts) > 3 {
		return Coordinate{}, fmt.Errorf("invalid track coordinate %q", s)
	}

	var values [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Coordinate{}, fmt.Errorf("invalid track coordinate %q: %w", s, err)
		}
		values[i] = v
	}

	return Coordinate{Lon: values[0], Lat: values[1], Alt: values[2]}, nil
}

// FormatFloat renders v with the shortest representation that parses back exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// KML renders the coordinate as a KML tuple. Altitude is omitted when zero.
func (c Coordinate) KML() string {
	s := FormatFloat(c.Lon) + "," + FormatFloat(c.Lat)
	if c.Alt != 0 {
		s += "," + FormatFloat(c.Alt)
	}
	return s
}

// TrackCoord renders the coordinate as a gx:coord value.
func (c Coordinate) TrackCoord() string {
	return FormatFloat(c.Lon) + " " + FormatFloat(c.Lat) + " " + FormatFloat(c.Alt)
}

// FormatCoordinates renders a sequence as a KML coordinates string.
func FormatCoordinates(coords []Coordinate) string {
	parts := make([]string, len(coords))
	for i, c := range coords {
		parts[i] = c.KML()
	}
	return strings.Join(parts, " ")
}

// CloneCoordinates returns an independent copy of coords. Nil stays nil.
func CloneCoordinates(coords []Coordinate) []Coordinate {
	if coords == nil {
		return nil
	}
	out := make([]Coordinate, len(coords))
	copy(out, coords)
	return out
}
