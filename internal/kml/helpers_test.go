package kml

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/style"
)

// sampleDocument builds a tree exercising every geometry variant and nesting.
func sampleDocument(t *testing.T) *Document {
	t.Helper()

	doc := NewDocument()
	doc.Root.Name = "Sample"
	doc.Root.Description = "Root <b>document</b>"
	doc.Styles.Put("red", &style.Style{
		LineStyle: &style.LineStyle{Color: style.ARGB(0xff, 0xff, 0, 0), Width: 3},
	})
	doc.Styles.PutMap("redMap", style.StyleMap{Normal: "red", Highlight: "red"})

	towns := NewFolder()
	towns.ID = "towns"
	towns.Name = "Towns & villages"
	towns.Open = false
	towns.ExtendedData.Set("region", "north")
	require.NoError(t, doc.Insert(nil, towns))

	berezino := NewPlacemark(&geo.Point{Position: geo.Coordinate{Lat: 12.5, Lon: 3.25}})
	berezino.ID = "berezino"
	berezino.Name = "Berezino"
	berezino.Description = "Harbor town"
	berezino.ExtendedData.Set("population", "1200")
	berezino.ExtendedData.Set("kind", "town")
	require.NoError(t, doc.Insert(towns, berezino))

	hidden := NewPlacemark(&geo.Point{Position: geo.Coordinate{Lat: 14, Lon: 4}})
	hidden.Name = "Hidden"
	hidden.Visibility = false
	require.NoError(t, doc.Insert(towns, hidden))

	road := NewPlacemark(&geo.LineString{Coords: []geo.Coordinate{
		{Lat: 10, Lon: 1},
		{Lat: 11, Lon: 2},
		{Lat: 10.5, Lon: 3.5},
	}})
	road.ID = "road"
	road.Name = "Road"
	road.StyleURL = "redMap"
	require.NoError(t, doc.Insert(nil, road))

	lake := NewPlacemark(&geo.Polygon{
		Outer: []geo.Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 2}, {Lat: 2, Lon: 2}, {Lat: 2, Lon: 0}, {Lat: 0, Lon: 0}},
		Holes: [][]geo.Coordinate{
			{{Lat: 0.5, Lon: 0.5}, {Lat: 0.5, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0.5, Lon: 0.5}},
		},
	})
	lake.Name = "Lake"
	require.NoError(t, doc.Insert(nil, lake))

	empty := NewFolder()
	empty.Name = "Empty"
	require.NoError(t, doc.Insert(nil, empty))

	return doc
}

// flatten lists features in pre-order with their depth, for structural comparison.
type flatFeature struct {
	Depth       int
	Kind        Kind
	ID          string
	Name        string
	Description string
	Visibility  bool
	Open        bool
	StyleURL    string
	Extended    map[string]string
	Box         geo.BoundingBox
	HasBox      bool
}

func flatten(f Feature) []flatFeature {
	var out []flatFeature
	var walk func(Feature, int)
	walk = func(f Feature, depth int) {
		c := f.Base()
		box, ok := f.BoundingBox()
		out = append(out, flatFeature{
			Depth:       depth,
			Kind:        f.Kind(),
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Visibility:  c.Visibility,
			Open:        c.Open,
			StyleURL:    c.StyleURL,
			Extended:    c.ExtendedData.Map(),
			Box:         box,
			HasBox:      ok,
		})
		if folder, ok := f.(*Folder); ok {
			for _, child := range folder.Children {
				walk(child, depth+1)
			}
		}
	}
	walk(f, 0)
	return out
}
