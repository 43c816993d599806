package kml

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/style"
)

func TestInsertRejectsDuplicateSibling(t *testing.T) {
	doc := NewDocument()

	first := NewPlacemark(&geo.Point{})
	first.ID = "a"
	require.NoError(t, doc.Insert(nil, first))

	second := NewPlacemark(&geo.Point{Position: geo.Coordinate{Lat: 1, Lon: 1}})
	second.ID = "a"
	err := doc.Insert(nil, second)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateIdentifier))
	var dup *DuplicateIDError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.ID)

	assert.Equal(t, []Feature{first}, doc.Root.Children)
	got, ok := doc.FeatureByID("a")
	require.True(t, ok)
	assert.Same(t, first, got)
}

func TestInsertRejectsDuplicateInsideSubtree(t *testing.T) {
	doc := NewDocument()

	folder := NewFolder()
	folder.ID = "f"
	a := NewPlacemark(&geo.Point{})
	a.ID = "x"
	b := NewPlacemark(&geo.Point{})
	b.ID = "x"
	folder.Append(a, b)

	err := doc.Insert(nil, folder)
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Empty(t, doc.Root.Children)
	_, ok := doc.FeatureByID("f")
	assert.False(t, ok)
}

func TestInsertUnknownParent(t *testing.T) {
	doc := NewDocument()
	stray := NewFolder()

	err := doc.Insert(stray, NewPlacemark(&geo.Point{}))
	require.ErrorIs(t, err, ErrUnknownParent)
	assert.Empty(t, stray.Children)
}

func TestInsertTwice(t *testing.T) {
	doc := NewDocument()
	p := NewPlacemark(&geo.Point{})
	require.NoError(t, doc.Insert(nil, p))
	require.Error(t, doc.Insert(nil, p))
	assert.Len(t, doc.Root.Children, 1)
}

func TestRemove(t *testing.T) {
	doc := sampleDocument(t)
	towns, ok := doc.FeatureByID("towns")
	require.True(t, ok)

	assert.True(t, doc.Remove(nil, towns))
	assert.False(t, doc.Remove(nil, towns))

	_, ok = doc.FeatureByID("berezino")
	assert.False(t, ok)

	// identifiers are free again
	again := NewPlacemark(&geo.Point{})
	again.ID = "berezino"
	require.NoError(t, doc.Insert(nil, again))
}

func TestReindex(t *testing.T) {
	doc := NewDocument()
	a := NewPlacemark(&geo.Point{})
	a.ID = "same"
	b := NewPlacemark(&geo.Point{})
	b.ID = "same"
	doc.Root.Append(a, b)

	err := doc.Reindex()
	require.ErrorIs(t, err, ErrDuplicateIdentifier)
	got, ok := doc.FeatureByID("same")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestFolderBoundingBox(t *testing.T) {
	doc := sampleDocument(t)

	box, ok := doc.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, geo.BoundingBox{North: 14, South: 0, East: 4, West: 0}, box)

	empty := doc.Root.Children[len(doc.Root.Children)-1]
	_, ok = empty.BoundingBox()
	assert.False(t, ok, "folder without geometric descendants has no box")

	nested := NewFolder()
	nested.Append(NewFolder(), NewFolder())
	_, ok = nested.BoundingBox()
	assert.False(t, ok)

	g := NewGroundOverlay()
	g.SetLatLonBox(30, 20, 50, 40)
	nested.Append(g)
	box, ok = nested.BoundingBox()
	require.True(t, ok)
	assert.Equal(t, geo.BoundingBox{North: 30, South: 20, East: 50, West: 40}, box)
}

func TestCloneIsDisjoint(t *testing.T) {
	doc := sampleDocument(t)
	clone := doc.Clone()

	assert.Equal(t, flatten(doc.Root), flatten(clone.Root))

	f, ok := clone.FeatureByID("berezino")
	require.True(t, ok)
	p := f.(*Placemark)
	p.ExtendedData.Set("population", "0")
	p.ExtendedData.Set("new", "value")
	p.Geometry.(*geo.Point).Position.Lat = -1
	p.Name = "Changed"

	orig, _ := doc.FeatureByID("berezino")
	op := orig.(*Placemark)
	v, _ := op.ExtendedData.Get("population")
	assert.Equal(t, "1200", v)
	_, ok = op.ExtendedData.Get("new")
	assert.False(t, ok)
	assert.Equal(t, 12.5, op.Geometry.(*geo.Point).Position.Lat)
	assert.Equal(t, "Berezino", op.Name)

	road, _ := clone.FeatureByID("road")
	road.(*Placemark).Geometry.(*geo.LineString).Coords[0].Lon = 99
	origRoad, _ := doc.FeatureByID("road")
	assert.Equal(t, 1.0, origRoad.(*Placemark).Geometry.(*geo.LineString).Coords[0].Lon)

	clone.Root.Children = clone.Root.Children[:1]
	assert.Len(t, doc.Root.Children, 4)

	clone.Styles.Put("extra", style.Default())
	assert.False(t, doc.Styles.Has("extra"))
}

func TestSearchConcurrentWithoutGeometry(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, doc.Insert(nil, NewFolder()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Empty(t, doc.Search(geo.BoundingBox{North: 1, South: -1, East: 1, West: -1}))
		}()
	}
	wg.Wait()
}

func TestSearch(t *testing.T) {
	doc := sampleDocument(t)

	hits := doc.Search(geo.BoundingBox{North: 12.6, South: 10.5, East: 3.3, West: 3})
	require.Len(t, hits, 2)
	assert.Equal(t, "berezino", hits[0].Base().ID)
	assert.Equal(t, "road", hits[1].Base().ID)

	assert.Empty(t, doc.Search(geo.BoundingBox{North: 80, South: 70, East: 80, West: 70}))

	// the spatial index follows inserts
	far := NewPlacemark(&geo.Point{Position: geo.Coordinate{Lat: 75, Lon: 75}})
	require.NoError(t, doc.Insert(nil, far))
	assert.Len(t, doc.Search(geo.BoundingBox{North: 80, South: 70, East: 80, West: 70}), 1)
}

func TestBuildOverlaysVisibility(t *testing.T) {
	doc := sampleDocument(t)

	root := doc.BuildOverlays(context.Background(), nil, nil)
	group, ok := root.(*overlay.Group)
	require.True(t, ok)
	require.Len(t, group.Children, 4)

	towns := group.Children[0].(*overlay.Group)
	require.Len(t, towns.Children, 2)

	marker := towns.Children[0].(*overlay.Marker)
	assert.Equal(t, "Berezino", marker.Title)
	assert.Equal(t, "Harbor town", marker.Snippet)
	assert.Equal(t, "population=1200<br>\nkind=town<br>\n", marker.Details)
	assert.True(t, marker.Enabled)
	assert.False(t, towns.Children[1].Common().Enabled)

	line := group.Children[1].(*overlay.Polyline)
	assert.Equal(t, style.ARGB(0xff, 0xff, 0, 0), line.Color, "style map resolves through normal")
	assert.Equal(t, 3.0, line.Width)

	shape := group.Children[2].(*overlay.Shape)
	assert.Len(t, shape.Holes, 1)
	assert.Equal(t, style.White, shape.FillColor)
}

func TestBuildOverlaysStylerOverridesVisibility(t *testing.T) {
	doc := sampleDocument(t)

	calls := 0
	styler := StylerFunc(func(o overlay.Overlay, f Feature) {
		calls++
		if m, ok := o.(*overlay.Marker); ok {
			m.IconColor = style.ARGB(0xff, 0, 0xff, 0)
		}
	})

	root := doc.BuildOverlays(context.Background(), nil, styler)

	// root, towns, 2 markers, road, lake, empty folder
	assert.Equal(t, 7, calls)
	overlay.Walk(root, func(o overlay.Overlay) {
		assert.True(t, o.Common().Enabled, "styler leaves enabled state to itself")
		if m, ok := o.(*overlay.Marker); ok {
			assert.Equal(t, style.ARGB(0xff, 0, 0xff, 0), m.IconColor)
		}
	})
}

func TestBuildOverlaysDefaultStyle(t *testing.T) {
	doc := NewDocument()
	p := NewPlacemark(&geo.Polygon{Outer: []geo.Coordinate{{}, {Lat: 1}, {Lon: 1}}})
	p.StyleURL = "missing"
	require.NoError(t, doc.Insert(nil, p))

	def := &style.Style{
		LineStyle: &style.LineStyle{Color: style.Black, Width: 2},
		PolyStyle: &style.PolyStyle{Color: style.White, Fill: false, Outline: false},
	}
	g := doc.BuildOverlays(context.Background(), def, nil).(*overlay.Group)
	shape := g.Children[0].(*overlay.Shape)
	assert.Equal(t, style.Color(0), shape.FillColor)
	assert.Zero(t, shape.Width)
	assert.Equal(t, style.Black, shape.StrokeColor)
}

func TestCount(t *testing.T) {
	doc := sampleDocument(t)
	assert.Equal(t, 3, doc.Count(KindFolder))
	assert.Equal(t, 4, doc.Count(KindPlacemark))
	assert.Zero(t, doc.Count(KindGroundOverlay))
}
