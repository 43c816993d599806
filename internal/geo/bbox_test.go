package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxOf(t *testing.T) {
	_, ok := BoundingBoxOf(nil)
	assert.False(t, ok)

	box, ok := BoundingBoxOf([]Coordinate{
		{Lat: 10, Lon: 10},
		{Lat: 10, Lon: 20},
		{Lat: 0, Lon: 20},
		{Lat: 0, Lon: 10},
	})
	require.True(t, ok)
	assert.Equal(t, BoundingBox{North: 10, South: 0, East: 20, West: 10}, box)
}

func TestBoundingBoxUnion(t *testing.T) {
	a := BoundingBox{North: 5, South: 1, East: 5, West: 1}
	b := BoundingBox{North: 10, South: 3, East: 4, West: -2}

	assert.Equal(t, BoundingBox{North: 10, South: 1, East: 5, West: -2}, a.Union(b))
	assert.Equal(t, a.Union(b), b.Union(a))
}

func TestBoundingBoxIntersects(t *testing.T) {
	a := BoundingBox{North: 5, South: 0, East: 5, West: 0}

	assert.True(t, a.Intersects(BoundingBox{North: 6, South: 4, East: 6, West: 4}))
	assert.True(t, a.Intersects(BoundingBox{North: 5, South: 5, East: 5, West: 5}))
	assert.False(t, a.Intersects(BoundingBox{North: 9, South: 6, East: 9, West: 6}))
}

func TestParseBoundingBox(t *testing.T) {
	box, err := ParseBoundingBox("10, 0, 20, 10")
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{North: 10, South: 0, East: 20, West: 10}, box)

	_, err = ParseBoundingBox("1,2,3")
	assert.Error(t, err)

	_, err = ParseBoundingBox("20,0,10,10")
	assert.Error(t, err)
}

func TestBoundingBoxCorners(t *testing.T) {
	box := BoundingBox{North: 2, South: 1, East: 4, West: 3}
	assert.Equal(t, [4]Coordinate{
		{Lat: 2, Lon: 3},
		{Lat: 2, Lon: 4},
		{Lat: 1, Lon: 4},
		{Lat: 1, Lon: 3},
	}, box.Corners())
	assert.Equal(t, Coordinate{Lat: 1.5, Lon: 3.5}, box.Center())
}
