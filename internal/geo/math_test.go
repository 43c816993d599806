package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotateCorners(t *testing.T) {
	box := BoundingBox{North: 1, South: -1, East: 1, West: -1}
	corners := box.Corners()

	assert.Equal(t, corners, RotateCorners(corners, 0))

	// A quarter turn counter-clockwise moves the top-left corner to bottom-left.
	rotated := RotateCorners(corners, 90)
	assert.InDelta(t, -1.0, rotated[0].Lon, 1e-9)
	assert.InDelta(t, -1.0, rotated[0].Lat, 1e-9)
	assert.InDelta(t, -1.0, rotated[1].Lon, 1e-9)
	assert.InDelta(t, 1.0, rotated[1].Lat, 1e-9)
}
