package geo

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometryBoundingBox(t *testing.T) {
	tests := []struct {
		name string
		geom Geometry
		want BoundingBox
		ok   bool
	}{
		{
			name: "point",
			geom: &Point{Position: Coordinate{Lat: 3, Lon: 4}},
			want: BoundingBox{North: 3, South: 3, East: 4, West: 4},
			ok:   true,
		},
		{
			name: "empty line",
			geom: &LineString{},
		},
		{
			name: "polygon ignores holes",
			geom: &Polygon{
				Outer: []Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 4}, {Lat: 4, Lon: 4}, {Lat: 0, Lon: 0}},
				Holes: [][]Coordinate{{{Lat: 50, Lon: 50}}},
			},
			want: BoundingBox{North: 4, South: 0, East: 4, West: 0},
			ok:   true,
		},
		{
			name: "track",
			geom: &Track{Coords: []Coordinate{{Lat: -1, Lon: 7}, {Lat: 2, Lon: 5}}},
			want: BoundingBox{North: 2, South: -1, East: 7, West: 5},
			ok:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.geom.BoundingBox()
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestGeometryCloneIsDeep(t *testing.T) {
	poly := &Polygon{
		Outer: []Coordinate{{Lat: 1, Lon: 1}},
		Holes: [][]Coordinate{{{Lat: 2, Lon: 2}}},
	}
	cp := poly.Clone().(*Polygon)
	cp.Outer[0].Lat = 9
	cp.Holes[0][0].Lat = 9
	assert.Equal(t, 1.0, poly.Outer[0].Lat)
	assert.Equal(t, 2.0, poly.Holes[0][0].Lat)

	now := time.Unix(1700000000, 0).UTC()
	track := &Track{Coords: []Coordinate{{Lat: 1}}, When: []time.Time{now}}
	tc := track.Clone().(*Track)
	tc.When[0] = time.Time{}
	assert.Equal(t, now, track.When[0])
}

func TestTrackValidate(t *testing.T) {
	assert.NoError(t, (&Track{Coords: []Coordinate{{}, {}}}).Validate())
	assert.Error(t, (&Track{Coords: []Coordinate{{}, {}}, When: []time.Time{{}}}).Validate())
}

func TestOrbConversion(t *testing.T) {
	poly := &Polygon{
		Outer: []Coordinate{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}, {Lat: 0, Lon: 0}},
		Holes: [][]Coordinate{{{Lat: 0.2, Lon: 0.2}, {Lat: 0.2, Lon: 0.3}, {Lat: 0.3, Lon: 0.3}, {Lat: 0.2, Lon: 0.2}}},
	}

	og := ToOrb(poly)
	require.IsType(t, orb.Polygon{}, og)
	assert.Equal(t, orb.Point{1, 0}, og.(orb.Polygon)[0][1])

	back, err := FromOrb(og)
	require.NoError(t, err)
	assert.Equal(t, poly, back)

	track := &Track{Coords: []Coordinate{{Lat: 1, Lon: 2}, {Lat: 3, Lon: 4}}}
	assert.Equal(t, orb.LineString{{2, 1}, {4, 3}}, ToOrb(track))

	_, err = FromOrb(orb.MultiPoint{{1, 2}})
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)

	_, err = FromOrb(nil)
	assert.ErrorIs(t, err, ErrUnsupportedGeometry)
}
