package kml

import (
	"context"
	"encoding/json"
	"fmt"
	"image"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/resource"
	"github.com/woozymasta/kmldoc/internal/style"
)

// GroundOverlay drapes an image over the map.
type GroundOverlay struct {
	Common
	// Href references the image; see resource.Resolver.
	Href string
	// Color tints the image. Its alpha sets the overlay transparency.
	Color style.Color
	// Rotation is in degrees, positive counter-clockwise.
	Rotation float64
	// Coords holds either the north-west and south-east corners of a LatLonBox, or
	// the four corners of a quad counter-clockwise from bottom-left.
	Coords []geo.Coordinate

	picture image.Image
	loaded  bool
}

// NewGroundOverlay returns an overlay with the default black tint and no corners.
func NewGroundOverlay() *GroundOverlay {
	return &GroundOverlay{Common: newCommon(), Color: style.Black}
}

func (*GroundOverlay) feature() {}

// Kind implements Feature.
func (*GroundOverlay) Kind() Kind { return KindGroundOverlay }

// SetLatLonBox anchors the overlay to an axis-aligned box.
func (g *GroundOverlay) SetLatLonBox(north, south, east, west float64) {
	g.Coords = []geo.Coordinate{
		{Lat: north, Lon: west},
		{Lat: south, Lon: east},
	}
}

// SetLatLonQuad anchors the overlay to four corners, counter-clockwise from bottom-left.
func (g *GroundOverlay) SetLatLonQuad(coords []geo.Coordinate) error {
	if len(coords) != 4 {
		return malformed("quad needs 4 coordinates, got %d", len(coords))
	}
	g.Coords = geo.CloneCoordinates(coords)
	return nil
}

// Corners returns the anchor as top-left, top-right, bottom-right, bottom-left.
func (g *GroundOverlay) Corners() ([4]geo.Coordinate, bool) {
	switch len(g.Coords) {
	case 2:
		nw, se := g.Coords[0], g.Coords[1]
		return [4]geo.Coordinate{
			{Lat: nw.Lat, Lon: nw.Lon},
			{Lat: nw.Lat, Lon: se.Lon},
			{Lat: se.Lat, Lon: se.Lon},
			{Lat: se.Lat, Lon: nw.Lon},
		}, true
	case 4:
		c := g.Coords
		return [4]geo.Coordinate{c[3], c[2], c[1], c[0]}, true
	default:
		return [4]geo.Coordinate{}, false
	}
}

// Image returns the decoded picture, or nil when not loaded or unavailable.
func (g *GroundOverlay) Image() image.Image {
	return g.picture
}

// SetImage replaces the picture and marks it loaded.
func (g *GroundOverlay) SetImage(img image.Image) {
	g.picture = img
	g.loaded = true
}

// Loaded reports whether resolution was attempted.
func (g *GroundOverlay) Loaded() bool {
	return g.loaded
}

// LoadImage resolves Href. On failure the picture stays nil and the error, wrapping
// resource.ErrResourceUnavailable, is returned for reporting only.
func (g *GroundOverlay) LoadImage(ctx context.Context, r *resource.Resolver, rc resource.Context) error {
	g.loaded = true
	g.picture = nil
	if g.Href == "" {
		return nil
	}
	if r == nil {
		return fmt.Errorf("%w: no resolver for %q", resource.ErrResourceUnavailable, g.Href)
	}

	img, err := r.Resolve(ctx, g.Href, rc)
	if err != nil {
		return err
	}
	g.picture = img.Picture
	return nil
}

// BoundingBox implements Feature.
func (g *GroundOverlay) BoundingBox() (geo.BoundingBox, bool) {
	return geo.BoundingBoxOf(g.Coords)
}

// BuildOverlay implements Feature. The style registry is not consulted. An overlay
// without a valid anchor builds nothing.
func (g *GroundOverlay) BuildOverlay(sc StyleContext, styler Styler) overlay.Overlay {
	corners, ok := g.Corners()
	if !ok {
		return nil
	}

	if !g.loaded && g.Href != "" && sc.Images != nil {
		g.loaded = true
		img, err := sc.Images.LoadImage(g.Href)
		if err != nil {
			log.Debug().Str("href", g.Href).Err(err).Msg("Ground overlay falls back to tint")
		} else {
			g.picture = img.Picture
		}
	}

	o := &overlay.Image{
		Corners: corners,
		Bearing: -g.Rotation,
	}
	if g.picture != nil {
		o.Picture = g.picture
		o.Transparency = 1 - float64(g.Color.Alpha())/255
	} else {
		o.Picture = overlay.SolidImage(2, 2, g.Color)
		o.Fallback = true
	}

	return finish(o, g, styler)
}

// WriteKML implements Feature.
func (g *GroundOverlay) WriteKML(e *Encoder, _ *style.Registry) {
	e.open("GroundOverlay", g.ID)
	e.common(&g.Common)

	e.text("color", g.Color.KML())
	if g.Href != "" {
		e.raw("<Icon><href>", Escape(g.Href), "</href></Icon>\n")
	}

	switch len(g.Coords) {
	case 2:
		nw, se := g.Coords[0], g.Coords[1]
		e.raw("<LatLonBox>\n")
		e.text("north", geo.FormatFloat(nw.Lat))
		e.text("south", geo.FormatFloat(se.Lat))
		e.text("east", geo.FormatFloat(se.Lon))
		e.text("west", geo.FormatFloat(nw.Lon))
		if g.Rotation != 0 {
			e.text("rotation", geo.FormatFloat(g.Rotation))
		}
		e.raw("</LatLonBox>\n")
	case 4:
		e.raw("<gx:LatLonQuad>")
		e.coordinates(g.Coords)
		e.raw("</gx:LatLonQuad>\n")
	}

	e.extendedData(&g.ExtendedData)
	e.close("GroundOverlay")
}

// GeoJSON implements Feature. Ground overlays have no flat equivalent.
func (*GroundOverlay) GeoJSON() (json.RawMessage, error) {
	return nil, nil
}

// Clone implements Feature. The decoded picture is immutable and shared.
func (g *GroundOverlay) Clone() Feature {
	out := *g
	out.Common = g.clone()
	out.Coords = geo.CloneCoordinates(g.Coords)
	return &out
}
