// Package overlay defines format-agnostic renderable values built from document features.
package overlay

import (
	"image"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/style"
)

// Overlay is the closed set of renderable values: *Marker, *Polyline, *Shape, *Image, *Group.
type Overlay interface {
	Common() *Base
	overlay()
}

// Base carries the properties shared by all overlays.
type Base struct {
	ID      string
	Title   string
	Snippet string
	// Details is the source feature's extended data rendered as text.
	Details string
	Enabled bool
}

// Common implements Overlay.
func (b *Base) Common() *Base { return b }

// Marker renders a point.
type Marker struct {
	Base
	Position  geo.Coordinate
	Icon      string
	IconColor style.Color
	Scale     float64
	Heading   float64
}

// Polyline renders an open path.
type Polyline struct {
	Base
	Points []geo.Coordinate
	Color  style.Color
	Width  float64
}

// Shape renders a closed area with optional holes.
type Shape struct {
	Base
	Outer       []geo.Coordinate
	Holes       [][]geo.Coordinate
	StrokeColor style.Color
	FillColor   style.Color
	Width       float64
}

// Image renders a picture stretched over a quad.
type Image struct {
	Base
	// Corners are ordered top-left, top-right, bottom-right, bottom-left.
	Corners [4]geo.Coordinate
	// Bearing is clockwise from north, the negated KML rotation.
	Bearing float64
	// Transparency ranges from 0 (opaque) to 1 (invisible).
	Transparency float64
	Picture      image.Image
	// Fallback is set when Picture is a solid tint because the resource was unavailable.
	Fallback bool
}

// Group holds the overlays built from a folder's children.
type Group struct {
	Base
	Children []Overlay
}

func (*Marker) overlay()   {}
func (*Polyline) overlay() {}
func (*Shape) overlay()    {}
func (*Image) overlay()    {}
func (*Group) overlay()    {}

// BoundingBox derives the box enclosing the image corners.
func (o *Image) BoundingBox() geo.BoundingBox {
	box, _ := geo.BoundingBoxOf(o.Corners[:])
	return box
}

// Footprint returns the corners rotated by the overlay rotation.
func (o *Image) Footprint() [4]geo.Coordinate {
	return geo.RotateCorners(o.Corners, -o.Bearing)
}

// SolidImage returns a w x h picture filled with c.
func SolidImage(w, h int, c style.Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	px := c.NRGBA()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, px)
		}
	}
	return img
}

// Walk visits o and, for groups, every descendant in pre-order.
func Walk(o Overlay, fn func(Overlay)) {
	if o == nil {
		return
	}
	fn(o)
	if g, ok := o.(*Group); ok {
		for _, c := range g.Children {
			Walk(c, fn)
		}
	}
}
