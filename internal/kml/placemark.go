package kml

import (
	"encoding/json"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/style"
)

// Placemark is a feature with exactly one geometry.
type Placemark struct {
	Common
	Geometry geo.Geometry
}

// NewPlacemark returns a placemark holding g.
func NewPlacemark(g geo.Geometry) *Placemark {
	return &Placemark{Common: newCommon(), Geometry: g}
}

func (*Placemark) feature() {}

// Kind implements Feature.
func (*Placemark) Kind() Kind { return KindPlacemark }

// BoundingBox implements Feature.
func (p *Placemark) BoundingBox() (geo.BoundingBox, bool) {
	if p.Geometry == nil {
		return geo.BoundingBox{}, false
	}
	return p.Geometry.BoundingBox()
}

// BuildOverlay implements Feature. A placemark without geometry builds nothing.
func (p *Placemark) BuildOverlay(sc StyleContext, styler Styler) overlay.Overlay {
	st := sc.resolve(p.StyleURL)

	var o overlay.Overlay
	switch g := p.Geometry.(type) {
	case *geo.Point:
		is := st.IconStyle
		if is == nil {
			is = style.NewIconStyle()
		}
		o = &overlay.Marker{
			Position:  g.Position,
			Icon:      is.Href,
			IconColor: is.Color,
			Scale:     is.Scale,
			Heading:   is.Heading,
		}

	case *geo.LineString:
		o = polyline(g.Coords, st)

	case *geo.Track:
		o = polyline(g.Coords, st)

	case *geo.Polygon:
		ls, ps := st.LineStyle, st.PolyStyle
		if ls == nil {
			ls = style.NewLineStyle()
		}
		if ps == nil {
			ps = style.NewPolyStyle()
		}

		shape := &overlay.Shape{
			Outer:       geo.CloneCoordinates(g.Outer),
			StrokeColor: ls.Color,
			FillColor:   ps.Color,
			Width:       ls.Width,
		}
		for _, h := range g.Holes {
			shape.Holes = append(shape.Holes, geo.CloneCoordinates(h))
		}
		if !ps.Fill {
			shape.FillColor = 0
		}
		if !ps.Outline {
			shape.Width = 0
		}
		o = shape

	default:
		return nil
	}

	return finish(o, p, styler)
}

func polyline(coords []geo.Coordinate, st *style.Style) *overlay.Polyline {
	ls := st.LineStyle
	if ls == nil {
		ls = style.NewLineStyle()
	}
	return &overlay.Polyline{
		Points: geo.CloneCoordinates(coords),
		Color:  ls.Color,
		Width:  ls.Width,
	}
}

// WriteKML implements Feature.
func (p *Placemark) WriteKML(e *Encoder, _ *style.Registry) {
	e.open("Placemark", p.ID)
	e.common(&p.Common)

	switch g := p.Geometry.(type) {
	case *geo.Point:
		e.raw("<Point>")
		e.coordinates([]geo.Coordinate{g.Position})
		e.raw("</Point>\n")

	case *geo.LineString:
		e.raw("<LineString>")
		e.coordinates(g.Coords)
		e.raw("</LineString>\n")

	case *geo.Polygon:
		e.raw("<Polygon>\n<outerBoundaryIs><LinearRing>")
		e.coordinates(g.Outer)
		e.raw("</LinearRing></outerBoundaryIs>\n")
		for _, h := range g.Holes {
			e.raw("<innerBoundaryIs><LinearRing>")
			e.coordinates(h)
			e.raw("</LinearRing></innerBoundaryIs>\n")
		}
		e.raw("</Polygon>\n")

	case *geo.Track:
		e.raw("<gx:Track>\n")
		for _, t := range g.When {
			e.text("when", t.UTC().Format(time.RFC3339Nano))
		}
		for _, c := range g.Coords {
			e.text("gx:coord", c.TrackCoord())
		}
		e.raw("</gx:Track>\n")
	}

	e.extendedData(&p.ExtendedData)
	e.close("Placemark")
}

// GeoJSON implements Feature. A placemark without geometry has no flat equivalent.
func (p *Placemark) GeoJSON() (json.RawMessage, error) {
	if p.Geometry == nil {
		return nil, nil
	}

	f := geojson.NewFeature(geo.ToOrb(p.Geometry))
	if p.ID != "" {
		f.ID = p.ID
	}
	for k, v := range properties(&p.Common) {
		f.Properties[k] = v
	}

	return f.MarshalJSON()
}

// Clone implements Feature.
func (p *Placemark) Clone() Feature {
	out := &Placemark{Common: p.clone()}
	if p.Geometry != nil {
		out.Geometry = p.Geometry.Clone()
	}
	return out
}
