package kml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/style"
)

// node is a generic XML element. Dispatch happens on local names, so namespace
// prefixes such as gx: are ignored.
type node struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
	Nodes   []node     `xml:",any"`
}

func (n *node) name() string { return n.XMLName.Local }

func (n *node) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *node) child(name string) *node {
	for i := range n.Nodes {
		if n.Nodes[i].name() == name {
			return &n.Nodes[i]
		}
	}
	return nil
}

func (n *node) text(name string) (string, bool) {
	c := n.child(name)
	if c == nil {
		return "", false
	}
	return strings.TrimSpace(c.Text), true
}

// raw returns the untrimmed character data of the named child. Free text keeps
// its surrounding whitespace.
func (n *node) raw(name string) (string, bool) {
	c := n.child(name)
	if c == nil {
		return "", false
	}
	return c.Text, true
}

func (n *node) float(name string) (float64, bool, error) {
	s, ok := n.text(name)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, true, malformed("%s %q is not a number", name, s)
	}
	return v, true, nil
}

// flag reads a KML boolean: "0" and "false" are false, anything else true.
func (n *node) flag(name string, def bool) bool {
	s, ok := n.text(name)
	if !ok {
		return def
	}
	return s != "0" && s != "false"
}

func isFeatureElement(name string) bool {
	switch name {
	case "Document", "Folder", "Placemark", "GroundOverlay",
		"NetworkLink", "PhotoOverlay", "ScreenOverlay", "Tour":
		return true
	}
	return false
}

// ParseKML reads a KML document. XML syntax errors fail the whole parse with
// ErrMalformedInput; invalid or unsupported features are dropped and listed in
// Document.Diagnostics.
func ParseKML(r io.Reader, opts ParseOptions) (*Document, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	b := newBuilder(opts)
	top := &root
	if top.name() == "kml" {
		top = nil
		for i := range root.Nodes {
			n := &root.Nodes[i]
			switch {
			case n.name() == "Style" || n.name() == "StyleMap":
				b.style(n)
			case top == nil && isFeatureElement(n.name()):
				top = n
			}
		}
		if top == nil {
			return b.doc, nil
		}
	} else if !isFeatureElement(top.name()) {
		return nil, malformed("unexpected root element <%s>", top.name())
	}

	if top.name() == "Document" {
		b.common(&b.doc.Root.Common, top)
		b.doc.Root.Open = top.flag("open", true)
		if id := b.doc.Root.ID; id != "" {
			b.doc.index[id] = b.doc.Root
		}
		b.children(b.doc.Root, top.Nodes, top.name())
	} else {
		b.children(b.doc.Root, []node{*top}, "kml")
	}

	return b.doc, nil
}

func (b *builder) children(parent *Folder, nodes []node, path string) {
	paths := newPathCounter(path)
	for i := range nodes {
		n := &nodes[i]
		switch n.name() {
		case "Style", "StyleMap":
			b.style(n)
		case "Document", "Folder", "Placemark", "GroundOverlay":
			if f := b.feature(n, paths.next(n.name())); f != nil {
				parent.Append(f)
			}
		case "NetworkLink", "PhotoOverlay", "ScreenOverlay", "Tour":
			b.diag(paths.next(n.name()), n.name(), unsupported(n.name()))
		}
	}
}

// feature converts one feature element. Folders claim their identifier before their
// children so that a repeat inside the subtree is the one dropped.
func (b *builder) feature(n *node, path string) Feature {
	switch n.name() {
	case "Document", "Folder":
		f := NewFolder()
		b.common(&f.Common, n)
		f.Open = n.flag("open", true)
		if !b.claim(f, path, n.name()) {
			return nil
		}
		b.children(f, n.Nodes, path)
		return f

	case "Placemark":
		g, err := parseGeometry(n)
		if err != nil {
			b.diag(path, n.name(), err)
			return nil
		}
		p := NewPlacemark(g)
		b.common(&p.Common, n)
		b.inlineStyle(&p.Common, n)
		if !b.claim(p, path, n.name()) {
			return nil
		}
		return p

	case "GroundOverlay":
		g := NewGroundOverlay()
		if err := parseGroundOverlay(g, n); err != nil {
			b.diag(path, n.name(), err)
			return nil
		}
		b.common(&g.Common, n)
		if !b.claim(g, path, n.name()) {
			return nil
		}
		return g
	}
	return nil
}

func (b *builder) common(c *Common, n *node) {
	c.ID = n.attr("id")
	c.Name, _ = n.raw("name")
	c.Description, _ = n.raw("description")
	c.Visibility = n.flag("visibility", true)
	if url, ok := n.text("styleUrl"); ok {
		c.StyleURL = strings.TrimPrefix(url, "#")
	}

	if x := n.child("ExtendedData"); x != nil {
		for i := range x.Nodes {
			d := &x.Nodes[i]
			switch d.name() {
			case "Data":
				v, _ := d.raw("value")
				c.ExtendedData.Set(d.attr("name"), v)
			case "SchemaData":
				for j := range d.Nodes {
					if sd := &d.Nodes[j]; sd.name() == "SimpleData" {
						c.ExtendedData.Set(sd.attr("name"), sd.Text)
					}
				}
			}
		}
	}
}

// inlineStyle registers a Style embedded in a feature under a generated id and
// points the feature at it.
func (b *builder) inlineStyle(c *Common, n *node) {
	if s := n.child("Style"); s != nil {
		c.StyleURL = b.doc.Styles.Add(parseStyle(s))
	}
}

func (b *builder) style(n *node) {
	id := n.attr("id")
	switch n.name() {
	case "Style":
		if id == "" {
			b.doc.Styles.Add(parseStyle(n))
			return
		}
		b.doc.Styles.Put(id, parseStyle(n))

	case "StyleMap":
		if id == "" {
			return
		}
		var m style.StyleMap
		for i := range n.Nodes {
			p := &n.Nodes[i]
			if p.name() != "Pair" {
				continue
			}
			key, _ := p.text("key")
			url, _ := p.text("styleUrl")
			url = strings.TrimPrefix(url, "#")
			switch key {
			case "normal":
				m.Normal = url
			case "highlight":
				m.Highlight = url
			}
		}
		b.doc.Styles.PutMap(id, m)
	}
}

// parseStyle is lenient: unreadable values keep their defaults.
func parseStyle(n *node) *style.Style {
	s := &style.Style{}

	if is := n.child("IconStyle"); is != nil {
		s.IconStyle = style.NewIconStyle()
		s.IconStyle.Color = colorOr(is, s.IconStyle.Color)
		if v, ok, err := is.float("scale"); ok && err == nil {
			s.IconStyle.Scale = v
		}
		if v, ok, err := is.float("heading"); ok && err == nil {
			s.IconStyle.Heading = v
		}
		if icon := is.child("Icon"); icon != nil {
			s.IconStyle.Href, _ = icon.text("href")
		}
	}

	if ls := n.child("LineStyle"); ls != nil {
		s.LineStyle = style.NewLineStyle()
		s.LineStyle.Color = colorOr(ls, s.LineStyle.Color)
		if v, ok, err := ls.float("width"); ok && err == nil {
			s.LineStyle.Width = v
		}
	}

	if ps := n.child("PolyStyle"); ps != nil {
		s.PolyStyle = style.NewPolyStyle()
		s.PolyStyle.Color = colorOr(ps, s.PolyStyle.Color)
		s.PolyStyle.Fill = ps.flag("fill", true)
		s.PolyStyle.Outline = ps.flag("outline", true)
	}

	return s
}

func colorOr(n *node, def style.Color) style.Color {
	s, ok := n.text("color")
	if !ok {
		return def
	}
	c, err := style.ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

func parseGeometry(n *node) (geo.Geometry, error) {
	for i := range n.Nodes {
		g := &n.Nodes[i]
		switch g.name() {
		case "Point":
			coords, err := coordinates(g)
			if err != nil {
				return nil, err
			}
			if len(coords) != 1 {
				return nil, malformed("point has %d coordinates", len(coords))
			}
			return &geo.Point{Position: coords[0]}, nil

		case "LineString":
			coords, err := coordinates(g)
			if err != nil {
				return nil, err
			}
			if len(coords) == 0 {
				return nil, malformed("empty line string")
			}
			return &geo.LineString{Coords: coords}, nil

		case "Polygon":
			return parsePolygon(g)

		case "Track":
			return parseTrack(g)

		case "MultiGeometry", "MultiTrack", "Model":
			return nil, unsupported(g.name())
		}
	}
	return nil, malformed("placemark without geometry")
}

func coordinates(n *node) ([]geo.Coordinate, error) {
	s, ok := n.text("coordinates")
	if !ok {
		return nil, malformed("<%s> without coordinates", n.name())
	}
	coords, err := geo.ParseCoordinates(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return coords, nil
}

func ring(boundary *node) ([]geo.Coordinate, error) {
	lr := boundary.child("LinearRing")
	if lr == nil {
		return nil, malformed("<%s> without LinearRing", boundary.name())
	}
	return coordinates(lr)
}

func parsePolygon(n *node) (geo.Geometry, error) {
	outer := n.child("outerBoundaryIs")
	if outer == nil {
		return nil, malformed("polygon without outer boundary")
	}

	p := &geo.Polygon{}
	var err error
	if p.Outer, err = ring(outer); err != nil {
		return nil, err
	}
	if len(p.Outer) == 0 {
		return nil, malformed("empty outer boundary")
	}

	for i := range n.Nodes {
		if n.Nodes[i].name() != "innerBoundaryIs" {
			continue
		}
		hole, err := ring(&n.Nodes[i])
		if err != nil {
			return nil, err
		}
		p.Holes = append(p.Holes, hole)
	}
	return p, nil
}

var whenLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseWhen(s string) (time.Time, error) {
	for _, layout := range whenLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, malformed("invalid timestamp %q", s)
}

func parseTrack(n *node) (geo.Geometry, error) {
	t := &geo.Track{}
	for i := range n.Nodes {
		c := &n.Nodes[i]
		switch c.name() {
		case "when":
			when, err := parseWhen(strings.TrimSpace(c.Text))
			if err != nil {
				return nil, err
			}
			t.When = append(t.When, when)
		case "coord":
			coord, err := geo.ParseTrackCoord(c.Text)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
			}
			t.Coords = append(t.Coords, coord)
		}
	}

	if len(t.Coords) == 0 {
		return nil, malformed("empty track")
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}
	return t, nil
}

func parseGroundOverlay(g *GroundOverlay, n *node) error {
	if s, ok := n.text("color"); ok {
		c, err := style.ParseColor(s)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		g.Color = c
	}
	if icon := n.child("Icon"); icon != nil {
		g.Href, _ = icon.text("href")
	}

	if box := n.child("LatLonBox"); box != nil {
		var v [4]float64
		for i, name := range []string{"north", "south", "east", "west"} {
			f, ok, err := box.float(name)
			if err != nil {
				return err
			}
			if !ok {
				return malformed("LatLonBox without %s", name)
			}
			v[i] = f
		}
		rotation, _, err := box.float("rotation")
		if err != nil {
			return err
		}
		g.SetLatLonBox(v[0], v[1], v[2], v[3])
		g.Rotation = rotation
		return nil
	}

	if quad := n.child("LatLonQuad"); quad != nil {
		coords, err := coordinates(quad)
		if err != nil {
			return err
		}
		return g.SetLatLonQuad(coords)
	}

	return malformed("ground overlay without LatLonBox or LatLonQuad")
}
