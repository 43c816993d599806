package kml

import (
	"bufio"
	"io"
	"strings"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/style"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	kmlOpen   = `<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">` + "\n"
	kmlClose  = "</kml>\n"
)

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Escape replaces the five reserved markup characters.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Encoder writes KML elements. The first write error is kept and later writes are skipped.
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder returns an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Err returns the first write error.
func (e *Encoder) Err() error {
	return e.err
}

// Flush writes buffered data and returns the first error seen.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	e.err = e.w.Flush()
	return e.err
}

func (e *Encoder) raw(parts ...string) {
	for _, p := range parts {
		if e.err != nil {
			return
		}
		_, e.err = e.w.WriteString(p)
	}
}

// open writes a start tag with an optional id attribute.
func (e *Encoder) open(tag, id string) {
	if id != "" {
		e.raw("<", tag, ` id="`, Escape(id), `">`, "\n")
		return
	}
	e.raw("<", tag, ">\n")
}

func (e *Encoder) close(tag string) {
	e.raw("</", tag, ">\n")
}

// text writes an escaped simple element.
func (e *Encoder) text(tag, value string) {
	e.raw("<", tag, ">", Escape(value), "</", tag, ">\n")
}

// cdata writes value unescaped inside a CDATA block. A "]]>" inside value is not
// escaped and terminates the block early.
func (e *Encoder) cdata(tag, value string) {
	e.raw("<", tag, "><![CDATA[", value, "]]></", tag, ">\n")
}

func (e *Encoder) coordinates(coords []geo.Coordinate) {
	e.raw("<coordinates>", geo.FormatCoordinates(coords), "</coordinates>\n")
}

// common writes the attributes shared by every feature, in emission order, after the
// start tag: styleUrl, name, description, visibility.
func (e *Encoder) common(c *Common) {
	if c.StyleURL != "" {
		e.text("styleUrl", "#"+c.StyleURL)
	}
	if c.Name != "" {
		e.text("name", c.Name)
	}
	if c.Description != "" {
		e.cdata("description", c.Description)
	}
	if !c.Visibility {
		e.text("visibility", "0")
	}
}

func (e *Encoder) extendedData(x *ExtendedData) {
	if x.Len() == 0 {
		return
	}
	e.raw("<ExtendedData>\n")
	for _, k := range x.keys {
		e.raw(`<Data name="`, Escape(k), `"><value>`, Escape(x.values[k]), "</value></Data>\n")
	}
	e.raw("</ExtendedData>\n")
}

// styles dumps every registry entry in insertion order.
func (e *Encoder) styles(r *style.Registry) {
	if r == nil {
		return
	}
	for _, id := range r.IDs() {
		if m, ok := r.GetMap(id); ok {
			e.styleMap(id, m)
			continue
		}
		if s, ok := r.Get(id); ok {
			e.style(id, s)
		}
	}
}

func (e *Encoder) style(id string, s *style.Style) {
	e.open("Style", id)
	if is := s.IconStyle; is != nil {
		e.raw("<IconStyle>\n")
		e.text("color", is.Color.KML())
		e.text("scale", geo.FormatFloat(is.Scale))
		if is.Heading != 0 {
			e.text("heading", geo.FormatFloat(is.Heading))
		}
		if is.Href != "" {
			e.raw("<Icon><href>", Escape(is.Href), "</href></Icon>\n")
		}
		e.raw("</IconStyle>\n")
	}
	if ls := s.LineStyle; ls != nil {
		e.raw("<LineStyle>\n")
		e.text("color", ls.Color.KML())
		e.text("width", geo.FormatFloat(ls.Width))
		e.raw("</LineStyle>\n")
	}
	if ps := s.PolyStyle; ps != nil {
		e.raw("<PolyStyle>\n")
		e.text("color", ps.Color.KML())
		e.text("fill", boolText(ps.Fill))
		e.text("outline", boolText(ps.Outline))
		e.raw("</PolyStyle>\n")
	}
	e.close("Style")
}

func (e *Encoder) styleMap(id string, m style.StyleMap) {
	e.open("StyleMap", id)
	for _, pair := range []struct{ key, url string }{
		{"normal", m.Normal},
		{"highlight", m.Highlight},
	} {
		if pair.url == "" {
			continue
		}
		e.raw("<Pair><key>", pair.key, "</key><styleUrl>#", Escape(pair.url), "</styleUrl></Pair>\n")
	}
	e.close("StyleMap")
}

func boolText(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
