package kml

import (
	"encoding/json"
	"slices"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/style"
)

// Folder is an ordered container of features. The root folder of a document is
// written as a KML Document.
type Folder struct {
	Common
	Root     bool
	Children []Feature
}

// NewFolder returns an empty folder with default attributes.
func NewFolder() *Folder {
	return &Folder{Common: newCommon()}
}

func (*Folder) feature() {}

// Kind implements Feature.
func (*Folder) Kind() Kind { return KindFolder }

// Append adds children at the end without identifier checks. Use Document.Insert for
// features that belong to a document.
func (f *Folder) Append(children ...Feature) {
	f.Children = append(f.Children, children...)
}

// IndexOf returns the position of child, or -1.
func (f *Folder) IndexOf(child Feature) int {
	return slices.Index(f.Children, child)
}

// BoundingBox implements Feature.
func (f *Folder) BoundingBox() (geo.BoundingBox, bool) {
	var (
		box geo.BoundingBox
		ok  bool
	)
	for _, c := range f.Children {
		cb, cok := c.BoundingBox()
		if !cok {
			continue
		}
		if !ok {
			box, ok = cb, true
			continue
		}
		box = box.Union(cb)
	}
	return box, ok
}

// BuildOverlay implements Feature.
func (f *Folder) BuildOverlay(sc StyleContext, styler Styler) overlay.Overlay {
	g := &overlay.Group{}
	for _, c := range f.Children {
		if o := c.BuildOverlay(sc, styler); o != nil {
			g.Children = append(g.Children, o)
		}
	}
	return finish(g, f, styler)
}

// WriteKML implements Feature.
func (f *Folder) WriteKML(e *Encoder, styles *style.Registry) {
	tag := "Folder"
	if f.Root {
		tag = "Document"
	}

	e.open(tag, f.ID)
	e.common(&f.Common)
	if !f.Open {
		e.text("open", "0")
	}
	for _, c := range f.Children {
		c.WriteKML(e, nil)
	}
	e.extendedData(&f.ExtendedData)
	if f.Root {
		e.styles(styles)
	}
	e.close(tag)
}

type featureCollection struct {
	Type       string            `json:"type"`
	ID         string            `json:"id,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Features   []json.RawMessage `json:"features"`
}

// GeoJSON implements Feature. Children without a flat equivalent are skipped.
func (f *Folder) GeoJSON() (json.RawMessage, error) {
	fc := featureCollection{
		Type:     "FeatureCollection",
		ID:       f.ID,
		Features: make([]json.RawMessage, 0, len(f.Children)),
	}
	if props := properties(&f.Common); len(props) > 0 {
		fc.Properties = props
	}

	for _, c := range f.Children {
		raw, err := c.GeoJSON()
		if err != nil {
			return nil, err
		}
		if raw != nil {
			fc.Features = append(fc.Features, raw)
		}
	}

	return json.Marshal(fc)
}

// Clone implements Feature.
func (f *Folder) Clone() Feature {
	out := &Folder{Common: f.clone(), Root: f.Root}
	if f.Children != nil {
		out.Children = make([]Feature, len(f.Children))
		for i, c := range f.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// properties flattens the shared attributes into flat-format properties. Extended
// data keys named like a shared attribute are written with the ext: prefix.
func properties(c *Common) map[string]string {
	props := make(map[string]string, c.ExtendedData.Len()+2)
	for k, v := range c.ExtendedData.Map() {
		props[extendedKey(k)] = v
	}
	if c.Name != "" {
		props[propName] = c.Name
	}
	if c.Description != "" {
		props[propDescription] = c.Description
	}
	return props
}
