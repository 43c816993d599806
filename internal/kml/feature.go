// Package kml implements the geospatial feature document model: a tree of folders,
// placemarks and ground overlays with KML and GeoJSON codecs.
package kml

import (
	"encoding/json"
	"fmt"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/resource"
	"github.com/woozymasta/kmldoc/internal/style"
)

// Kind discriminates the Feature variants.
type Kind int

// Feature kinds.
const (
	KindFolder Kind = iota + 1
	KindPlacemark
	KindGroundOverlay
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "Folder"
	case KindPlacemark:
		return "Placemark"
	case KindGroundOverlay:
		return "GroundOverlay"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Feature is the closed set of document nodes: *Folder, *Placemark and *GroundOverlay.
type Feature interface {
	// Base returns the attributes shared by every variant.
	Base() *Common
	Kind() Kind
	// BoundingBox reports false when the feature has no geometric content.
	BoundingBox() (geo.BoundingBox, bool)
	// BuildOverlay converts the feature to a renderable value. A non-nil styler is
	// called once per built overlay and overrides the feature's visibility.
	BuildOverlay(sc StyleContext, styler Styler) overlay.Overlay
	// WriteKML emits the feature as KML. styles is written by the root folder only.
	WriteKML(e *Encoder, styles *style.Registry)
	// GeoJSON returns the flat-format entry, or nil when the variant has no equivalent.
	GeoJSON() (json.RawMessage, error)
	// Clone returns a deep copy sharing no mutable storage with the receiver.
	Clone() Feature
	feature()
}

// Common holds the attributes shared by all features.
type Common struct {
	// ID is optional and unique within a document when set.
	ID          string
	Name        string
	Description string
	Visibility  bool
	// Open is meaningful for folders only.
	Open bool
	// StyleURL names a registry entry, without the leading '#'.
	StyleURL     string
	ExtendedData ExtendedData
}

// Base implements Feature.
func (c *Common) Base() *Common { return c }

func newCommon() Common {
	return Common{Visibility: true, Open: true}
}

func (c *Common) clone() Common {
	out := *c
	out.ExtendedData = c.ExtendedData.Clone()
	return out
}

// StyleContext carries what overlay building needs besides the feature itself.
type StyleContext struct {
	Styles *style.Registry
	// Default applies when a feature's style id is empty or unknown.
	Default *style.Style
	// Images resolves ground overlay pictures that have not been loaded yet. Optional.
	Images ImageSource
}

// ImageSource resolves an image reference.
type ImageSource interface {
	LoadImage(href string) (*resource.Image, error)
}

func (sc StyleContext) resolve(id string) *style.Style {
	fallback := sc.Default
	if fallback == nil {
		fallback = style.Default()
	}
	return sc.Styles.Resolve(id, fallback)
}

// Styler customizes built overlays.
type Styler interface {
	Style(o overlay.Overlay, f Feature)
}

// StylerFunc adapts a function to Styler.
type StylerFunc func(o overlay.Overlay, f Feature)

// Style implements Styler.
func (fn StylerFunc) Style(o overlay.Overlay, f Feature) { fn(o, f) }

// finish fills the shared overlay attributes and applies visibility or the styler.
func finish(o overlay.Overlay, f Feature, styler Styler) overlay.Overlay {
	c := f.Base()
	b := o.Common()
	b.ID = c.ID
	b.Title = c.Name
	b.Snippet = c.Description
	b.Details = c.ExtendedData.Text()
	b.Enabled = true

	if styler == nil {
		b.Enabled = c.Visibility
	} else {
		styler.Style(o, f)
	}
	return o
}

// Walk visits f and its descendants depth-first in pre-order.
func Walk(f Feature, fn func(Feature)) {
	if f == nil {
		return
	}
	fn(f)
	if folder, ok := f.(*Folder); ok {
		for _, c := range folder.Children {
			Walk(c, fn)
		}
	}
}
