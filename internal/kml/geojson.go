package kml

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/paulmach/orb/geojson"

	"github.com/woozymasta/kmldoc/internal/geo"
)

// Flat-format property keys for the shared attributes.
const (
	propName        = "name"
	propDescription = "description"

	// propExtPrefix marks extended data keys that collide with the shared attributes.
	propExtPrefix = "ext:"
)

// extendedKey maps an extended data key to its property key.
func extendedKey(k string) string {
	switch k {
	case propName, propDescription:
		return propExtPrefix + k
	}
	return k
}

const (
	typeFeatureCollection = "FeatureCollection"
	typeFeature           = "Feature"
)

type discriminant struct {
	Type string `json:"type"`
}

type rawCollection struct {
	ID         any               `json:"id"`
	Properties map[string]any    `json:"properties"`
	Features   []json.RawMessage `json:"features"`
}

// ParseGeoJSON reads a FeatureCollection, possibly nested, or a single Feature.
// Entries with another type or an unsupported geometry are dropped and listed in
// Document.Diagnostics.
func ParseGeoJSON(r io.Reader, opts ParseOptions) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}

	var head discriminant
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	b := newBuilder(opts)
	switch head.Type {
	case typeFeatureCollection:
		var fc rawCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		root := b.doc.Root
		root.ID = jsonID(fc.ID)
		applyProperties(&root.Common, fc.Properties)
		if root.ID != "" {
			b.doc.index[root.ID] = root
		}
		b.entries(root, fc.Features, typeFeatureCollection)

	case typeFeature:
		b.entries(b.doc.Root, []json.RawMessage{data}, typeFeatureCollection)

	default:
		return nil, unsupported(fmt.Sprintf("geojson type %q", head.Type))
	}

	return b.doc, nil
}

func (b *builder) entries(parent *Folder, raws []json.RawMessage, path string) {
	paths := newPathCounter(path)
	for _, raw := range raws {
		var head discriminant
		if err := json.Unmarshal(raw, &head); err != nil {
			b.diag(paths.next("?"), "?", fmt.Errorf("%w: %w", ErrMalformedInput, err))
			continue
		}

		p := paths.next(head.Type)
		var f Feature
		switch head.Type {
		case typeFeatureCollection:
			f = b.collection(raw, p)
		case typeFeature:
			f = b.placemark(raw, p)
		default:
			b.diag(p, head.Type, unsupported(head.Type))
		}
		if f != nil {
			parent.Append(f)
		}
	}
}

func (b *builder) collection(raw json.RawMessage, path string) Feature {
	var fc rawCollection
	if err := json.Unmarshal(raw, &fc); err != nil {
		b.diag(path, typeFeatureCollection, fmt.Errorf("%w: %w", ErrMalformedInput, err))
		return nil
	}

	f := NewFolder()
	f.ID = jsonID(fc.ID)
	applyProperties(&f.Common, fc.Properties)
	if !b.claim(f, path, typeFeatureCollection) {
		return nil
	}
	b.entries(f, fc.Features, path)
	return f
}

func (b *builder) placemark(raw json.RawMessage, path string) Feature {
	gf, err := geojson.UnmarshalFeature(raw)
	if err != nil {
		b.diag(path, typeFeature, fmt.Errorf("%w: %w", ErrMalformedInput, err))
		return nil
	}

	g, err := geo.FromOrb(gf.Geometry)
	if err != nil {
		b.diag(path, typeFeature, fmt.Errorf("%w: %w", ErrUnsupportedVariant, err))
		return nil
	}

	p := NewPlacemark(g)
	p.ID = jsonID(gf.ID)
	applyProperties(&p.Common, gf.Properties)
	if !b.claim(p, path, typeFeature) {
		return nil
	}
	return p
}

func jsonID(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// applyProperties fills name and description and stores every other property as
// extended data in key order. Non-string values are kept as JSON text; nulls are skipped.
func applyProperties(c *Common, props map[string]any) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v, ok := propertyText(props[k])
		if !ok {
			continue
		}
		switch k {
		case propName:
			c.Name = v
		case propDescription:
			c.Description = v
		case propExtPrefix + propName, propExtPrefix + propDescription:
			c.ExtendedData.Set(k[len(propExtPrefix):], v)
		default:
			c.ExtendedData.Set(k, v)
		}
	}
}

func propertyText(v any) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v), true
		}
		return string(b), true
	}
}
