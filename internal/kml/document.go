package kml

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/resource"
	"github.com/woozymasta/kmldoc/internal/style"
)

// Document owns a feature tree, its style registry and an identifier index.
// It is not safe for concurrent mutation.
type Document struct {
	Root   *Folder
	Styles *style.Registry
	// Source and Resolver are used to load ground overlay images.
	Source   resource.Context
	Resolver *resource.Resolver
	// Diagnostics lists the nodes dropped while parsing.
	Diagnostics []error

	index     map[string]Feature
	spatialMu sync.Mutex
	spatial   *Index
}

// NewDocument returns a document with an empty root folder and registry.
func NewDocument() *Document {
	root := NewFolder()
	root.Root = true
	return &Document{
		Root:   root,
		Styles: style.NewRegistry(),
		index:  make(map[string]Feature),
	}
}

// FeatureByID returns the feature carrying id.
func (d *Document) FeatureByID(id string) (Feature, bool) {
	f, ok := d.index[id]
	return f, ok
}

// Insert appends f to parent, or to the root when parent is nil. It fails with a
// *DuplicateIDError when an identifier in f's subtree is already used in the document
// or repeats within the subtree. The tree is unchanged on failure.
func (d *Document) Insert(parent *Folder, f Feature) error {
	if f == nil {
		return errors.New("insert nil feature")
	}
	if parent == nil {
		parent = d.Root
	}
	if !d.contains(parent) {
		return ErrUnknownParent
	}
	if d.contains(f) {
		return fmt.Errorf("feature %q is already in the document", f.Base().ID)
	}

	seen := make(map[string]struct{})
	var dup string
	Walk(f, func(n Feature) {
		id := n.Base().ID
		if id == "" || dup != "" {
			return
		}
		if _, ok := seen[id]; ok {
			dup = id
			return
		}
		if _, ok := d.index[id]; ok {
			dup = id
			return
		}
		seen[id] = struct{}{}
	})
	if dup != "" {
		return &DuplicateIDError{ID: dup}
	}

	parent.Append(f)
	Walk(f, func(n Feature) {
		if id := n.Base().ID; id != "" {
			d.index[id] = n
		}
	})
	d.spatial = nil

	log.Trace().Str("kind", f.Kind().String()).Str("id", f.Base().ID).Msg("Feature inserted")
	return nil
}

// Remove detaches f from parent and forgets the identifiers of its subtree.
func (d *Document) Remove(parent *Folder, f Feature) bool {
	if parent == nil {
		parent = d.Root
	}
	i := parent.IndexOf(f)
	if i < 0 {
		return false
	}

	parent.Children = slices.Delete(parent.Children, i, i+1)
	Walk(f, func(n Feature) {
		if id := n.Base().ID; id != "" && d.index[id] == n {
			delete(d.index, id)
		}
	})
	d.spatial = nil
	return true
}

// Reindex rebuilds the identifier and spatial indexes after direct tree edits. The
// first occurrence of a repeated identifier stays indexed and the repeat is reported.
func (d *Document) Reindex() error {
	d.index = make(map[string]Feature)
	d.spatial = nil

	var err error
	Walk(d.Root, func(n Feature) {
		id := n.Base().ID
		if id == "" {
			return
		}
		if _, ok := d.index[id]; ok {
			if err == nil {
				err = &DuplicateIDError{ID: id}
			}
			return
		}
		d.index[id] = n
	})
	return err
}

func (d *Document) contains(target Feature) bool {
	found := false
	Walk(d.Root, func(n Feature) {
		if n == target {
			found = true
		}
	})
	return found
}

// BoundingBox returns the extent of the whole tree.
func (d *Document) BoundingBox() (geo.BoundingBox, bool) {
	return d.Root.BoundingBox()
}

// Count returns the number of features of kind, the root included.
func (d *Document) Count(kind Kind) int {
	n := 0
	Walk(d.Root, func(f Feature) {
		if f.Kind() == kind {
			n++
		}
	})
	return n
}

// Search returns the placemarks and ground overlays intersecting box. The index is
// built on first use after a tree change; concurrent searches are safe as long as
// no writer runs.
func (d *Document) Search(box geo.BoundingBox) []Feature {
	d.spatialMu.Lock()
	if d.spatial == nil {
		d.spatial = NewIndex(d.Root)
	}
	idx := d.spatial
	d.spatialMu.Unlock()
	return idx.Search(box)
}

// BuildOverlays converts the tree to overlays. defaultStyle applies to placemarks
// with no resolvable style and may be nil. Ground overlay images not loaded yet are
// resolved through the document resolver.
func (d *Document) BuildOverlays(ctx context.Context, defaultStyle *style.Style, styler Styler) overlay.Overlay {
	sc := StyleContext{Styles: d.Styles, Default: defaultStyle}
	if d.Resolver != nil {
		sc.Images = imageLoader{ctx: ctx, resolver: d.Resolver, source: d.Source}
	}
	return d.Root.BuildOverlay(sc, styler)
}

type imageLoader struct {
	ctx      context.Context
	resolver *resource.Resolver
	source   resource.Context
}

func (l imageLoader) LoadImage(href string) (*resource.Image, error) {
	return l.resolver.Resolve(l.ctx, href, l.source)
}

// LoadImages resolves every ground overlay image and returns how many are unavailable.
func (d *Document) LoadImages(ctx context.Context) int {
	failed := 0
	Walk(d.Root, func(f Feature) {
		g, ok := f.(*GroundOverlay)
		if !ok || g.Href == "" {
			return
		}
		if err := g.LoadImage(ctx, d.Resolver, d.Source); err != nil {
			failed++
			log.Warn().Str("id", g.ID).Str("href", g.Href).Err(err).Msg("Ground overlay image unavailable")
		}
	})
	return failed
}

// WriteKML serializes the document as KML.
func (d *Document) WriteKML(w io.Writer) error {
	e := NewEncoder(w)
	e.raw(xmlHeader, kmlOpen)
	d.Root.WriteKML(e, d.Styles)
	e.raw(kmlClose)
	if err := e.Flush(); err != nil {
		return fmt.Errorf("write kml: %w", err)
	}
	return nil
}

// WriteGeoJSON serializes the document as a GeoJSON FeatureCollection. Ground
// overlays are omitted.
func (d *Document) WriteGeoJSON(w io.Writer) error {
	raw, err := d.Root.GeoJSON()
	if err != nil {
		return fmt.Errorf("encode geojson: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write geojson: %w", err)
	}
	return nil
}

// Clone returns an independent copy of the tree and registry. The resolver and
// source context are shared.
func (d *Document) Clone() *Document {
	out := &Document{
		Root:        d.Root.Clone().(*Folder),
		Styles:      d.Styles.Clone(),
		Source:      d.Source,
		Resolver:    d.Resolver,
		Diagnostics: slices.Clone(d.Diagnostics),
	}
	_ = out.Reindex()
	return out
}
