package kml

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/woozymasta/kmldoc/internal/resource"
)

// ParseOptions configures ParseKML and ParseGeoJSON.
type ParseOptions struct {
	// Source locates the input for relative image references.
	Source resource.Context
	// Resolver loads ground overlay images. Optional.
	Resolver *resource.Resolver
}

// builder accumulates a document while parsing either format.
type builder struct {
	doc *Document
}

func newBuilder(opts ParseOptions) *builder {
	doc := NewDocument()
	doc.Source = opts.Source
	doc.Resolver = opts.Resolver
	return &builder{doc: doc}
}

// diag records a dropped node.
func (b *builder) diag(path, element string, err error) {
	b.doc.Diagnostics = append(b.doc.Diagnostics, &ParseError{Path: path, Element: element, Err: err})
	log.Warn().
		Str("path", path).
		Str("element", element).
		Err(err).
		Msg("Node dropped")
}

// claim indexes the identifier of f. A repeated identifier drops the node.
func (b *builder) claim(f Feature, path, element string) bool {
	id := f.Base().ID
	if id == "" {
		return true
	}
	if _, ok := b.doc.index[id]; ok {
		b.diag(path, element, &DuplicateIDError{ID: id})
		return false
	}
	b.doc.index[id] = f
	return true
}

// pathCounter numbers sibling nodes per element name, starting at 1.
type pathCounter struct {
	parent string
	counts map[string]int
}

func newPathCounter(parent string) *pathCounter {
	return &pathCounter{parent: parent, counts: make(map[string]int)}
}

func (p *pathCounter) next(element string) string {
	p.counts[element]++
	return fmt.Sprintf("%s/%s[%d]", p.parent, element, p.counts[element])
}
