// Package resource resolves image references to decoded pictures.
package resource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrResourceUnavailable wraps every resolution failure: transport errors, missing
// entries or files, and undecodable bytes.
var ErrResourceUnavailable = errors.New("resource unavailable")

// Context describes where a reference was found.
type Context struct {
	// Location is the path of the containing document; relative references
	// resolve against its parent directory.
	Location string
	// Archive is set when the document was read from an archive (KMZ).
	Archive Archive
}

// Image is a decoded picture.
type Image struct {
	Ref     string
	Format  string
	Picture image.Image
}

// Width returns the picture width in pixels.
func (i *Image) Width() int { return i.Picture.Bounds().Dx() }

// Height returns the picture height in pixels.
func (i *Image) Height() int { return i.Picture.Bounds().Dy() }

// Strategy is one named way of fetching reference bytes.
type Strategy interface {
	Name() string
	// Accepts reports whether this strategy is responsible for ref in rc.
	Accepts(ref string, rc Context) bool
	Fetch(ctx context.Context, ref string, rc Context) ([]byte, error)
}

// Resolver tries its strategies in declared order. The first strategy that accepts a
// reference is the only one used for it.
type Resolver struct {
	strategies []Strategy
}

// NewResolver returns a resolver with the given strategies in order.
func NewResolver(strategies ...Strategy) *Resolver {
	return &Resolver{strategies: strategies}
}

// Default returns the HTTP, archive, file resolver.
func Default(opts HTTPOptions) *Resolver {
	return NewResolver(
		NewHTTPStrategy(opts),
		ArchiveStrategy{},
		FileStrategy{},
	)
}

// Strategies returns the declared strategies.
func (r *Resolver) Strategies() []Strategy {
	return r.strategies
}

// Resolve fetches and decodes ref. All failures are reported as ErrResourceUnavailable.
func (r *Resolver) Resolve(ctx context.Context, ref string, rc Context) (*Image, error) {
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", ErrResourceUnavailable)
	}

	for _, s := range r.strategies {
		if !s.Accepts(ref, rc) {
			continue
		}

		data, err := s.Fetch(ctx, ref, rc)
		if err != nil {
			log.Debug().
				Str("strategy", s.Name()).
				Str("ref", ref).
				Err(err).
				Msg("Resource fetch failed")
			return nil, fmt.Errorf("%w: %s %q: %w", ErrResourceUnavailable, s.Name(), ref, err)
		}

		img, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: decode %q: %w", ErrResourceUnavailable, ref, err)
		}

		log.Trace().
			Str("strategy", s.Name()).
			Str("ref", ref).
			Str("format", format).
			Msg("Resource resolved")

		return &Image{Ref: ref, Format: format, Picture: img}, nil
	}

	return nil, fmt.Errorf("%w: no strategy for %q", ErrResourceUnavailable, ref)
}
