package server

import (
	"bytes"
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/kmldoc/internal/config"
	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/kml"
	"github.com/woozymasta/kmldoc/internal/processor"
	"github.com/woozymasta/kmldoc/internal/resource"
)

// Entry is a loaded document with its pre-rendered representations.
type Entry struct {
	Config   config.Document
	Doc      *kml.Document
	KML      []byte
	GeoJSON  []byte
	Overlays []processor.OverlayInfo
	Images   [][]byte
}

// Summary is the list view of an entry.
type Summary struct {
	Name           string           `json:"name"`
	Aliases        []string         `json:"aliases,omitempty"`
	BoundingBox    *geo.BoundingBox `json:"bbox,omitempty"`
	Folders        int              `json:"folders"`
	Placemarks     int              `json:"placemarks"`
	GroundOverlays int              `json:"ground_overlays"`
	Dropped        int              `json:"dropped,omitempty"`
}

// ServerContext holds dependencies for request handlers. It is read-only once built.
type ServerContext struct {
	Config          *config.Config
	Entries         map[string]*Entry
	DocNameResolver map[string]string
	Summaries       []Summary
}

// NewServerContext loads every configured document and pre-renders its outputs.
// Documents that fail to load are skipped.
func NewServerContext(ctx context.Context, cfg *config.Config) *ServerContext {
	log.Info().Int("config_documents_count", len(cfg.Documents)).Msg("Initializing server context")

	resolver := resource.Default(cfg.Resolver.HTTPOptions())
	s := &ServerContext{
		Config:          cfg,
		Entries:         make(map[string]*Entry),
		DocNameResolver: make(map[string]string),
	}

	for _, d := range cfg.Documents {
		doc, err := processor.LoadDocument(d.Path, resolver)
		if err != nil {
			log.Warn().
				Err(err).
				Str("document", d.Name).
				Msg("Skipping document: failed to load")
			continue
		}

		entry, err := newEntry(ctx, d, doc, cfg)
		if err != nil {
			log.Warn().
				Err(err).
				Str("document", d.Name).
				Msg("Skipping document: failed to render")
			continue
		}

		s.Add(entry)
	}

	log.Info().
		Int("valid_documents_count", len(s.Summaries)).
		Msg("Server context initialized successfully")

	return s
}

func newEntry(ctx context.Context, d config.Document, doc *kml.Document, cfg *config.Config) (*Entry, error) {
	if failed := doc.LoadImages(ctx); failed > 0 {
		log.Debug().
			Str("document", d.Name).
			Int("failed", failed).
			Msg("Some ground overlay images use the tint fallback")
	}

	e := &Entry{Config: d, Doc: doc}

	var buf bytes.Buffer
	if err := processor.Encode(&buf, doc, processor.FormatKML, cfg.Output.Minify); err != nil {
		return nil, err
	}
	e.KML = bytes.Clone(buf.Bytes())

	buf.Reset()
	if err := processor.Encode(&buf, doc, processor.FormatGeoJSON, cfg.Output.Minify); err != nil {
		return nil, err
	}
	e.GeoJSON = bytes.Clone(buf.Bytes())

	e.Overlays = processor.OverlayImages(ctx, doc, cfg.DefaultStyle)
	opts := processor.ImageOptions{MaxSize: cfg.Output.ImageMaxSize, Quality: cfg.Output.WebPQuality}
	for _, info := range e.Overlays {
		data, err := processor.EncodeImage(info.Picture, opts)
		if err != nil {
			return nil, err
		}
		e.Images = append(e.Images, data)
	}

	return e, nil
}

// Add registers an entry under its name and aliases.
func (s *ServerContext) Add(e *Entry) {
	name := e.Config.Name
	s.Entries[name] = e
	s.DocNameResolver[name] = name
	for _, alias := range e.Config.Aliases {
		s.DocNameResolver[alias] = name
	}

	sum := Summary{
		Name:           name,
		Aliases:        e.Config.Aliases,
		Folders:        e.Doc.Count(kml.KindFolder),
		Placemarks:     e.Doc.Count(kml.KindPlacemark),
		GroundOverlays: e.Doc.Count(kml.KindGroundOverlay),
		Dropped:        len(e.Doc.Diagnostics),
	}
	if box, ok := e.Doc.BoundingBox(); ok {
		sum.BoundingBox = &box
	}
	// builds the spatial index before handlers share the document
	e.Doc.Search(geo.BoundingBox{})
	s.Summaries = append(s.Summaries, sum)

	log.Debug().
		Str("document", name).
		Int("placemarks", sum.Placemarks).
		Int("ground_overlays", sum.GroundOverlays).
		Msg("Document validated and added to context")
}

// Lookup resolves a name or alias.
func (s *ServerContext) Lookup(name string) (*Entry, bool) {
	target, ok := s.DocNameResolver[name]
	if !ok {
		return nil, false
	}
	e, ok := s.Entries[target]
	return e, ok
}

func etagOf(data []byte) string {
	h := fnv.New64a()
	_, _ = h.Write(data)
	return `"` + strconv.FormatUint(h.Sum64(), 16) + `"`
}
