// Package server handles HTTP requests and middleware.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/processor"
)

// SearchHit is one feature found by a bounding box query.
type SearchHit struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name,omitempty"`
	Kind        string          `json:"kind"`
	BoundingBox geo.BoundingBox `json:"bbox"`
}

// HandleDocumentsList serves the summaries of loaded documents.
func (s *ServerContext) HandleDocumentsList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, s.Summaries)
}

// HandleDocument serves the representations of a single document.
func (s *ServerContext) HandleDocument(w http.ResponseWriter, r *http.Request) {
	// Path: /documents/{name}/...
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 3 {
		http.NotFound(w, r)
		return
	}

	e, ok := s.Lookup(parts[1])
	if !ok {
		http.NotFound(w, r)
		return
	}

	switch {
	case len(parts) == 3 && parts[2] == "doc.kml":
		serveBytes(w, r, e.KML, processor.FormatKML.ContentType())

	case len(parts) == 3 && parts[2] == "doc.geojson":
		serveBytes(w, r, e.GeoJSON, processor.FormatGeoJSON.ContentType())

	case len(parts) == 3 && parts[2] == "overlays.json":
		writeJSON(w, r, e.Overlays)

	case len(parts) == 3 && parts[2] == "search":
		s.handleSearch(w, r, e)

	case len(parts) == 4 && parts[2] == "overlays":
		n, err := strconv.Atoi(strings.TrimSuffix(parts[3], ".webp"))
		if err != nil || !strings.HasSuffix(parts[3], ".webp") || n < 0 || n >= len(e.Images) {
			http.NotFound(w, r)
			return
		}
		serveBytes(w, r, e.Images[n], "image/webp")

	default:
		http.NotFound(w, r)
	}
}

func (s *ServerContext) handleSearch(w http.ResponseWriter, r *http.Request, e *Entry) {
	box, err := geo.ParseBoundingBox(r.URL.Query().Get("bbox"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	hits := make([]SearchHit, 0)
	for _, f := range e.Doc.Search(box) {
		fb, _ := f.BoundingBox()
		hits = append(hits, SearchHit{
			ID:          f.Base().ID,
			Name:        f.Base().Name,
			Kind:        f.Kind().String(),
			BoundingBox: fb,
		})
	}
	writeJSON(w, r, hits)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	serveBytes(w, r, data, "application/json")
}

// serveBytes writes data with ETag revalidation.
func serveBytes(w http.ResponseWriter, r *http.Request, data []byte, contentType string) {
	etag := etagOf(data)

	// check If-None-Match (client sent ETag)
	if match := r.Header.Get("If-None-Match"); match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, no-cache")
	w.Header().Set("Content-Type", contentType)
	_, _ = w.Write(data)
}
