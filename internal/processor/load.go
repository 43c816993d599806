// Package processor loads, converts and exports feature documents.
package processor

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/woozymasta/kmldoc/internal/kml"
	"github.com/woozymasta/kmldoc/internal/resource"

	"github.com/rs/zerolog/log"
)

// LoadDocument parses a .kml, .kmz, .geojson or .json file. Relative image references
// resolve against the file location, or inside the archive for KMZ. Images are not
// fetched here; see kml.Document.LoadImages.
func LoadDocument(filePath string, resolver *resource.Resolver) (*kml.Document, error) {
	opts := kml.ParseOptions{
		Source:   resource.Context{Location: filePath},
		Resolver: resolver,
	}

	var (
		doc *kml.Document
		err error
	)

	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".kml":
		err = withFile(filePath, func(r io.Reader) error {
			doc, err = kml.ParseKML(r, opts)
			return err
		})

	case ".kmz":
		doc, err = loadKMZ(filePath, opts)

	case ".geojson", ".json":
		err = withFile(filePath, func(r io.Reader) error {
			doc, err = kml.ParseGeoJSON(r, opts)
			return err
		})

	default:
		return nil, fmt.Errorf("unsupported document extension %q", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filePath, err)
	}

	log.Debug().
		Str("path", filePath).
		Int("placemarks", doc.Count(kml.KindPlacemark)).
		Int("ground_overlays", doc.Count(kml.KindGroundOverlay)).
		Int("dropped", len(doc.Diagnostics)).
		Msg("Document loaded")

	return doc, nil
}

func withFile(filePath string, fn func(io.Reader) error) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	return fn(f)
}

// loadKMZ reads the whole archive into memory so that overlay images can be
// resolved after the file is closed.
func loadKMZ(filePath string, opts kml.ParseOptions) (*kml.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open kmz: %w", err)
	}

	entry := kmzRoot(zr)
	if entry == nil {
		return nil, fmt.Errorf("kmz has no .kml entry")
	}

	rd, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	opts.Source.Archive = resource.ZipArchive{Reader: zr}
	return kml.ParseKML(rd, opts)
}

// kmzRoot picks doc.kml, or the first .kml entry.
func kmzRoot(zr *zip.Reader) *zip.File {
	var first *zip.File
	for _, f := range zr.File {
		if !strings.EqualFold(path.Ext(f.Name), ".kml") {
			continue
		}
		if strings.EqualFold(path.Clean(f.Name), "doc.kml") {
			return f
		}
		if first == nil {
			first = f
		}
	}
	return first
}
