package processor

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/kmldoc/internal/kml"

	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	xmlmin "github.com/tdewolff/minify/v2/xml"
	"gopkg.in/yaml.v3"
)

// Format is an output encoding.
type Format string

// Supported output formats.
const (
	FormatKML     Format = "kml"
	FormatGeoJSON Format = "geojson"
	FormatYAML    Format = "yaml"
)

const (
	mediaKML     = "application/vnd.google-earth.kml+xml"
	mediaGeoJSON = "application/geo+json"
)

// ContentType returns the media type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatKML:
		return mediaKML
	case FormatGeoJSON:
		return mediaGeoJSON
	default:
		return "application/yaml"
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(p string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".kml":
		return FormatKML, true
	case ".geojson", ".json":
		return FormatGeoJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mediaKML, xmlmin.Minify)
	m.AddFunc(mediaGeoJSON, jsonmin.Minify)
	return m
}

// Encode writes doc in format. Minification applies to KML and GeoJSON.
func Encode(w io.Writer, doc *kml.Document, format Format, compact bool) error {
	var buf bytes.Buffer

	switch format {
	case FormatKML:
		if err := doc.WriteKML(&buf); err != nil {
			return err
		}
	case FormatGeoJSON, FormatYAML:
		if err := doc.WriteGeoJSON(&buf); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if format == FormatYAML {
		return writeYAML(w, buf.Bytes())
	}

	if compact {
		return minifier.Minify(format.ContentType(), w, &buf)
	}

	_, err := buf.WriteTo(w)
	return err
}

// writeYAML re-encodes JSON as block-style YAML keeping key order.
func writeYAML(w io.Writer, data []byte) error {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return fmt.Errorf("convert to yaml: %w", err)
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// SaveDocument writes doc to filePath, creating parent directories.
func SaveDocument(filePath string, doc *kml.Document, format Format, compact bool) error {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return err
	}

	f, err := os.Create(filePath)
	if err != nil {
		return err
	}

	return encodeAndClose(f, filePath, doc, format, compact)
}

// encodeAndClose reports a close failure when encoding itself succeeded.
func encodeAndClose(wc io.WriteCloser, filePath string, doc *kml.Document, format Format, compact bool) (err error) {
	// We care about write errors on close
	defer func() {
		if closeErr := wc.Close(); closeErr != nil {
			log.Error().Err(closeErr).Str("path", filePath).Msg("Failed to close file")
			if err == nil {
				err = fmt.Errorf("close %s: %w", filePath, closeErr)
			}
		}
	}()

	return Encode(wc, doc, format, compact)
}
