package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/draw"
	"os"
	"path/filepath"
	"sync"

	"github.com/woozymasta/kmldoc/internal/geo"
	"github.com/woozymasta/kmldoc/internal/kml"
	"github.com/woozymasta/kmldoc/internal/overlay"
	"github.com/woozymasta/kmldoc/internal/style"

	"github.com/chai2010/webp"
	"github.com/rs/zerolog/log"
	xdraw "golang.org/x/image/draw"
)

// ImageOptions controls overlay image encoding.
type ImageOptions struct {
	// MaxSize caps the longest edge in pixels; zero keeps the original size.
	MaxSize int
	Quality float32
}

// ExportOptions controls ExportOverlays.
type ExportOptions struct {
	ImageOptions
	DefaultStyle *style.Style
	Concurrency  int
	Force        bool
	// Minify compacts the written KML and GeoJSON.
	Minify bool
}

// OverlayInfo describes an exported ground overlay image.
type OverlayInfo struct {
	Index        int               `json:"index"`
	ID           string            `json:"id,omitempty"`
	Title        string            `json:"title,omitempty"`
	File         string            `json:"file"`
	Corners      [4]geo.Coordinate `json:"corners"`
	Footprint    [4]geo.Coordinate `json:"footprint"`
	BoundingBox  geo.BoundingBox   `json:"bbox"`
	Bearing      float64           `json:"bearing"`
	Transparency float64           `json:"transparency"`
	Enabled      bool              `json:"enabled"`
	Fallback     bool              `json:"fallback,omitempty"`

	// Picture is the source image, not serialized.
	Picture image.Image `json:"-"`
}

// OverlayImages builds the document overlays and collects the ground overlay images
// in document order.
func OverlayImages(ctx context.Context, doc *kml.Document, defaultStyle *style.Style) []OverlayInfo {
	root := doc.BuildOverlays(ctx, defaultStyle, nil)

	var infos []OverlayInfo
	overlay.Walk(root, func(o overlay.Overlay) {
		img, ok := o.(*overlay.Image)
		if !ok {
			return
		}
		n := len(infos)
		infos = append(infos, OverlayInfo{
			Index:        n,
			ID:           img.ID,
			Title:        img.Title,
			File:         OverlayFileName(n),
			Corners:      img.Corners,
			Footprint:    img.Footprint(),
			BoundingBox:  img.BoundingBox(),
			Bearing:      img.Bearing,
			Transparency: img.Transparency,
			Enabled:      img.Enabled,
			Fallback:     img.Fallback,
			Picture:      img.Picture,
		})
	})
	return infos
}

// OverlayFileName names the n-th exported overlay image.
func OverlayFileName(n int) string {
	return fmt.Sprintf("overlay-%d.webp", n)
}

// EncodeImage scales img to fit MaxSize and encodes it as lossy WebP.
func EncodeImage(img image.Image, opts ImageOptions) ([]byte, error) {
	img = scale(img, opts.MaxSize)

	quality := opts.Quality
	if quality <= 0 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: false, Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func scale(img image.Image, maxSize int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// ExportOverlays writes every ground overlay image of doc to dir as WebP and returns
// their descriptions. Existing files are kept unless Force is set.
func ExportOverlays(ctx context.Context, doc *kml.Document, dir string, opts ExportOptions) ([]OverlayInfo, error) {
	infos := OverlayImages(ctx, doc, opts.DefaultStyle)
	if len(infos) == 0 {
		return infos, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	// Simple semaphore to limit encoder concurrency
	sem := make(chan struct{}, concurrency)

	for i := range infos {
		wg.Add(1)
		sem <- struct{}{}

		go func(info OverlayInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			outPath := filepath.Join(dir, info.File)
			if !opts.Force {
				if st, err := os.Stat(outPath); err == nil && st.Size() > 0 {
					log.Trace().Str("path", outPath).Msg("Overlay image exists, skipping")
					return
				}
			}

			data, err := EncodeImage(info.Picture, opts.ImageOptions)
			if err == nil {
				err = os.WriteFile(outPath, data, 0644)
			}
			if err != nil {
				log.Error().Err(err).Str("path", outPath).Msg("Failed to export overlay image")
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(infos[i])
	}
	wg.Wait()

	return infos, firstErr
}

// ExportDocument writes doc.kml, doc.geojson, the overlay images and overlays.json
// into dir.
func ExportDocument(ctx context.Context, doc *kml.Document, dir string, opts ExportOptions) error {
	if err := SaveDocument(filepath.Join(dir, "doc.kml"), doc, FormatKML, opts.Minify); err != nil {
		return err
	}
	if err := SaveDocument(filepath.Join(dir, "doc.geojson"), doc, FormatGeoJSON, opts.Minify); err != nil {
		return err
	}

	infos, err := ExportOverlays(ctx, doc, dir, opts)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return fmt.Errorf("encode overlays: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "overlays.json"), data, 0644); err != nil {
		return err
	}

	log.Info().
		Str("dir", dir).
		Int("overlays", len(infos)).
		Int("dropped", len(doc.Diagnostics)).
		Msg("Document exported")

	return nil
}
