package resource

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.SetNRGBA(0, 0, color.NRGBA{R: 0xff, A: 0xff})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func zipWith(t *testing.T, files map[string][]byte) ZipArchive {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return ZipArchive{Reader: zr}
}

func TestResolveHTTP(t *testing.T) {
	body := pngBytes(t, 3, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.UserAgent() != "kmldoc-test" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		switch r.URL.Path {
		case "/ok.png":
			_, _ = w.Write(body)
		case "/garbage.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	r := Default(HTTPOptions{Timeout: 5 * time.Second, UserAgent: "kmldoc-test"})

	img, err := r.Resolve(context.Background(), srv.URL+"/ok.png", Context{})
	require.NoError(t, err)
	assert.Equal(t, "png", img.Format)
	assert.Equal(t, 3, img.Width())
	assert.Equal(t, 2, img.Height())

	_, err = r.Resolve(context.Background(), srv.URL+"/missing.png", Context{})
	assert.ErrorIs(t, err, ErrResourceUnavailable)

	_, err = r.Resolve(context.Background(), srv.URL+"/garbage.png", Context{})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestResolveHTTPSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	r := NewResolver(NewHTTPStrategy(HTTPOptions{MaxBytes: 16}))
	_, err := r.Resolve(context.Background(), srv.URL+"/big.png", Context{})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestResolveArchive(t *testing.T) {
	arc := zipWith(t, map[string][]byte{"files/overlay.png": pngBytes(t, 2, 2)})
	r := Default(HTTPOptions{})

	img, err := r.Resolve(context.Background(), "files/overlay.png", Context{Archive: arc})
	require.NoError(t, err)
	assert.Equal(t, 2, img.Width())

	img, err = r.Resolve(context.Background(), "./files/overlay.png", Context{Archive: arc})
	require.NoError(t, err)
	assert.Equal(t, 2, img.Height())

	_, err = r.Resolve(context.Background(), "files/missing.png", Context{Archive: arc})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestResolveFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "img"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "img", "a.png"), pngBytes(t, 4, 4), 0644))

	r := Default(HTTPOptions{})
	rc := Context{Location: filepath.Join(dir, "doc.kml")}

	img, err := r.Resolve(context.Background(), "img/a.png", rc)
	require.NoError(t, err)
	assert.Equal(t, 4, img.Width())

	_, err = r.Resolve(context.Background(), "img/b.png", rc)
	assert.ErrorIs(t, err, ErrResourceUnavailable)

	// without a container location no strategy applies
	_, err = r.Resolve(context.Background(), "img/a.png", Context{})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestArchiveTakesPrecedenceOverFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), pngBytes(t, 4, 4), 0644))

	arc := zipWith(t, map[string][]byte{"other.png": pngBytes(t, 1, 1)})
	r := Default(HTTPOptions{})

	// the archive strategy accepts, misses, and the file strategy is never tried
	_, err := r.Resolve(context.Background(), "a.png", Context{
		Location: filepath.Join(dir, "doc.kml"),
		Archive:  arc,
	})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}

func TestStrategyOrder(t *testing.T) {
	r := Default(HTTPOptions{})
	names := make([]string, 0, 3)
	for _, s := range r.Strategies() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"http", "archive", "file"}, names)

	_, err := r.Resolve(context.Background(), "", Context{})
	assert.ErrorIs(t, err, ErrResourceUnavailable)
}
