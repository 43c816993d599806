package resource

import (
	"archive/zip"
	"context"
	"errors"
	"io"
	"io/fs"
	"path"
	"strings"
)

// Archive exposes entry lookup by name.
type Archive interface {
	Open(name string) (io.ReadCloser, error)
}

// ZipArchive adapts a zip reader (KMZ container).
type ZipArchive struct {
	*zip.Reader
}

// Open implements Archive. Names are matched after cleaning "./" prefixes and backslashes.
func (z ZipArchive) Open(name string) (io.ReadCloser, error) {
	name = path.Clean(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimPrefix(name, "/")

	for _, f := range z.File {
		if path.Clean(f.Name) == name {
			return f.Open()
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// ArchiveStrategy looks references up as archive entries.
type ArchiveStrategy struct{}

// Name implements Strategy.
func (ArchiveStrategy) Name() string { return "archive" }

// Accepts implements Strategy.
func (ArchiveStrategy) Accepts(_ string, rc Context) bool {
	return rc.Archive != nil
}

// Fetch implements Strategy.
func (ArchiveStrategy) Fetch(_ context.Context, ref string, rc Context) ([]byte, error) {
	if rc.Archive == nil {
		return nil, errors.New("no archive")
	}

	rd, err := rc.Archive.Open(ref)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rd.Close() }()

	return io.ReadAll(rd)
}
