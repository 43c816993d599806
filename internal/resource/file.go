package resource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
)

// FileStrategy reads references relative to the containing document's directory.
type FileStrategy struct{}

// Name implements Strategy.
func (FileStrategy) Name() string { return "file" }

// Accepts implements Strategy. It needs a container location to resolve against.
func (FileStrategy) Accepts(_ string, rc Context) bool {
	return rc.Location != ""
}

// Fetch implements Strategy.
func (FileStrategy) Fetch(_ context.Context, ref string, rc Context) ([]byte, error) {
	if rc.Location == "" {
		return nil, errors.New("no container location")
	}
	p := filepath.Join(filepath.Dir(rc.Location), filepath.FromSlash(ref))
	return os.ReadFile(p)
}
