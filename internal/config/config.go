// Package config handles configuration loading and shared data structures.
package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/woozymasta/kmldoc/internal/resource"
	"github.com/woozymasta/kmldoc/internal/style"

	"gopkg.in/yaml.v3"
)

// Config represents the root configuration file structure.
type Config struct {
	Resolver     Resolver     `yaml:"resolver"`
	DefaultStyle *style.Style `yaml:"default_style,omitempty"`
	Output       Output       `yaml:"output"`
	Documents    []Document   `yaml:"documents"`
}

// Resolver configures image resolution for ground overlays.
type Resolver struct {
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
	MaxBytes  int64         `yaml:"max_bytes,omitempty"`
}

// Output configures exported files.
type Output struct {
	Dir          string  `yaml:"dir,omitempty"`
	Minify       bool    `yaml:"minify,omitempty"`
	ImageMaxSize int     `yaml:"image_max_size,omitempty"`
	WebPQuality  float32 `yaml:"webp_quality,omitempty"`
}

// Document is a single source document.
type Document struct {
	Index *int `yaml:"index,omitempty" json:"index,omitempty"`

	Name    string   `yaml:"name" json:"name"`
	Path    string   `yaml:"path" json:"-"`
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
}

// Defaults for unset values.
const (
	DefaultOutputDir    = "out"
	DefaultImageMaxSize = 2048
	DefaultWebPQuality  = 85
)

// Load reads and parses the YAML configuration file from the specified path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes a configuration, fills defaults and validates document entries.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Output.Dir == "" {
		cfg.Output.Dir = DefaultOutputDir
	}
	if cfg.Output.ImageMaxSize <= 0 {
		cfg.Output.ImageMaxSize = DefaultImageMaxSize
	}
	if cfg.Output.WebPQuality <= 0 || cfg.Output.WebPQuality > 100 {
		cfg.Output.WebPQuality = DefaultWebPQuality
	}

	names := make(map[string]string)
	for _, d := range cfg.Documents {
		if d.Name == "" || d.Path == "" {
			return nil, fmt.Errorf("document %q: name and path are required", d.Name)
		}
		for _, key := range append([]string{d.Name}, d.Aliases...) {
			if owner, ok := names[key]; ok {
				return nil, fmt.Errorf("document %q: name %q already used by %q", d.Name, key, owner)
			}
			names[key] = d.Name
		}
	}

	sort.SliceStable(cfg.Documents, func(i, j int) bool {
		idxI, idxJ := 999999, 999999
		if cfg.Documents[i].Index != nil {
			idxI = *cfg.Documents[i].Index
		}
		if cfg.Documents[j].Index != nil {
			idxJ = *cfg.Documents[j].Index
		}
		if idxI != idxJ {
			return idxI < idxJ
		}

		return cfg.Documents[i].Name < cfg.Documents[j].Name
	})

	return &cfg, nil
}

// HTTPOptions converts the resolver section.
func (r Resolver) HTTPOptions() resource.HTTPOptions {
	return resource.HTTPOptions{
		Timeout:   r.Timeout,
		UserAgent: r.UserAgent,
		MaxBytes:  r.MaxBytes,
	}
}

// Find returns the document named name or aliased as name.
func (c *Config) Find(name string) (Document, bool) {
	for _, d := range c.Documents {
		if d.Name == name {
			return d, true
		}
		for _, a := range d.Aliases {
			if a == name {
				return d, true
			}
		}
	}
	return Document{}, false
}
