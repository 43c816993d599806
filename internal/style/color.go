// Package style holds reusable visual rendering parameters and the registry that names them.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is a 32-bit ARGB value.
type Color uint32

// Common colors.
const (
	Black Color = 0xff000000
	White Color = 0xffffffff
)

// ARGB builds a Color from its channels.
func ARGB(a, r, g, b uint8) Color {
	return Color(uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b))
}

// ParseColor parses the KML text form "aabbggrr". A leading '#' is tolerated.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 8 {
		return 0, fmt.Errorf("invalid color %q: want aabbggrr", s)
	}

	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}

	a := uint8(v >> 24)
	b := uint8(v >> 16)
	g := uint8(v >> 8)
	r := uint8(v)

	return ARGB(a, r, g, b), nil
}

// KML renders the color as "aabbggrr".
func (c Color) KML() string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.Alpha(), c.Blue(), c.Green(), c.Red())
}

// Alpha returns the alpha channel; 0xff is opaque.
func (c Color) Alpha() uint8 { return uint8(c >> 24) }

// Red returns the red channel.
func (c Color) Red() uint8 { return uint8(c >> 16) }

// Green returns the green channel.
func (c Color) Green() uint8 { return uint8(c >> 8) }

// Blue returns the blue channel.
func (c Color) Blue() uint8 { return uint8(c) }

// NRGBA converts to a non-premultiplied image color.
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.Red(), G: c.Green(), B: c.Blue(), A: c.Alpha()}
}

// MarshalYAML writes the KML text form.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.KML(), nil
}

// UnmarshalYAML reads the KML text form.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
