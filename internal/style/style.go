package style

// Style is a named, reusable bundle of rendering parameters. Each sub-style is optional.
type Style struct {
	IconStyle *IconStyle `yaml:"icon,omitempty"`
	LineStyle *LineStyle `yaml:"line,omitempty"`
	PolyStyle *PolyStyle `yaml:"poly,omitempty"`
}

// IconStyle controls point markers.
type IconStyle struct {
	Color   Color   `yaml:"color"`
	Scale   float64 `yaml:"scale"`
	Heading float64 `yaml:"heading,omitempty"`
	Href    string  `yaml:"href,omitempty"`
}

// LineStyle controls lines and polygon outlines.
type LineStyle struct {
	Color Color   `yaml:"color"`
	Width float64 `yaml:"width"`
}

// PolyStyle controls polygon interiors.
type PolyStyle struct {
	Color   Color `yaml:"color"`
	Fill    bool  `yaml:"fill"`
	Outline bool  `yaml:"outline"`
}

// StyleMap pairs a normal and a highlight style id.
type StyleMap struct {
	Normal    string
	Highlight string
}

// Default returns the style used when a feature names no resolvable style.
func Default() *Style {
	return &Style{
		IconStyle: &IconStyle{Color: White, Scale: 1},
		LineStyle: &LineStyle{Color: Black, Width: 1},
		PolyStyle: &PolyStyle{Color: White, Fill: true, Outline: true},
	}
}

// NewIconStyle returns an icon style with KML defaults.
func NewIconStyle() *IconStyle {
	return &IconStyle{Color: White, Scale: 1}
}

// NewLineStyle returns a line style with KML defaults.
func NewLineStyle() *LineStyle {
	return &LineStyle{Color: White, Width: 1}
}

// NewPolyStyle returns a polygon style with KML defaults.
func NewPolyStyle() *PolyStyle {
	return &PolyStyle{Color: White, Fill: true, Outline: true}
}

// Clone returns a deep copy.
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	out := &Style{}
	if s.IconStyle != nil {
		v := *s.IconStyle
		out.IconStyle = &v
	}
	if s.LineStyle != nil {
		v := *s.LineStyle
		out.LineStyle = &v
	}
	if s.PolyStyle != nil {
		v := *s.PolyStyle
		out.PolyStyle = &v
	}
	return out
}
