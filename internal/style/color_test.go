package style

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseColor(t *testing.T) {
	c, err := ParseColor("7f0000ff")
	require.NoError(t, err)

	assert.Equal(t, uint8(0x7f), c.Alpha())
	assert.Equal(t, uint8(0xff), c.Red())
	assert.Equal(t, uint8(0x00), c.Green())
	assert.Equal(t, uint8(0x00), c.Blue())
	assert.Equal(t, "7f0000ff", c.KML())
	assert.Equal(t, color.NRGBA{R: 0xff, A: 0x7f}, c.NRGBA())

	for _, bad := range []string{"", "fff", "zz0000ff", "ff0000ff00"} {
		_, err := ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestColorYAML(t *testing.T) {
	var s Style
	err := yaml.Unmarshal([]byte("line:\n  color: ff00ff00\n  width: 3\n"), &s)
	require.NoError(t, err)
	require.NotNil(t, s.LineStyle)
	assert.Equal(t, ARGB(0xff, 0, 0xff, 0), s.LineStyle.Color)
	assert.Equal(t, 3.0, s.LineStyle.Width)

	out, err := yaml.Marshal(s.LineStyle)
	require.NoError(t, err)
	assert.Contains(t, string(out), "color: ff00ff00")

	err = yaml.Unmarshal([]byte("line:\n  color: nope\n"), &s)
	assert.Error(t, err)
}
