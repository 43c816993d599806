package kml

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "&amp;&lt;&gt;&quot;&apos;plain", Escape(`&<>"'plain`))
}

func TestEncoderCDATAIsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	e := NewEncoder(&buf)
	e.cdata("description", "a ]]> b & <i>")
	require.NoError(t, e.Flush())
	assert.Equal(t, "<description><![CDATA[a ]]> b & <i>]]></description>\n", buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncoderStickyError(t *testing.T) {
	doc := sampleDocument(t)
	err := doc.WriteKML(failingWriter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
