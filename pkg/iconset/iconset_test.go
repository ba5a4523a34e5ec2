package iconset

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	s := New("mdi-custom", "My Icons", "alice")

	assert.Equal(t, "mdi-custom", s.Prefix())
	assert.Equal(t, 0, s.Count())

	info := s.Info()
	assert.Equal(t, "My Icons", info.Name)
	assert.Equal(t, CategoryProject, info.Category)
	assert.Equal(t, "MIT", info.License.Title)
	assert.Equal(t, "alice", info.Author.Name)
	assert.Equal(t, "/", info.Author.URL)
	assert.Equal(t, DefaultHeight, info.Height)
	assert.Equal(t, DefaultVersion, info.Version)
}

func TestSetIconFirstWriteWins(t *testing.T) {
	s := New("test", "Test", "alice")

	changed := s.SetIcon("star", Icon{Body: "<path/>", Width: 24, Height: 24})
	require.True(t, changed)
	require.Equal(t, 1, s.Count())

	// same name again must not overwrite
	changed = s.SetIcon("star", Icon{Body: "<rect/>", Width: 16, Height: 16})
	assert.False(t, changed)
	assert.Equal(t, 1, s.Count())

	ic, ok := s.Get("star")
	require.True(t, ok)
	assert.Equal(t, "<path/>", ic.Body)
	assert.Equal(t, float64(24), ic.Width)
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	s := New("test", "Test", "alice")
	s.SetIcon("star", Icon{Body: "<path/>", Width: 24, Height: 24})

	assert.False(t, s.Remove("moon"))
	assert.Equal(t, 1, s.Count())

	assert.True(t, s.Remove("star"))
	assert.Equal(t, 0, s.Count())
}

func TestExportSyncsTotal(t *testing.T) {
	s := New("test", "Test", "alice")
	s.SetIcon("a", Icon{Body: "<path/>", Width: 24, Height: 24})
	s.SetIcon("b", Icon{Body: "<path/>", Width: 24, Height: 24})

	data, err := s.Export()
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Info.Total)
	assert.Len(t, doc.Icons, 2)
	assert.Equal(t, "test", doc.Prefix)
}

func TestExportEmptyDocumentHasIconsObject(t *testing.T) {
	s := New("empty", "Empty", "alice")
	data, err := s.Export()
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "icons")
	assert.JSONEq(t, `{}`, string(raw["icons"]))
}

func TestParseRoundTrip(t *testing.T) {
	s := New("round", "Round", "alice")
	s.SetIcon("star", Icon{Body: "<path/>", Left: 1, Top: 2, Width: 24, Height: 24, HFlip: true})

	data, err := s.Export()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s.Names(), parsed.Names())

	ic, ok := parsed.Get("star")
	require.True(t, ok)
	assert.True(t, ic.HFlip)
	assert.False(t, ic.VFlip)
	assert.Equal(t, float64(1), ic.Left)
}

func TestParseRejectsMissingPrefix(t *testing.T) {
	_, err := Parse([]byte(`{"icons":{}}`))
	assert.ErrorIs(t, err, ErrInvalidDocument)
}

func TestParseNilIconsBecomesEmptyMap(t *testing.T) {
	s, err := Parse([]byte(`{"prefix":"p","info":{"name":"P"}}`))
	require.NoError(t, err)
	assert.Equal(t, 0, s.Count())
	assert.True(t, s.SetIcon("x", Icon{Body: "<path/>"}))
}
