package helmup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func mustPath(t *testing.T, segments ...any) KeyPath {
	t.Helper()
	p, err := Path(segments...)
	require.NoError(t, err)
	return p
}

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	require.NoError(t, err)
	return doc
}

const nestedFixture = `a:
  b: 1
  list:
    - x
    - y: 2
c: scalar
`

func TestDocument_Get(t *testing.T) {
	doc := mustParse(t, nestedFixture)

	tests := []struct {
		name      string
		path      KeyPath
		wantValue string
		wantOK    bool
	}{
		{
			name:      "nested scalar",
			path:      mustPath(t, "a", "b"),
			wantValue: "1",
			wantOK:    true,
		},
		{
			name:      "sequence element",
			path:      mustPath(t, "a", "list", 0),
			wantValue: "x",
			wantOK:    true,
		},
		{
			name:      "mapping inside sequence",
			path:      mustPath(t, "a", "list", 1, "y"),
			wantValue: "2",
			wantOK:    true,
		},
		{
			name:   "missing key",
			path:   mustPath(t, "a", "z"),
			wantOK: false,
		},
		{
			name:   "path through scalar",
			path:   mustPath(t, "a", "b", "c"),
			wantOK: false,
		},
		{
			name:   "index into mapping",
			path:   mustPath(t, "a", 0),
			wantOK: false,
		},
		{
			name:   "index out of range",
			path:   mustPath(t, "a", "list", 5),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, ok := doc.Get(tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				require.NotNil(t, node)
				assert.Equal(t, tt.wantValue, node.Value)
			}
		})
	}
}

func TestDocument_Set_AutoVivify(t *testing.T) {
	doc := NewDocument()
	val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "v"}

	err := doc.Set(mustPath(t, "a", "b", "c"), val)
	require.NoError(t, err)

	got, ok := doc.Get(mustPath(t, "a", "b", "c"))
	require.True(t, ok)
	assert.Equal(t, "v", got.Value)

	// intermediate nodes are mappings
	mid, ok := doc.Get(mustPath(t, "a", "b"))
	require.True(t, ok)
	assert.Equal(t, yaml.MappingNode, mid.Kind)
}

func TestDocument_Set_ThroughScalar(t *testing.T) {
	doc := mustParse(t, "a: 1\n")
	val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "v"}

	err := doc.Set(mustPath(t, "a", "b"), val)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotContainer)

	// document unchanged
	got, ok := doc.Get(mustPath(t, "a"))
	require.True(t, ok)
	assert.Equal(t, "1", got.Value)
}

func TestDocument_Set_Sequence(t *testing.T) {
	doc := mustParse(t, "list:\n  - a\n  - b\n")
	val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "c"}

	// replace in range
	require.NoError(t, doc.Set(mustPath(t, "list", 1), val))
	got, ok := doc.Get(mustPath(t, "list", 1))
	require.True(t, ok)
	assert.Equal(t, "c", got.Value)

	// append at length
	tail := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "d"}
	require.NoError(t, doc.Set(mustPath(t, "list", 2), tail))
	got, ok = doc.Get(mustPath(t, "list", 2))
	require.True(t, ok)
	assert.Equal(t, "d", got.Value)

	// beyond length is an error
	err := doc.Set(mustPath(t, "list", 5), val)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// an index segment cannot vivify a missing sequence
	err = doc.Set(mustPath(t, "missing", 0), val)
	assert.ErrorIs(t, err, ErrNotContainer)
}

func TestDocument_SetDefault(t *testing.T) {
	doc := mustParse(t, "a:\n  b: old\n")
	val := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "new"}

	// existing path keeps its value
	got, err := doc.SetDefault(mustPath(t, "a", "b"), val)
	require.NoError(t, err)
	assert.Equal(t, "old", got.Value)

	// absent path takes the default
	got, err = doc.SetDefault(mustPath(t, "a", "c"), val)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Value)
}

func TestDocument_Pop(t *testing.T) {
	doc := mustParse(t, nestedFixture)

	removed, ok := doc.Pop(mustPath(t, "a", "b"))
	require.True(t, ok)
	assert.Equal(t, "1", removed.Value)
	_, ok = doc.Get(mustPath(t, "a", "b"))
	assert.False(t, ok)

	// second pop misses and leaves the tree alone
	before, err := doc.Marshal()
	require.NoError(t, err)
	_, ok = doc.Pop(mustPath(t, "a", "b"))
	assert.False(t, ok)
	after, err := doc.Marshal()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDocument_Pop_SequenceShifts(t *testing.T) {
	doc := mustParse(t, "list:\n  - a\n  - b\n  - c\n")

	removed, ok := doc.Pop(mustPath(t, "list", 1))
	require.True(t, ok)
	assert.Equal(t, "b", removed.Value)

	got, ok := doc.Get(mustPath(t, "list", 1))
	require.True(t, ok)
	assert.Equal(t, "c", got.Value)
	_, ok = doc.Get(mustPath(t, "list", 2))
	assert.False(t, ok)
}

func TestDocument_Equal(t *testing.T) {
	a := mustParse(t, nestedFixture)
	b := mustParse(t, nestedFixture)
	assert.True(t, a.Equal(b))

	// same content, different key order
	reordered := mustParse(t, "c: scalar\na:\n  b: 1\n  list:\n    - x\n    - y: 2\n")
	assert.False(t, a.Equal(reordered))

	// diverging value
	_, ok := b.Pop(mustPath(t, "c"))
	require.True(t, ok)
	assert.False(t, a.Equal(b))
}

func TestDocument_RoundTrip(t *testing.T) {
	doc := mustParse(t, nestedFixture)
	path := filepath.Join(t.TempDir(), "values.yaml")

	require.NoError(t, doc.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.True(t, doc.Equal(loaded))

	// key order survives reserialization
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Less(t, strings.Index(text, "b:"), strings.Index(text, "list:"))
	assert.Less(t, strings.Index(text, "a:"), strings.Index(text, "c:"))
}

func TestParse(t *testing.T) {
	// empty input yields an empty mapping document
	doc, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, yaml.MappingNode, doc.Root().Kind)
	assert.Empty(t, doc.Root().Content)

	// top-level sequence is rejected
	_, err = Parse([]byte("- a\n- b\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a mapping")

	// malformed YAML is rejected
	_, err = Parse([]byte("a: [b\n"))
	assert.Error(t, err)
}

func TestNodeFor(t *testing.T) {
	tests := []struct {
		name      string
		value     any
		wantTag   string
		wantValue string
	}{
		{"string", "v1.2.0", "!!str", "v1.2.0"},
		{"bool", true, "!!bool", "true"},
		{"int", 42, "!!int", "42"},
		{"integral float", float64(4000), "!!int", "4000"},
		{"fractional float", 1.5, "!!float", "1.5"},
		{"nil", nil, "!!null", "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := nodeFor(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTag, node.Tag)
			assert.Equal(t, tt.wantValue, node.Value)
		})
	}

	t.Run("map keys are sorted", func(t *testing.T) {
		node, err := nodeFor(map[string]any{"b": "2", "a": "1"})
		require.NoError(t, err)
		require.Equal(t, yaml.MappingNode, node.Kind)
		require.Len(t, node.Content, 4)
		assert.Equal(t, "a", node.Content[0].Value)
		assert.Equal(t, "b", node.Content[2].Value)
	})

	t.Run("slice", func(t *testing.T) {
		node, err := nodeFor([]any{"x", float64(1)})
		require.NoError(t, err)
		require.Equal(t, yaml.SequenceNode, node.Kind)
		require.Len(t, node.Content, 2)
		assert.Equal(t, "x", node.Content[0].Value)
		assert.Equal(t, "1", node.Content[1].Value)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := nodeFor(struct{}{})
		assert.Error(t, err)
	})
}
