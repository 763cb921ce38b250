package dict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/petar-dambovaliev/daac"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseText(t *testing.T) {
	pairs, err := Parse(strings.NewReader("he\r\n\nshe\nhis\n\nhers"), false)
	require.NoError(t, err)
	assert.Equal(t, []daac.Pair[uint32]{
		{Pattern: "he", Value: 0},
		{Pattern: "she", Value: 1},
		{Pattern: "his", Value: 2},
		{Pattern: "hers", Value: 3},
	}, pairs)
}

func TestParseYAML(t *testing.T) {
	src := `
- pattern: 東京
  value: 10
- pattern: 京都
- pattern: "  padded "
  value: 0
`
	pairs, err := Parse(strings.NewReader(src), true)
	require.NoError(t, err)
	assert.Equal(t, []daac.Pair[uint32]{
		{Pattern: "東京", Value: 10},
		{Pattern: "京都", Value: 1},
		{Pattern: "  padded ", Value: 0},
	}, pairs)
}

func TestParseYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"not a list", "pattern: x"},
		{"empty pattern", "- value: 3"},
		{"negative value", "- pattern: x\n  value: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.src), true)
			assert.Error(t, err)
		})
	}
}

func TestParseEmpty(t *testing.T) {
	pairs, err := Parse(strings.NewReader(""), true)
	require.NoError(t, err)
	assert.Empty(t, pairs)
	pairs, err = Parse(strings.NewReader("\n\n"), false)
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "words.txt")
	require.NoError(t, os.WriteFile(txt, []byte("cat\ndog\n"), 0644))
	yml := filepath.Join(dir, "words.YML")
	require.NoError(t, os.WriteFile(yml, []byte("- pattern: cat\n  value: 9\n"), 0644))

	pairs, err := Load(txt)
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	pairs, err = Load(yml)
	require.NoError(t, err)
	assert.Equal(t, []daac.Pair[uint32]{{Pattern: "cat", Value: 9}}, pairs)

	_, err = Load(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a.yaml"))
	assert.True(t, IsYAML("dir/a.Yml"))
	assert.False(t, IsYAML("a.txt"))
	assert.False(t, IsYAML("yaml"))
}
