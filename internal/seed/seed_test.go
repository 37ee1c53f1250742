package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	defs, err := Default()
	require.NoError(t, err)
	require.Len(t, defs, 5)

	names := make([]string, 0, len(defs))
	for _, d := range defs {
		names = append(names, d.Name)
		assert.NotEmpty(t, d.Description)
		assert.NotEmpty(t, d.RequiredSkills)
	}
	assert.Contains(t, names, "Python Backend Engineer")
	assert.Contains(t, names, "Data Analyst")
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "positions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("positions:\n  - name: ' Go Developer '\n    description: Services\n"), 0o644))

	defs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "Go Developer", defs[0].Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("positions:\n  - description: no name\n"))
	assert.ErrorContains(t, err, "has no name")

	_, err = Parse([]byte("positions:\n  - name: A\n  - name: a\n"))
	assert.ErrorContains(t, err, "listed twice")

	_, err = Parse([]byte("positions: [unterminated"))
	assert.Error(t, err)
}
