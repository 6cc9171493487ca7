package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/parigo/parigo/pkg/transit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig("")
	require.NoError(t, err)

	require.Len(t, config.Groups, 3)
	assert.Equal(t, "rer", config.Groups[2].Name)
	assert.Contains(t, config.Groups[2].CommercialModes, "regionalRail")
	assert.Equal(t, `"Actualité" in tags`, config.DisruptionFilter)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
groups:
  - name: metro
    physical_modes: [Metro]
    commercial_modes: [Metro]
`), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, config.Groups, 1)
	assert.Equal(t, "metro", config.Groups[0].Name)
	// Filter falls back to the default when the file omits it.
	assert.Equal(t, `"Actualité" in tags`, config.DisruptionFilter)
}

func TestLoadConfigRejectsEmptyGroups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups: []\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDisruptionFilterMatchesNewsTag(t *testing.T) {
	filter, err := CompileDisruptionFilter(DefaultConfig().DisruptionFilter)
	require.NoError(t, err)

	assert.True(t, filter.Matches(&transit.Disruption{Tags: []string{"Actualité"}}))
	assert.False(t, filter.Matches(&transit.Disruption{Tags: []string{"Ascenseurs"}}))
	assert.False(t, filter.Matches(&transit.Disruption{}))
}

func TestCompileDisruptionFilterRejectsBadExpression(t *testing.T) {
	_, err := CompileDisruptionFilter("tags +")
	assert.Error(t, err)
}
