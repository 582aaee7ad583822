package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".csvinsight", "data"), c.DataDir)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, "markdown", c.OutputFormat)
	assert.Equal(t, 2000, c.PersistRowCap)
	assert.Equal(t, 200, c.PersistSampleRows)
	assert.Equal(t, 12, c.HistogramBins)
	assert.Equal(t, 6, c.MaxCharts)
	assert.Equal(t, 2000, c.ScatterCap)
	assert.Equal(t, 10, c.TopCategories)
	assert.Equal(t, 4, c.BatchWorkers)
}

func TestSaveThenLoadFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(t.TempDir(), "config.yaml")

	c, err := Load(path)
	require.NoError(t, err)
	c.MaxCharts = 3
	c.DataDir = "~/elsewhere"
	require.NoError(t, Save(c, path))

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, again.MaxCharts)
	assert.Equal(t, filepath.Join(home, "elsewhere"), again.DataDir)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CSVINSIGHT_MAX_CHARTS", "2")
	t.Setenv("CSVINSIGHT_LOG_LEVEL", "debug")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2, c.MaxCharts)
	assert.Equal(t, "debug", c.LogLevel)
}
