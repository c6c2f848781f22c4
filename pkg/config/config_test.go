package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	c := Default()
	assert.Equal(t, "uploads", c.DatasetDir)
	assert.Equal(t, "models_saved", c.ModelDir)
	assert.Equal(t, 50000, c.Sampling.MaxRows)
	assert.Equal(t, 10000, c.Sampling.Budget().For("SVM"))
	assert.Equal(t, 0.15, c.Narration.OverfitGap)
	require.NoError(t, c.Validate())
}

func TestParseOverlaysDefaults(t *testing.T) {
	c, err := Parse(strings.NewReader(`
model_dir: /tmp/models
sampling:
  max_rows: 1000
narration:
  overfit_gap: 0.2
`))
	require.NoError(t, err)
	assert.Equal(t, "/tmp/models", c.ModelDir)
	assert.Equal(t, "uploads", c.DatasetDir)
	assert.Equal(t, 1000, c.Sampling.MaxRows)
	assert.Equal(t, 10000, c.Sampling.ReducedMaxRows)
	assert.Equal(t, 0.2, c.Narration.OverfitGap)
	assert.Equal(t, 0.90, c.Narration.AccuracyExcellent)
}

func TestParseRejectsUnknownAndInvalid(t *testing.T) {
	_, err := Parse(strings.NewReader("datasets: x\n"))
	assert.Error(t, err)

	_, err = Parse(strings.NewReader("sampling:\n  max_rows: 0\n"))
	assert.Error(t, err)
}

func TestEmptyInputIsDefault(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoadAndInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mlstudio.yaml")
	body := "dataset_dir: " + filepath.Join(dir, "up") + "\nmodel_dir: " + filepath.Join(dir, "models") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Init())
	for _, d := range []string{c.DatasetDir, c.ModelDir} {
		fi, err := os.Stat(d)
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
