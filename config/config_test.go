package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "labels.txt", cfg.Data.Labels)
	assert.Equal(t, "Training", cfg.Data.Train)
	assert.Equal(t, "Test", cfg.Data.Test)
	assert.Equal(t, 100, cfg.Data.Width)
	assert.Equal(t, 100, cfg.Data.Height)
	assert.Equal(t, 64, cfg.Data.BatchSize)
	assert.Equal(t, 5, cfg.Train.Epochs)
	assert.Equal(t, 20.0, cfg.Augment.Rotation)
	assert.Equal(t, 0.5, cfg.Augment.Zoom)
	assert.True(t, cfg.Augment.VerticalFlip)
	assert.Equal(t, "./results.csv", cfg.Output.Results)
	assert.Equal(t, "weights_best.json.lzw", cfg.Output.Checkpoint)
	assert.Equal(t, "./lite-models", cfg.Output.LiteDir)
	assert.Equal(t, uint32(4096), cfg.Train.Premodulo)
	assert.False(t, cfg.Publish.Enabled)
}

func TestLoadFileOverrides(t *testing.T) {
	dir := t.TempDir()
	yaml := "train:\n  epochs: 2\ndata:\n  batch_size: 8\npublish:\n  enabled: true\n  bucket: fruits\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Train.Epochs)
	assert.Equal(t, 8, cfg.Data.BatchSize)
	assert.Equal(t, 100, cfg.Data.Width)
	assert.True(t, cfg.Publish.Enabled)
	assert.Equal(t, "fruits", cfg.Publish.Bucket)
}

func TestLoadBadFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "train.yaml"), []byte("train: [\n"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadRejectsNonPositiveSizes(t *testing.T) {
	for _, yaml := range []string{
		"data:\n  batch_size: 0\n",
		"data:\n  batch_size: -4\n",
		"data:\n  width: 0\n",
		"data:\n  height: -1\n",
	} {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "train.yaml"), []byte(yaml), 0o644))
		_, err := Load(dir)
		assert.ErrorIs(t, err, ErrInvalid, yaml)
	}
}
