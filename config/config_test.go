package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"A", "B", "C"}, c.Game.Buckets)
	assert.Equal(t, 5, c.Game.SamplesPerClass)
	assert.Equal(t, 6.0, c.Segment.Length)
	assert.Equal(t, 0.8, c.Split.Ratio)
	assert.Equal(t, int64(42), c.Split.Seed)
	assert.Equal(t, "class", c.Prune.BaseName)
}

func TestLoadExplicitFileOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
pipeline:
  log_level: debug
game:
  classes: [dog_1, dog_2]
  buckets: [X, Y]
segment:
  length: 3.5
  keep_remaining: false
`), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.Pipeline.LogLvl)
	assert.Equal(t, []string{"dog_1", "dog_2"}, c.Game.Classes)
	assert.Equal(t, []string{"X", "Y"}, c.Game.Buckets)
	assert.Equal(t, 3.5, c.Segment.Length)
	assert.False(t, c.Segment.KeepRemaining)
	// untouched values keep their defaults
	assert.Equal(t, 5, c.Game.SamplesPerClass)
	assert.Equal(t, "combined", c.Segment.Prefix)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadProbesEnvDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config", "prod"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "prod", "config.yaml"),
		[]byte("prune:\n  min_files: 9\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("CONFIG_ENV", "prod")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 9, c.Prune.MinFiles)

	t.Setenv("CONFIG_ENV", "nowhere")
	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 5, c.Prune.MinFiles)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("game: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	c := Defaults()
	c.Game.Buckets = []string{"A"}
	c.Split.Ratio = 1.2
	c.Segment.Length = 0
	c.Prune.BaseName = ""

	err := c.Validate()
	require.Error(t, err)
	for _, want := range []string{"game.classes", "split.ratio", "segment.length", "prune.base_name"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateRejectsOutputsOverInput(t *testing.T) {
	c := Defaults()
	c.Paths.Outputs = c.Paths.Input + "/"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paths.outputs")
}

func TestOverlayFlagsBeatEnv(t *testing.T) {
	t.Setenv("AUDIOSORT_SEGMENT_LENGTH", "4")
	t.Setenv("AUDIOSORT_GAME_CLASSES", "a, b,c")
	t.Setenv("AUDIOSORT_SPLIT_SEED", "7")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Float64("length", 6, "")
	fs.Int64("seed", 0, "")
	fs.Bool("keep-remaining", true, "")
	require.NoError(t, fs.Parse([]string{"--length", "2.5", "--keep-remaining=false"}))

	c := Defaults()
	require.NoError(t, Overlay(c, fs, map[string]string{
		"segment.length":         "length",
		"split.seed":             "seed",
		"segment.keep_remaining": "keep-remaining",
	}))

	assert.Equal(t, 2.5, c.Segment.Length)
	assert.False(t, c.Segment.KeepRemaining)
	// flag not changed, env wins
	assert.Equal(t, int64(7), c.Split.Seed)
	assert.Equal(t, []string{"a", "b", "c"}, c.Game.Classes)
	// nothing set, default stays
	assert.Equal(t, 0.8, c.Split.Ratio)
}
