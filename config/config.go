package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const maxBuckets = 6

type Player struct {
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
}

type Game struct {
	Dataset         string   `yaml:"dataset"`
	Scratch         string   `yaml:"scratch"`
	Classes         []string `yaml:"classes"`
	SamplesPerClass int      `yaml:"samples_per_class"`
	Buckets         []string `yaml:"buckets"`
	Width           int      `yaml:"width"`
	Seed            int64    `yaml:"seed"` // 0 = time based
	Player          Player   `yaml:"player"`
}

type Segment struct {
	Length        float64 `yaml:"length"` // sec
	KeepRemaining bool    `yaml:"keep_remaining"`
	Prefix        string  `yaml:"prefix"`
}

type Split struct {
	Enabled bool    `yaml:"enabled"`
	Ratio   float64 `yaml:"ratio"`
	Seed    int64   `yaml:"seed"`
}

type Prune struct {
	MinFiles int    `yaml:"min_files"`
	Rename   bool   `yaml:"rename"`
	BaseName string `yaml:"base_name"`
}

type Root struct {
	Pipeline struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
		LogLvl  string `yaml:"log_level"`
	} `yaml:"pipeline"`
	Game    Game    `yaml:"game"`
	Segment Segment `yaml:"segment"`
	Split   Split   `yaml:"split"`
	Prune   Prune   `yaml:"prune"`
	Paths   struct {
		Input   string `yaml:"input"`
		Staging string `yaml:"staging"`
		Outputs string `yaml:"outputs"`
	} `yaml:"paths"`
}

func Defaults() *Root {
	var c Root
	c.Pipeline.Name = "audiosort"
	c.Pipeline.Version = "dev"
	c.Pipeline.LogLvl = "info"
	c.Game = Game{
		Dataset:         filepath.Join("datasets", "test"),
		Scratch:         "temp_audio",
		Classes:         []string{"dog_9", "dog_10", "dog_5"},
		SamplesPerClass: 5,
		Buckets:         []string{"A", "B", "C"},
		Width:           1100,
		Player:          Player{Command: "ffplay"},
	}
	c.Segment = Segment{Length: 6, KeepRemaining: true, Prefix: "combined"}
	c.Split = Split{Enabled: true, Ratio: 0.8, Seed: 42}
	c.Prune = Prune{MinFiles: 5, Rename: true, BaseName: "class"}
	c.Paths.Input = "dataset"
	c.Paths.Staging = "split_dataset"
	c.Paths.Outputs = "augmented_dataset"
	return &c
}

// Load decodes path over the defaults. With an empty path it probes
// config/<CONFIG_ENV>/config.yaml then config.yaml, and falls back to the
// defaults alone when neither exists.
func Load(path string) (*Root, error) {
	cfg := Defaults()
	if path != "" {
		return cfg, decodeFile(path, cfg)
	}
	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	guess := []string{
		filepath.Join("config", env, "config.yaml"),
		"config.yaml",
	}
	for _, p := range guess {
		err := decodeFile(p, cfg)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		return cfg, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Root) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("config decode %s: %w", path, err)
	}
	return nil
}

// Validate checks the values both tools depend on.
func (c *Root) Validate() error {
	var errs []error
	g := c.Game
	if len(g.Buckets) > maxBuckets {
		errs = append(errs, fmt.Errorf("game.buckets: %d labels, at most %d", len(g.Buckets), maxBuckets))
	}
	if len(g.Classes) > len(g.Buckets) {
		errs = append(errs, fmt.Errorf("game.classes: %d classes but %d buckets", len(g.Classes), len(g.Buckets)))
	}
	if g.SamplesPerClass < 1 {
		errs = append(errs, fmt.Errorf("game.samples_per_class must be positive"))
	}
	if c.Segment.Length <= 0 {
		errs = append(errs, fmt.Errorf("segment.length must be positive"))
	}
	if c.Split.Ratio < 0 || c.Split.Ratio > 1 {
		errs = append(errs, fmt.Errorf("split.ratio must be within [0, 1]"))
	}
	if c.Prune.MinFiles < 0 {
		errs = append(errs, fmt.Errorf("prune.min_files must not be negative"))
	}
	if c.Prune.Rename && c.Prune.BaseName == "" {
		errs = append(errs, fmt.Errorf("prune.base_name is required when renaming"))
	}
	// the pipeline clears paths.outputs/{train,test} before writing
	out := filepath.Clean(c.Paths.Outputs)
	if out == filepath.Clean(c.Paths.Input) || out == filepath.Clean(c.Paths.Staging) {
		errs = append(errs, fmt.Errorf("paths.outputs must differ from paths.input and paths.staging"))
	}
	return errors.Join(errs...)
}
