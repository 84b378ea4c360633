package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "AUDIOSORT"

type override struct {
	key   string
	apply func(v *viper.Viper, c *Root, key string)
}

var overrides = []override{
	{"pipeline.log_level", func(v *viper.Viper, c *Root, k string) { c.Pipeline.LogLvl = v.GetString(k) }},

	{"game.dataset", func(v *viper.Viper, c *Root, k string) { c.Game.Dataset = v.GetString(k) }},
	{"game.scratch", func(v *viper.Viper, c *Root, k string) { c.Game.Scratch = v.GetString(k) }},
	{"game.classes", func(v *viper.Viper, c *Root, k string) { c.Game.Classes = stringSlice(v, k) }},
	{"game.samples_per_class", func(v *viper.Viper, c *Root, k string) { c.Game.SamplesPerClass = v.GetInt(k) }},
	{"game.buckets", func(v *viper.Viper, c *Root, k string) { c.Game.Buckets = stringSlice(v, k) }},
	{"game.width", func(v *viper.Viper, c *Root, k string) { c.Game.Width = v.GetInt(k) }},
	{"game.seed", func(v *viper.Viper, c *Root, k string) { c.Game.Seed = v.GetInt64(k) }},
	{"game.player.command", func(v *viper.Viper, c *Root, k string) { c.Game.Player.Command = v.GetString(k) }},

	{"segment.length", func(v *viper.Viper, c *Root, k string) { c.Segment.Length = v.GetFloat64(k) }},
	{"segment.keep_remaining", func(v *viper.Viper, c *Root, k string) { c.Segment.KeepRemaining = v.GetBool(k) }},
	{"segment.prefix", func(v *viper.Viper, c *Root, k string) { c.Segment.Prefix = v.GetString(k) }},

	{"split.enabled", func(v *viper.Viper, c *Root, k string) { c.Split.Enabled = v.GetBool(k) }},
	{"split.ratio", func(v *viper.Viper, c *Root, k string) { c.Split.Ratio = v.GetFloat64(k) }},
	{"split.seed", func(v *viper.Viper, c *Root, k string) { c.Split.Seed = v.GetInt64(k) }},

	{"prune.min_files", func(v *viper.Viper, c *Root, k string) { c.Prune.MinFiles = v.GetInt(k) }},
	{"prune.rename", func(v *viper.Viper, c *Root, k string) { c.Prune.Rename = v.GetBool(k) }},
	{"prune.base_name", func(v *viper.Viper, c *Root, k string) { c.Prune.BaseName = v.GetString(k) }},

	{"paths.input", func(v *viper.Viper, c *Root, k string) { c.Paths.Input = v.GetString(k) }},
	{"paths.staging", func(v *viper.Viper, c *Root, k string) { c.Paths.Staging = v.GetString(k) }},
	{"paths.outputs", func(v *viper.Viper, c *Root, k string) { c.Paths.Outputs = v.GetString(k) }},
}

// Overlay applies AUDIOSORT_* environment variables and then changed flags
// on top of cfg. bindings maps config keys (game.seed) to flag names (seed).
func Overlay(cfg *Root, flags *pflag.FlagSet, bindings map[string]string) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range bindings {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	for _, o := range overrides {
		if v.IsSet(o.key) {
			o.apply(v, cfg, o.key)
		}
	}
	return nil
}

// stringSlice accepts both flag slices and comma separated env values.
func stringSlice(v *viper.Viper, key string) []string {
	var out []string
	for _, s := range v.GetStringSlice(key) {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
