// Package config loads the bardbox YAML configuration and builds a
// fully registered Player from it.
package config

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	zlog "github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/osa030/bardbox/internal/infra/logger"
)

// ErrConfig marks malformed or contradictory configuration.
var ErrConfig = errors.New("invalid config")

// Config represents the application configuration.
type Config struct {
	Log logger.Config `yaml:"log"`

	// MasterVolume is a percentage. Out-of-range values are replaced
	// with 100 (with a warning), matching operator-input handling.
	MasterVolume *int `yaml:"master_volume"`

	// Sounds maps aliases to file paths, so a file referenced by several
	// playables can be named once.
	Sounds map[string]string `yaml:"sounds"`

	CompTracks map[string]PlayableConfig `yaml:"comp_tracks" validate:"omitempty,dive"`
	TrackLists map[string]PlayableConfig `yaml:"tracklists" validate:"omitempty,dive"`
}

// PlayableConfig defines one composite track or tracklist.
type PlayableConfig struct {
	Tracks   TrackDefs      `yaml:"tracks" validate:"required,min=1"`
	Settings map[string]any `yaml:"settings"`
}

// TrackDef is one track entry: a name and a path (or sound alias).
type TrackDef struct {
	Name string
	Path string
}

// TrackDefs preserves the YAML mapping order, so the first entry is the
// playable's default track.
type TrackDefs []TrackDef

// UnmarshalYAML decodes a mapping node pairwise to keep insertion order,
// which plain map decoding would lose.
func (t *TrackDefs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Wrap(ErrConfig, "tracks must be a mapping of track name to path")
	}
	defs := make(TrackDefs, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var def TrackDef
		if err := node.Content[i].Decode(&def.Name); err != nil {
			return errors.Wrap(err, "bad track name")
		}
		if err := node.Content[i+1].Decode(&def.Path); err != nil {
			return errors.Wrapf(err, "bad path for track %q", def.Name)
		}
		defs = append(defs, def)
	}
	*t = defs
	return nil
}

// Load loads the configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses configuration from raw YAML.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "config validation failed")
	}
	if len(c.CompTracks)+len(c.TrackLists) == 0 {
		return errors.Wrap(ErrConfig, "no playables defined")
	}
	for name := range c.CompTracks {
		if _, ok := c.TrackLists[name]; ok {
			return errors.Wrapf(ErrConfig, "multiple playables named %q", name)
		}
	}
	if v := c.MasterVolume; v != nil && (*v < 0 || *v > 100) {
		zlog.Warn().Msgf("master volume must be between 0 and 100, ignoring %d and using 100", *v)
		c.MasterVolume = nil
	}
	return nil
}

// MasterVolumeFraction returns the configured master volume as a
// fraction in [0,1], defaulting to 1.
func (c *Config) MasterVolumeFraction() float64 {
	if c.MasterVolume == nil {
		return 1
	}
	return float64(*c.MasterVolume) / 100
}
