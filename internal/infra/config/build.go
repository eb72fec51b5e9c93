package config

import (
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bardbox/internal/app/playback"
	"github.com/osa030/bardbox/internal/domain/audio"
)

// compositeSettings are the per-composite options under `settings`.
type compositeSettings struct {
	SwitchFadeSec float64 `mapstructure:"switch_fade_sec" default:"2.5" validate:"gte=0"`
}

// sequenceSettings are the per-tracklist options under `settings`.
type sequenceSettings struct {
	Loop    *bool `mapstructure:"loop" default:"true"`
	Shuffle *bool `mapstructure:"shuffle" default:"true"`
}

// BuildPlayer constructs a Player with every configured playable
// registered. Composite tracks eagerly load their sounds here, so this
// is where missing or undecodable files surface.
func (c *Config) BuildPlayer(engine audio.Engine) (*playback.Player, error) {
	player := playback.NewPlayer(c.MasterVolumeFraction())

	for _, name := range sortedKeys(c.CompTracks) {
		pc := c.CompTracks[name]
		var settings compositeSettings
		if err := decodeSettings(pc.Settings, &settings); err != nil {
			return nil, errors.Wrapf(err, "comp track %q", name)
		}
		comp, err := playback.NewCompositeTrack(name, c.buildTracks(engine, pc.Tracks), playback.CompositeOptions{
			SwitchFade: time.Duration(settings.SwitchFadeSec * float64(time.Second)),
		})
		if err != nil {
			return nil, errors.Wrapf(err, "comp track %q", name)
		}
		if err := player.Register(comp); err != nil {
			return nil, errors.Wrap(ErrConfig, err.Error())
		}
		zlog.Debug().Msgf("registered comp track %q with %d tracks", name, len(pc.Tracks))
	}

	for _, name := range sortedKeys(c.TrackLists) {
		pc := c.TrackLists[name]
		var settings sequenceSettings
		if err := decodeSettings(pc.Settings, &settings); err != nil {
			return nil, errors.Wrapf(err, "tracklist %q", name)
		}
		seq, err := playback.NewTrackSequence(name, c.buildTracks(engine, pc.Tracks), playback.SequenceOptions{
			Loop:    *settings.Loop,
			Shuffle: *settings.Shuffle,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "tracklist %q", name)
		}
		if err := player.Register(seq); err != nil {
			return nil, errors.Wrap(ErrConfig, err.Error())
		}
		zlog.Debug().Msgf("registered tracklist %q with %d tracks", name, len(pc.Tracks))
	}

	zlog.Info().Msgf("loaded %d playables", len(c.CompTracks)+len(c.TrackLists))
	return player, nil
}

// buildTracks resolves sound aliases and constructs the track objects.
func (c *Config) buildTracks(engine audio.Engine, defs TrackDefs) []*playback.Track {
	tracks := make([]*playback.Track, 0, len(defs))
	for _, def := range defs {
		path := def.Path
		if resolved, ok := c.Sounds[path]; ok {
			path = resolved
		}
		tracks = append(tracks, playback.NewTrack(engine, def.Name, path))
	}
	return tracks
}

// decodeSettings decodes a free-form settings map into a typed options
// struct, applying defaults and validating the result.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "settings validation failed")
	}
	return nil
}

func sortedKeys(m map[string]PlayableConfig) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
