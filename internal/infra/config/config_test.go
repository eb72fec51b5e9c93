package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bardbox/internal/domain/audio/audiotest"
)

const sampleConfig = `
log:
  level: debug
master_volume: 75
sounds:
  battle: /music/battle_loop.ogg
comp_tracks:
  Combat:
    tracks:
      calm: /music/combat_calm.ogg
      intense: battle
    settings:
      switch_fade_sec: 1.5
tracklists:
  Tavern:
    tracks:
      lute: /music/lute.ogg
      fiddle: /music/fiddle.ogg
      drums: /music/drums.ogg
    settings:
      loop: false
      shuffle: false
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 0.75, cfg.MasterVolumeFraction())
	assert.Equal(t, "/music/battle_loop.ogg", cfg.Sounds["battle"])

	// Track order follows the YAML document, so the default track is
	// well defined.
	require.Contains(t, cfg.TrackLists, "Tavern")
	tracks := cfg.TrackLists["Tavern"].Tracks
	require.Len(t, tracks, 3)
	assert.Equal(t, "lute", tracks[0].Name)
	assert.Equal(t, "fiddle", tracks[1].Name)
	assert.Equal(t, "drums", tracks[2].Name)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "malformed yaml",
			yaml: "comp_tracks: [",
		},
		{
			name: "no playables",
			yaml: "master_volume: 50",
		},
		{
			name: "playable without tracks",
			yaml: "comp_tracks:\n  Combat:\n    settings: {}\n",
		},
		{
			name: "tracks not a mapping",
			yaml: "comp_tracks:\n  Combat:\n    tracks: [a, b]\n",
		},
		{
			name: "duplicate playable name across sections",
			yaml: "comp_tracks:\n  Combat:\n    tracks:\n      a: /a.ogg\ntracklists:\n  Combat:\n    tracks:\n      b: /b.ogg\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestParse_MasterVolume(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		expected float64
	}{
		{name: "unset defaults to full", yaml: "comp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n", expected: 1},
		{name: "fifty percent", yaml: "master_volume: 50\ncomp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n", expected: 0.5},
		{name: "zero is honored", yaml: "master_volume: 0\ncomp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n", expected: 0},
		{name: "above range falls back to full", yaml: "master_volume: 150\ncomp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n", expected: 1},
		{name: "below range falls back to full", yaml: "master_volume: -5\ncomp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, cfg.MasterVolumeFraction())
		})
	}
}

func TestBuildPlayer(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	engine := audiotest.NewFakeEngine()
	player, err := cfg.BuildPlayer(engine)
	require.NoError(t, err)

	assert.Equal(t, []string{"Combat", "Tavern"}, player.ListPlayables())
	assert.Equal(t, 0.75, player.Volume())

	// Composite members are loaded eagerly, with the alias resolved to
	// its path; the tracklist loads lazily so nothing else was touched.
	assert.ElementsMatch(t, []string{"/music/combat_calm.ogg", "/music/battle_loop.ogg"}, engine.Loads())
}

func TestBuildPlayer_SettingsErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "negative switch fade",
			yaml: "comp_tracks:\n  A:\n    tracks:\n      a: /a.ogg\n    settings:\n      switch_fade_sec: -1\n",
		},
		{
			name: "non-boolean loop",
			yaml: "tracklists:\n  A:\n    tracks:\n      a: /a.ogg\n    settings:\n      loop: sometimes\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.yaml))
			require.NoError(t, err)
			_, err = cfg.BuildPlayer(audiotest.NewFakeEngine())
			assert.Error(t, err)
		})
	}
}

func TestBuildPlayer_UnreadableCompositeSound(t *testing.T) {
	cfg, err := Parse([]byte("comp_tracks:\n  A:\n    tracks:\n      a: /missing.ogg\n"))
	require.NoError(t, err)

	engine := audiotest.NewFakeEngine()
	engine.FailPath("/missing.ogg", assert.AnError)
	_, err = cfg.BuildPlayer(engine)
	assert.Error(t, err)
}
