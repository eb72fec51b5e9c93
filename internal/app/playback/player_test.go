package playback

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/bardbox/internal/domain/audio/audiotest"
)

func newTestPlayer(t *testing.T, engine *audiotest.FakeEngine, masterVolume float64) *Player {
	t.Helper()
	player := NewPlayer(masterVolume)
	require.NoError(t, player.Register(newTestComposite(t, engine, "Combat", "calm", "intense")))
	require.NoError(t, player.Register(newTestComposite(t, engine, "Explore", "day", "night")))
	return player
}

func TestPlayer_Register(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)

	assert.Equal(t, []string{"Combat", "Explore"}, player.ListPlayables())

	err := player.Register(newTestComposite(t, engine, "Combat", "other"))
	assert.Error(t, err)
}

func TestPlayer_PlayStartsDefaultTrackAtMasterVolume(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 0.5)

	require.NoError(t, player.Play("Combat", "", 0))

	assert.Equal(t, "Combat", player.CurrentPlayable())
	track, err := player.CurrentTrack()
	require.NoError(t, err)
	assert.Equal(t, "calm", track)
	assert.Equal(t, 0.5, engine.Handle("calm.ogg").Volume())
	assert.Equal(t, 0.0, engine.Handle("intense.ogg").Volume())
}

func TestPlayer_PlayUnknownPlayable(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)
	require.NoError(t, player.Play("Combat", "", 0))

	err := player.Play("Dungeon", "", 0)
	require.ErrorIs(t, err, ErrNoSuchPlayable)

	// Lookup failure leaves playback untouched.
	assert.Equal(t, "Combat", player.CurrentPlayable())
	assert.Equal(t, 1.0, engine.Handle("calm.ogg").Volume())
}

func TestPlayer_PlayOnActivePlayableSwitchesTrack(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 0.8)
	require.NoError(t, player.Play("Combat", "", 0))

	require.NoError(t, player.Play("Combat", "intense", time.Millisecond))

	assert.Equal(t, "Combat", player.CurrentPlayable())
	track, err := player.CurrentTrack()
	require.NoError(t, err)
	assert.Equal(t, "intense", track)
	assert.Equal(t, 0.0, engine.Handle("calm.ogg").Volume())
	assert.Equal(t, 0.8, engine.Handle("intense.ogg").Volume())
}

func TestPlayer_CrossPlayableTransition(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 0.9)
	require.NoError(t, player.Play("Combat", "intense", 0))

	require.NoError(t, player.Play("Explore", "", time.Millisecond))

	// Exactly one crossfade: Combat's audible track reached zero, the
	// incoming default track reached master volume, and Combat was
	// stopped entirely afterwards.
	assert.Equal(t, "Explore", player.CurrentPlayable())
	track, err := player.CurrentTrack()
	require.NoError(t, err)
	assert.Equal(t, "day", track)
	assert.Equal(t, 0.9, engine.Handle("day.ogg").Volume())
	assert.Equal(t, 0.0, engine.Handle("intense.ogg").Volume())
	for _, path := range []string{"calm.ogg", "intense.ogg"} {
		assert.False(t, engine.Handle(path).Playing(), path)
	}
	assert.True(t, engine.Handle("day.ogg").Playing())
	assert.True(t, engine.Handle("night.ogg").Playing())
}

func TestPlayer_CrossTransitionLookupFailureKeepsPrevious(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)
	require.NoError(t, player.Play("Combat", "", 0))

	err := player.Play("Explore", "bogus", time.Millisecond)
	require.ErrorIs(t, err, ErrNoSuchTrack)

	assert.Equal(t, "Combat", player.CurrentPlayable())
	assert.True(t, engine.Handle("calm.ogg").Playing())
	assert.Equal(t, 1.0, engine.Handle("calm.ogg").Volume())
	assert.False(t, engine.Handle("day.ogg").Playing())
}

func TestPlayer_SwitchTrack(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)

	t.Run("fails while nothing is playing", func(t *testing.T) {
		err := player.SwitchTrack("intense")
		assert.ErrorIs(t, err, ErrNothingPlaying)
	})

	t.Run("delegates to the active playable", func(t *testing.T) {
		require.NoError(t, player.Play("Combat", "", 0))
		require.NoError(t, player.SwitchTrack("intense"))
		track, err := player.CurrentTrack()
		require.NoError(t, err)
		assert.Equal(t, "intense", track)
	})

	t.Run("unknown track propagates", func(t *testing.T) {
		err := player.SwitchTrack("bogus")
		assert.ErrorIs(t, err, ErrNoSuchTrack)
	})
}

func TestPlayer_Stop(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)

	// Stopping with nothing active is a no-op.
	player.Stop(0)
	assert.Equal(t, "", player.CurrentPlayable())

	require.NoError(t, player.Play("Combat", "", 0))
	player.Stop(0)

	assert.Equal(t, "", player.CurrentPlayable())
	_, err := player.CurrentTrack()
	assert.ErrorIs(t, err, ErrNothingPlaying)
	assert.False(t, engine.Handle("calm.ogg").Playing())
}

func TestPlayer_SetVolume(t *testing.T) {
	tests := []struct {
		name     string
		initial  float64
		set      float64
		expected float64
	}{
		{name: "valid volume is applied", initial: 1, set: 0.5, expected: 0.5},
		{name: "zero is a valid volume", initial: 1, set: 0, expected: 0},
		{name: "negative volume is rejected", initial: 0.7, set: -0.1, expected: 0.7},
		{name: "volume above one is rejected", initial: 0.7, set: 1.2, expected: 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := audiotest.NewFakeEngine()
			player := newTestPlayer(t, engine, tt.initial)

			player.SetVolume(tt.set)
			assert.Equal(t, tt.expected, player.Volume())
		})
	}
}

func TestPlayer_SetVolumeAppliesToAudibleTrackOnly(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)
	require.NoError(t, player.Play("Combat", "", 0))

	player.SetVolume(0.3)

	assert.Equal(t, 0.3, engine.Handle("calm.ogg").Volume())
	// Silenced siblings stay at zero until they become current.
	assert.Equal(t, 0.0, engine.Handle("intense.ogg").Volume())
}

func TestPlayer_ListTracks(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 1)

	_, err := player.ListTracks()
	assert.ErrorIs(t, err, ErrNothingPlaying)

	require.NoError(t, player.Play("Explore", "", 0))
	tracks, err := player.ListTracks()
	require.NoError(t, err)
	assert.Equal(t, []string{"day", "night"}, tracks)
}

func TestPlayer_CrossTransitionIntoSequence(t *testing.T) {
	engine := audiotest.NewFakeEngine()
	player := newTestPlayer(t, engine, 0.6)
	engine.SetLength("song.ogg", time.Minute)
	seq, err := NewTrackSequence("Tavern", []*Track{NewTrack(engine, "song", "song.ogg")}, SequenceOptions{Loop: true})
	require.NoError(t, err)
	require.NoError(t, player.Register(seq))

	require.NoError(t, player.Play("Combat", "", 0))
	require.NoError(t, player.Play("Tavern", "", time.Millisecond))

	assert.Equal(t, "Tavern", player.CurrentPlayable())
	assert.Equal(t, 0.6, engine.Handle("song.ogg").Volume())
	assert.False(t, engine.Handle("calm.ogg").Playing())

	player.Stop(0)
	assert.False(t, seq.IsPlaying())
}
