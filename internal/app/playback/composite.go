package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"
)

// DefaultSwitchFade is the blend duration used when switching between
// member tracks of a composite, unless configured otherwise.
const DefaultSwitchFade = 2500 * time.Millisecond

// CompositeOptions configures a CompositeTrack.
type CompositeOptions struct {
	// SwitchFade is the blend duration for in-composite track switches.
	// Zero means DefaultSwitchFade.
	SwitchFade time.Duration
}

// CompositeTrack keeps several tracks loaded and sounding in lock-step,
// with exactly one audible at a time. Switching the audible track is a
// silent swap through the fader; no track is ever restarted, so the
// members stay perceptually in sync.
type CompositeTrack struct {
	name       string
	tracks     trackSet
	switchFade time.Duration

	mu      sync.Mutex
	playing bool
	current *Track
}

// NewCompositeTrack creates a composite and eagerly loads every member
// track. The eager load is required: the first Play starts all members
// simultaneously, and a synchronized start cannot tolerate one track
// stalling on disk I/O.
func NewCompositeTrack(name string, tracks []*Track, opts CompositeOptions) (*CompositeTrack, error) {
	ts, err := newTrackSet(tracks)
	if err != nil {
		return nil, errors.Wrapf(err, "composite %q", name)
	}
	for _, t := range ts.order {
		if err := t.Load(); err != nil {
			return nil, errors.Wrapf(err, "composite %q", name)
		}
	}
	fade := opts.SwitchFade
	if fade == 0 {
		fade = DefaultSwitchFade
	}
	return &CompositeTrack{
		name:       name,
		tracks:     ts,
		switchFade: fade,
	}, nil
}

// Name implements Playable.
func (c *CompositeTrack) Name() string {
	return c.name
}

// TrackNames implements Playable.
func (c *CompositeTrack) TrackNames() []string {
	return c.tracks.names()
}

// IsPlaying implements Playable.
func (c *CompositeTrack) IsPlaying() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playing
}

// CurrentTrack implements Playable.
func (c *CompositeTrack) CurrentTrack() *Track {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Play implements Playable. From stopped, every member track starts
// simultaneously with only the target audible, establishing lock-step
// timing. While playing, switching to another member blends the old and
// new audible tracks; switching to the already-current track is a no-op.
// Blocks for the blend duration on a switch.
func (c *CompositeTrack) Play(trackName string, volume float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	volume = clampUnit(volume)
	target, err := c.tracks.resolve(trackName, c.current)
	if err != nil {
		return err
	}

	if c.playing {
		if target == c.current {
			zlog.Debug().Msgf("composite %q: track %q is already playing, skipping", c.name, target.Name())
			return nil
		}
		zlog.Debug().Msgf("composite %q: switching %q -> %q", c.name, c.current.Name(), target.Name())
		Fade(c.current.Handle(), target.Handle(), c.switchFade, volume)
		c.current = target
		return nil
	}

	zlog.Debug().Msgf("composite %q: starting all tracks, fronting %q", c.name, target.Name())
	for _, t := range c.tracks.order {
		v := 0.0
		if t == target {
			v = volume
		}
		// Members loop forever; a composite plays until stopped.
		if err := t.Play(v, 0); err != nil {
			return errors.Wrapf(err, "composite %q", c.name)
		}
	}
	c.playing = true
	c.current = target
	return nil
}

// Stop implements Playable. Fades the audible track to silence over
// fade, then hard-stops every member. Idempotent.
func (c *CompositeTrack) Stop(fade time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.playing {
		zlog.Debug().Msgf("composite %q is already stopped", c.name)
		return
	}
	if c.current != nil {
		Fade(c.current.Handle(), nil, fade, 0)
	}
	for _, t := range c.tracks.order {
		if h := t.Handle(); h != nil {
			h.Stop()
		}
	}
	c.playing = false
}
