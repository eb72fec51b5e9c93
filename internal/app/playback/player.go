package playback

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bardbox/internal/domain/audio"
)

// DefaultFade is the blend duration for cross-playable transitions and
// stops when the operator does not request a specific one.
const DefaultFade = 2500 * time.Millisecond

// Player owns the registry of playables, the master volume, and the
// single currently audible playable. At most one playable is ever
// audible; cross-playable transitions run exactly one crossfade.
type Player struct {
	mu           sync.Mutex
	playables    map[string]Playable
	order        []string
	current      Playable
	masterVolume float64
}

// NewPlayer creates an empty player. masterVolume is clamped to [0,1].
func NewPlayer(masterVolume float64) *Player {
	return &Player{
		playables:    make(map[string]Playable),
		masterVolume: clampUnit(masterVolume),
	}
}

// Register adds a playable under its name. Names must be unique.
func (p *Player) Register(pl Playable) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.playables[pl.Name()]; ok {
		return errors.Newf("a playable named %q is already registered", pl.Name())
	}
	p.playables[pl.Name()] = pl
	p.order = append(p.order, pl.Name())
	return nil
}

// Play makes playableName audible, fronting trackName (or its default
// track). If another playable is audible this is a cross-playable
// transition: the target starts silently, then a single crossfade blends
// the outgoing and incoming tracks over fade, then the previous playable
// is stopped (it is already silent). Blocks for the fade duration.
// Returns ErrNoSuchPlayable or ErrNoSuchTrack on lookup failures, with
// playback state untouched.
func (p *Player) Play(playableName, trackName string, fade time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	target, ok := p.playables[playableName]
	if !ok {
		return errors.Wrapf(ErrNoSuchPlayable, "%q", playableName)
	}

	// Nothing audible: start directly at master volume.
	if p.current == nil {
		if err := target.Play(trackName, p.masterVolume); err != nil {
			return err
		}
		p.setCurrentLocked(target)
		return nil
	}

	// Re-playing the active playable is an in-playable switch, not a
	// cross-playable transition.
	if target == p.current {
		if err := target.Play(trackName, p.masterVolume); err != nil {
			return err
		}
		p.setCurrentLocked(target)
		return nil
	}

	prev := p.current
	zlog.Debug().Msgf("transitioning %q -> %q", prev.Name(), target.Name())

	// Start the target silently so exactly one audible crossfade
	// happens, rather than two independent fades racing.
	if err := target.Play(trackName, 0); err != nil {
		return err
	}

	var down, up audio.Handle
	if t := prev.CurrentTrack(); t != nil {
		down = t.Handle()
	}
	if t := target.CurrentTrack(); t != nil {
		up = t.Handle()
	} else {
		zlog.Warn().Msgf("playable %q produced no current track, fading %q out", target.Name(), prev.Name())
	}
	Fade(down, up, fade, p.masterVolume)

	// The previous playable is already silent; no second fade.
	prev.Stop(0)
	p.setCurrentLocked(target)
	return nil
}

// setCurrentLocked records the active playable, honoring the invariant
// that current always refers to a playable that is actually playing.
func (p *Player) setCurrentLocked(target Playable) {
	if target.IsPlaying() {
		p.current = target
	} else {
		p.current = nil
	}
}

// SwitchTrack retargets the active playable to trackName at master
// volume. Returns ErrNothingPlaying when no playable is active.
func (p *Player) SwitchTrack(trackName string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return errors.Wrap(ErrNothingPlaying, "unable to switch tracks")
	}
	return p.current.Play(trackName, p.masterVolume)
}

// Stop stops the active playable, fading out over fade. No-op when
// nothing is active.
func (p *Player) Stop(fade time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		zlog.Debug().Msg("nothing to stop, skipping")
		return
	}
	playable := p.current
	zlog.Debug().Msgf("stopping %q", playable.Name())
	playable.Stop(fade)
	p.current = nil
}

// SetVolume sets the master volume as a fraction in [0,1]. Out-of-range
// values are operator input, not programming errors: they are rejected
// with a logged warning and the prior volume is kept. When something is
// audible the new volume applies to its current track immediately;
// silenced composite siblings stay at zero until they become current.
func (p *Player) SetVolume(fraction float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if fraction < 0 || fraction > 1 {
		zlog.Warn().Msgf("volume must be between 0 and 1, keeping %v", p.masterVolume)
		return
	}
	p.masterVolume = fraction
	if p.current == nil {
		return
	}
	if t := p.current.CurrentTrack(); t != nil {
		if h := t.Handle(); h != nil {
			h.SetVolume(fraction)
		}
	}
}

// Volume returns the master volume fraction.
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.masterVolume
}

// ListPlayables lists every registered playable name in registration
// order.
func (p *Player) ListPlayables() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, len(p.order))
	copy(names, p.order)
	return names
}

// ListTracks lists the track names of the active playable. Returns
// ErrNothingPlaying when no playable is active.
func (p *Player) ListTracks() ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return nil, errors.Wrap(ErrNothingPlaying, "unable to list tracks")
	}
	return p.current.TrackNames(), nil
}

// CurrentTrack returns the name of the audible track. Returns
// ErrNothingPlaying when no playable is active.
func (p *Player) CurrentTrack() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return "", errors.Wrap(ErrNothingPlaying, "unable to fetch track")
	}
	if t := p.current.CurrentTrack(); t != nil {
		return t.Name(), nil
	}
	return "", nil
}

// CurrentPlayable returns the name of the active playable, or "" when
// nothing is playing.
func (p *Player) CurrentPlayable() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current == nil {
		return ""
	}
	return p.current.Name()
}
