// Package playback provides the playback state machine: tracks, the
// crossfade engine, the two playable kinds and the orchestrating Player.
package playback

import (
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bardbox/internal/domain/audio"
)

// Track is a single named sound resource. The underlying handle is
// bound lazily on first Load/Play and cached for the life of the track;
// the engine dedupes decodes of the same file across tracks.
type Track struct {
	name   string
	path   string
	engine audio.Engine

	mu     sync.Mutex
	handle audio.Handle
}

// NewTrack creates a track for the given source path. No I/O happens
// until Load or Play.
func NewTrack(engine audio.Engine, name, path string) *Track {
	return &Track{
		name:   name,
		path:   path,
		engine: engine,
	}
}

// Name returns the track name.
func (t *Track) Name() string {
	return t.name
}

// Path returns the source path the track was configured with.
func (t *Track) Path() string {
	return t.path
}

// Load binds the sound handle. Idempotent; subsequent calls are cheap.
func (t *Track) Load() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked()
}

func (t *Track) loadLocked() error {
	if t.handle != nil {
		return nil
	}
	zlog.Debug().Msgf("loading sound for track %q from %s", t.name, t.path)
	h, err := t.engine.Load(t.path)
	if err != nil {
		return errors.Wrapf(err, "failed to load track %q", t.name)
	}
	t.handle = h
	return nil
}

// Play ensures the track is loaded and starts playback at the given
// volume. loops is the total number of play-throughs; 0 loops forever.
func (t *Track) Play(initialVolume float64, loops int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.loadLocked(); err != nil {
		return err
	}
	t.handle.SetVolume(clampUnit(initialVolume))
	// The engine convention is "negative loops forever"; the public
	// convention here is "zero loops forever".
	if loops == 0 {
		loops = -1
	}
	t.handle.Play(loops)
	return nil
}

// Handle returns the bound sound handle, or nil if the track has not
// been loaded yet.
func (t *Track) Handle() audio.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
