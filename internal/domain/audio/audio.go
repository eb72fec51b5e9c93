// Package audio defines the capability contract for the sound backend.
package audio

import "time"

// Handle is an opaque reference to a loaded, playable sound.
// Implementations own the underlying decoder state; callers control
// playback and per-voice volume through this interface only.
type Handle interface {
	// Play starts (or restarts) playback from the beginning.
	// loops is the total number of play-throughs; a negative value
	// loops forever.
	Play(loops int)

	// Stop halts playback immediately. Safe to call when not playing.
	Stop()

	// SetVolume sets the voice volume. v is clamped to [0,1].
	SetVolume(v float64)

	// Volume returns the last applied voice volume in [0,1].
	Volume() float64

	// Length returns the natural duration of one play-through.
	Length() time.Duration
}

// Engine loads sounds from the filesystem.
// Load is expected to dedupe decodes of the same resolved path, so
// loading a path twice is cheap after the first call.
type Engine interface {
	Load(path string) (Handle, error)
}
