package playback

import "github.com/cockroachdb/errors"

// Errors
var (
	ErrNoSuchPlayable = errors.New("no such playable")
	ErrNoSuchTrack    = errors.New("no such track")
	ErrNothingPlaying = errors.New("nothing is playing")
)
