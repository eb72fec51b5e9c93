package playback

import (
	"time"

	"github.com/cockroachdb/errors"
)

// Playable is a named unit of music a Player can make audible: either a
// CompositeTrack (simultaneous tracks, silent swap) or a TrackSequence
// (one track at a time on a background worker).
type Playable interface {
	// Name returns the playable's registered name.
	Name() string

	// Play starts or retargets playback so trackName is audible at the
	// given volume. An empty trackName picks the first registered track,
	// or keeps the currently playing one if something is already audible.
	// Returns ErrNoSuchTrack if trackName is set but unknown; in that
	// case no playback state changes.
	Play(trackName string, volume float64) error

	// Stop silences and halts the playable, fading the audible track out
	// over fade. Releases any worker resources. Idempotent.
	Stop(fade time.Duration)

	// IsPlaying reports whether the playable is currently audible (or,
	// for a sequence, has a live worker).
	IsPlaying() bool

	// CurrentTrack returns the track currently (or most recently)
	// fronted by this playable, or nil if none yet.
	CurrentTrack() *Track

	// TrackNames lists the member track names in registration order.
	TrackNames() []string
}

// trackSet holds a playable's member tracks, preserving registration
// order so "first track" is well defined.
type trackSet struct {
	order  []*Track
	byName map[string]*Track
}

func newTrackSet(tracks []*Track) (trackSet, error) {
	ts := trackSet{byName: make(map[string]*Track, len(tracks))}
	for _, t := range tracks {
		if _, ok := ts.byName[t.Name()]; ok {
			return trackSet{}, errors.Newf("duplicate track name %q", t.Name())
		}
		ts.byName[t.Name()] = t
		ts.order = append(ts.order, t)
	}
	if len(ts.order) == 0 {
		return trackSet{}, errors.New("a playable needs at least one track")
	}
	return ts, nil
}

func (ts trackSet) first() *Track {
	return ts.order[0]
}

func (ts trackSet) names() []string {
	names := make([]string, len(ts.order))
	for i, t := range ts.order {
		names[i] = t.Name()
	}
	return names
}

// resolve maps a requested track name to a member track. An empty name
// falls back to current when set, else the first registered track.
func (ts trackSet) resolve(name string, current *Track) (*Track, error) {
	if name == "" {
		if current != nil {
			return current, nil
		}
		return ts.first(), nil
	}
	t, ok := ts.byName[name]
	if !ok {
		return nil, errors.Wrapf(ErrNoSuchTrack, "%q", name)
	}
	return t, nil
}
