package playback

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// SequenceOptions configures a TrackSequence.
type SequenceOptions struct {
	// Loop repeats the whole pass indefinitely.
	Loop bool
	// Shuffle randomizes the pass order once per run.
	Shuffle bool
}

// stopRequest asks a running worker to wind down, fading the currently
// sounding track out over Fade before exiting.
type stopRequest struct {
	fade time.Duration
}

// TrackSequence plays its member tracks one at a time on a background
// worker goroutine, in registration or shuffled order, optionally
// looping. Stop cancels the worker cooperatively and waits for it to
// exit, so callers never observe overlapping runs.
type TrackSequence struct {
	name   string
	tracks trackSet
	opts   SequenceOptions

	mu      sync.Mutex
	current *Track
	stopCh  chan stopRequest // 1-buffered; nil when no worker
	done    chan struct{}    // closed on worker exit; nil when no worker
}

// NewTrackSequence creates a sequence. Tracks load lazily, each on its
// first turn in a pass.
func NewTrackSequence(name string, tracks []*Track, opts SequenceOptions) (*TrackSequence, error) {
	ts, err := newTrackSet(tracks)
	if err != nil {
		return nil, errors.Wrapf(err, "sequence %q", name)
	}
	return &TrackSequence{
		name:   name,
		tracks: ts,
		opts:   opts,
	}, nil
}

// Name implements Playable.
func (s *TrackSequence) Name() string {
	return s.name
}

// TrackNames implements Playable.
func (s *TrackSequence) TrackNames() []string {
	return s.tracks.names()
}

// IsPlaying implements Playable. True exactly while a worker is live.
func (s *TrackSequence) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

// CurrentTrack implements Playable.
func (s *TrackSequence) CurrentTrack() *Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Play implements Playable. From stopped, spawns the worker and returns
// once the first track is sounding (or the worker bailed out). While a
// worker is live, requesting a different track is unsupported and logs
// a warning; requesting the same track is a no-op.
func (s *TrackSequence) Play(trackName string, volume float64) error {
	s.mu.Lock()

	if s.done != nil {
		current := s.current
		s.mu.Unlock()
		if trackName != "" && (current == nil || trackName != current.Name()) {
			zlog.Warn().Msgf("sequence %q: switching tracks of a running sequence is not supported", s.name)
		} else {
			zlog.Info().Msgf("sequence %q is already playing", s.name)
		}
		return nil
	}

	stopCh := make(chan stopRequest, 1)
	done := make(chan struct{})
	ready := make(chan struct{})
	s.stopCh = stopCh
	s.done = done
	s.mu.Unlock()

	runID := uuid.New().String()
	zlog.Debug().Msgf("sequence %q: starting worker run_id=%s start=%q loop=%t shuffle=%t",
		s.name, runID, trackName, s.opts.Loop, s.opts.Shuffle)
	go s.run(runID, trackName, clampUnit(volume), stopCh, done, ready)

	// Wait until the first track is audible so callers can rely on
	// CurrentTrack after Play returns. A worker that exits early (bad
	// start track) closes done instead.
	select {
	case <-ready:
	case <-done:
	}
	return nil
}

// Stop implements Playable. Signals the worker to fade out over fade
// and blocks until it has fully exited. Idempotent: stopping an already
// stopped sequence, or stopping twice before the worker observes the
// first signal, is a safe no-op.
func (s *TrackSequence) Stop(fade time.Duration) {
	s.mu.Lock()
	if s.done == nil {
		s.mu.Unlock()
		zlog.Debug().Msgf("sequence %q is already stopped", s.name)
		return
	}
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()

	zlog.Info().Msgf("stopping sequence %q", s.name)
	select {
	case stopCh <- stopRequest{fade: fade}:
	default:
		// A stop is already pending; the worker will observe it.
	}
	<-done
	zlog.Debug().Msgf("sequence %q: worker exited", s.name)
}

// run is the worker loop. It owns playback for the duration of one run:
// one pass over the (possibly shuffled) track list, repeated forever
// when looping, until a pending stop request is observed.
func (s *TrackSequence) run(runID, startTrack string, volume float64, stopCh chan stopRequest, done chan struct{}, ready chan struct{}) {
	defer close(done)
	defer s.clearWorker()

	// Work on a copy so shuffling never disturbs registration order.
	songs := make([]*Track, len(s.tracks.order))
	copy(songs, s.tracks.order)
	if s.opts.Shuffle {
		rand.Shuffle(len(songs), func(i, j int) {
			songs[i], songs[j] = songs[j], songs[i]
		})
	}

	if startTrack != "" {
		idx := -1
		for i, t := range songs {
			if t.Name() == startTrack {
				idx = i
				break
			}
		}
		if idx < 0 {
			zlog.Error().Msgf("sequence %q has no track named %q, run_id=%s", s.name, startTrack, runID)
			return
		}
		// Rotate the start track to the front, keeping the relative
		// order of the rest of the pass.
		rotated := make([]*Track, 0, len(songs))
		rotated = append(rotated, songs[idx])
		rotated = append(rotated, songs[:idx]...)
		rotated = append(rotated, songs[idx+1:]...)
		songs = rotated
	}

	started := false
	for pass := 0; pass == 0 || s.opts.Loop; pass++ {
		played := false
		for _, song := range songs {
			if err := song.Play(volume, 1); err != nil {
				zlog.Error().Msgf("sequence %q: skipping track %q: %v, run_id=%s", s.name, song.Name(), err, runID)
				// Nothing is sounding, but a pending stop must still
				// cancel a degraded run.
				select {
				case <-stopCh:
					return
				default:
				}
				continue
			}
			played = true
			s.setCurrent(song)
			if !started {
				started = true
				close(ready)
			}
			zlog.Debug().Msgf("sequence %q: playing %q for %v, run_id=%s", s.name, song.Name(), song.Handle().Length(), runID)

			select {
			case <-time.After(song.Handle().Length()):
				song.Handle().Stop()
			case req := <-stopCh:
				Fade(song.Handle(), nil, req.fade, 0)
				song.Handle().Stop()
				return
			}
		}
		if !played {
			zlog.Error().Msgf("sequence %q: no track in the pass could be played, giving up, run_id=%s", s.name, runID)
			return
		}
	}
	zlog.Info().Msgf("sequence %q finished, run_id=%s", s.name, runID)
}

func (s *TrackSequence) setCurrent(t *Track) {
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()
}

func (s *TrackSequence) clearWorker() {
	s.mu.Lock()
	s.stopCh = nil
	s.done = nil
	s.mu.Unlock()
}
