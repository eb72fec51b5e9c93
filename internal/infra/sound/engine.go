// Package sound implements the audio engine on top of gopxl/beep,
// mixing every voice through a single speaker instance.
package sound

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/vorbis"
	"github.com/gopxl/beep/v2/wav"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/bardbox/internal/domain/audio"
)

// ErrUnsupportedFormat is returned for file extensions no decoder
// handles.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// DefaultSampleRate is the mixer output rate; decoded sounds are
// resampled to it at load time.
const DefaultSampleRate = 44100

// Engine decodes sound files into memory once and keeps them for the
// life of the process. Handles are cached by resolved absolute path, so
// multiple tracks referencing the same file share one voice.
type Engine struct {
	rate beep.SampleRate

	mu      sync.Mutex
	handles map[string]*Handle
}

// NewEngine initializes the speaker and returns an engine mixing at the
// given sample rate (0 means DefaultSampleRate).
func NewEngine(sampleRate int) (*Engine, error) {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return nil, errors.Wrap(err, "failed to initialize speaker")
	}
	return &Engine{
		rate:    rate,
		handles: make(map[string]*Handle),
	}, nil
}

// Load implements audio.Engine. The first load of a path decodes and
// buffers the whole file; later loads of the same resolved path return
// the cached handle.
func (e *Engine) Load(path string) (audio.Handle, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if h, ok := e.handles[resolved]; ok {
		return h, nil
	}

	buf, err := e.decodeFile(resolved)
	if err != nil {
		return nil, err
	}
	h := &Handle{rate: e.rate, buf: buf}
	e.handles[resolved] = h
	zlog.Debug().Msgf("sound: buffered %s (%v)", resolved, h.Length())
	return h, nil
}

// Close stops all playback and shuts the speaker down. The engine is
// unusable afterwards; meant for process teardown only.
func (e *Engine) Close() {
	e.mu.Lock()
	for _, h := range e.handles {
		h.Stop()
	}
	e.handles = make(map[string]*Handle)
	e.mu.Unlock()
	speaker.Close()
}

func (e *Engine) decodeFile(path string) (*beep.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	case ".flac":
		streamer, format, err = flac.Decode(f)
	case ".ogg", ".oga":
		streamer, format, err = vorbis.Decode(f)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", filepath.Ext(path))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	defer streamer.Close()

	out := beep.Format{SampleRate: e.rate, NumChannels: 2, Precision: 2}
	buf := beep.NewBuffer(out)
	if format.SampleRate != e.rate {
		buf.Append(beep.Resample(4, format.SampleRate, e.rate, streamer))
	} else {
		buf.Append(streamer)
	}
	return buf, nil
}

// resolvePath expands a leading ~ and absolutizes, producing the cache
// key for a source path.
func resolvePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return filepath.Abs(path)
}
