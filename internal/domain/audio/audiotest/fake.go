// Package audiotest provides an in-memory audio engine for tests.
package audiotest

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/osa030/bardbox/internal/domain/audio"
)

// FakeEngine is an audio.Engine that hands out FakeHandles without
// touching the filesystem. Paths registered via SetLength get that
// length; unknown paths succeed with a zero length unless FailAll
// or a per-path error is set.
type FakeEngine struct {
	mu      sync.Mutex
	handles map[string]*FakeHandle
	lengths map[string]time.Duration
	errs    map[string]error
	loads   []string
}

// NewFakeEngine creates an empty fake engine.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		handles: make(map[string]*FakeHandle),
		lengths: make(map[string]time.Duration),
		errs:    make(map[string]error),
	}
}

// SetLength fixes the reported track length for a path.
func (e *FakeEngine) SetLength(path string, d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lengths[path] = d
}

// FailPath makes Load return an error for the given path.
func (e *FakeEngine) FailPath(path string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs[path] = err
}

// Load implements audio.Engine. Repeated loads of the same path return
// the same handle, matching the caching contract of real engines.
func (e *FakeEngine) Load(path string) (audio.Handle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.loads = append(e.loads, path)
	if err, ok := e.errs[path]; ok {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	if h, ok := e.handles[path]; ok {
		return h, nil
	}
	h := &FakeHandle{path: path, length: e.lengths[path]}
	e.handles[path] = h
	return h, nil
}

// Loads returns every path passed to Load, in order.
func (e *FakeEngine) Loads() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, len(e.loads))
	copy(out, e.loads)
	return out
}

// Handle returns the handle previously created for path, or nil.
func (e *FakeEngine) Handle(path string) *FakeHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handles[path]
}

// FakeHandle records playback calls for assertions.
type FakeHandle struct {
	mu      sync.Mutex
	path    string
	length  time.Duration
	volume  float64
	playing bool

	PlayCalls []int // loops argument of each Play
	StopCalls int
}

// Play implements audio.Handle.
func (h *FakeHandle) Play(loops int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	h.PlayCalls = append(h.PlayCalls, loops)
}

// Stop implements audio.Handle.
func (h *FakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.StopCalls++
}

// SetVolume implements audio.Handle.
func (h *FakeHandle) SetVolume(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	h.volume = v
}

// Volume implements audio.Handle.
func (h *FakeHandle) Volume() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.volume
}

// Length implements audio.Handle.
func (h *FakeHandle) Length() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.length
}

// Playing reports whether the handle is between a Play and a Stop.
func (h *FakeHandle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}
