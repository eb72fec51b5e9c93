package sound

import (
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/speaker"
)

// Handle is one loaded sound. Playback state is guarded by the speaker
// lock, which also serializes against the mixer goroutine.
type Handle struct {
	rate beep.SampleRate
	buf  *beep.Buffer

	ctrl *beep.Ctrl
	vol  *effects.Volume
	gain float64
}

// Play implements audio.Handle. Restarts from the beginning, replacing
// any voice already sounding for this handle. loops is the total number
// of play-throughs; negative loops forever.
func (h *Handle) Play(loops int) {
	speaker.Lock()
	h.stopLocked()

	streamer := beep.Loop(loops, h.buf.Streamer(0, h.buf.Len()))
	h.vol = &effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   gainToVolume(h.gain),
		Silent:   h.gain == 0,
	}
	h.ctrl = &beep.Ctrl{Streamer: h.vol}
	ctrl := h.ctrl
	speaker.Unlock()

	speaker.Play(ctrl)
}

// Stop implements audio.Handle.
func (h *Handle) Stop() {
	speaker.Lock()
	h.stopLocked()
	speaker.Unlock()
}

// stopLocked detaches the voice; the mixer drops a Ctrl whose streamer
// is nil. Must hold the speaker lock.
func (h *Handle) stopLocked() {
	if h.ctrl != nil {
		h.ctrl.Streamer = nil
		h.ctrl = nil
		h.vol = nil
	}
}

// SetVolume implements audio.Handle. v is a linear fraction in [0,1],
// mapped onto the exponential scale beep's Volume effect expects.
func (h *Handle) SetVolume(v float64) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	speaker.Lock()
	h.gain = v
	if h.vol != nil {
		h.vol.Volume = gainToVolume(v)
		h.vol.Silent = v == 0
	}
	speaker.Unlock()
}

// Volume implements audio.Handle.
func (h *Handle) Volume() float64 {
	speaker.Lock()
	defer speaker.Unlock()
	return h.gain
}

// Length implements audio.Handle.
func (h *Handle) Length() time.Duration {
	return h.rate.D(h.buf.Len())
}

// gainToVolume converts a linear gain to the Volume effect's exponent
// (effective gain is Base^Volume, so 1.0 maps to 0).
func gainToVolume(gain float64) float64 {
	if gain <= 0 {
		return 0 // inaudible via Silent, exponent unused
	}
	return math.Log2(gain)
}
