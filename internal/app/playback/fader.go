package playback

import (
	"time"

	"github.com/osa030/bardbox/internal/domain/audio"
)

// fadeStep is the interpolation interval for volume ramps. Small enough
// to be perceptually smooth, large enough not to peg a core.
const fadeStep = 10 * time.Millisecond

// Fade linearly ramps down's volume from its current value to zero and
// up's volume from zero to target over the given duration. Either handle
// may be nil (nil down fades in from silence, nil up fades out to it).
// The interpolation is sampled against the monotonic clock, so a
// scheduling hitch costs smoothness but never stretches the total
// duration. A non-positive duration jumps straight to the end state;
// positive durations shorter than the interpolation step complete on
// the first tick with only the end state applied.
//
// Fade blocks the calling goroutine for the full duration. The end state
// (down at zero, up at exactly target) always holds on return.
func Fade(down, up audio.Handle, duration time.Duration, target float64) {
	target = clampUnit(target)

	if duration > 0 && (down != nil || up != nil) {
		initial := 0.0
		if down != nil {
			initial = down.Volume()
		}
		start := time.Now()
		ticker := time.NewTicker(fadeStep)
		for {
			<-ticker.C
			frac := float64(time.Since(start)) / float64(duration)
			if frac >= 1 {
				break
			}
			if down != nil {
				down.SetVolume((1 - frac) * initial)
			}
			if up != nil {
				up.SetVolume(frac * target)
			}
		}
		ticker.Stop()
	}

	if down != nil {
		down.SetVolume(0)
	}
	if up != nil {
		up.SetVolume(target)
	}
}
