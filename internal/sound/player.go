// Package sound provides best-effort tone feedback for incoming
// notifications. Playback must never fail loudly: a missing device,
// a closed terminal, or any write error is swallowed.
package sound

import (
	"io"
	"os"
	"time"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// tone describes a feedback pattern: how many beeps and the gap between
// them. The terminal bell carries no pitch, so the patterns stand in for
// the bright/low tones of the web dashboard.
type tone struct {
	beeps int
	gap   time.Duration
}

// Beeper is the playback device boundary. Implementations emit a single
// beep and may fail; the player ignores the failure.
type Beeper interface {
	Beep() error
}

// terminalBeeper rings the terminal bell by writing BEL.
type terminalBeeper struct {
	w io.Writer
}

func (b terminalBeeper) Beep() error {
	_, err := b.w.Write([]byte{'\a'})
	return err
}

// Player maps notification types to tones. The tone cache is built once
// at construction and owned by the player for the life of the process;
// there is no package-level mutable state.
type Player struct {
	device   Beeper
	tones    map[model.NotificationType]tone
	fallback tone
	enabled  bool
}

// NewPlayer creates a player writing to the terminal bell. Disabled
// players accept Play calls and do nothing.
func NewPlayer(enabled bool) *Player {
	return NewPlayerWithDevice(terminalBeeper{w: os.Stdout}, enabled)
}

// NewPlayerWithDevice creates a player with an explicit playback device.
// A nil device yields a silent player.
func NewPlayerWithDevice(device Beeper, enabled bool) *Player {
	return &Player{
		device: device,
		tones: map[model.NotificationType]tone{
			// Bright ascending pattern for fresh orders.
			model.TypeOrderNew: {beeps: 2, gap: 80 * time.Millisecond},
			// Single low warning for abandoned carts.
			model.TypeCartAbandon: {beeps: 1},
		},
		fallback: tone{beeps: 1},
		enabled: enabled,
	}
}

// Play emits the feedback pattern for the given notification type.
// Fire-and-forget: it never blocks the caller, never returns an error,
// and never panics past its boundary. Two events in the same tick both
// attempt to play independently.
func (p *Player) Play(t model.NotificationType) {
	if p == nil || !p.enabled || p.device == nil {
		return
	}

	pattern, ok := p.tones[t]
	if !ok {
		pattern = p.fallback
	}

	go func() {
		defer func() {
			// A broken device must not take the program down.
			_ = recover()
		}()

		for i := 0; i < pattern.beeps; i++ {
			if i > 0 && pattern.gap > 0 {
				time.Sleep(pattern.gap)
			}
			if err := p.device.Beep(); err != nil {
				return
			}
		}
	}()
}
