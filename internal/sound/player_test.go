package sound

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/galuhmediautama-bit/order-management-dashboard-sub003/internal/model"
)

// countingBeeper records beeps; optionally fails or panics.
type countingBeeper struct {
	beeps  atomic.Int32
	err    error
	panics bool
}

func (b *countingBeeper) Beep() error {
	b.beeps.Add(1)
	if b.panics {
		panic("device gone")
	}
	return b.err
}

func waitForBeeps(t *testing.T, b *countingBeeper, want int32) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if b.beeps.Load() >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d beeps, got %d", want, b.beeps.Load())
}

func TestPlayEmitsPatternForKnownType(t *testing.T) {
	device := &countingBeeper{}
	p := NewPlayerWithDevice(device, true)

	p.Play(model.TypeOrderNew)
	waitForBeeps(t, device, 2)
}

func TestPlayFallsBackForUnknownType(t *testing.T) {
	device := &countingBeeper{}
	p := NewPlayerWithDevice(device, true)

	p.Play(model.TypeSystemAlert)
	waitForBeeps(t, device, 1)
}

func TestPlayDisabledDoesNothing(t *testing.T) {
	device := &countingBeeper{}
	p := NewPlayerWithDevice(device, false)

	p.Play(model.TypeOrderNew)
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, device.beeps.Load())
}

func TestPlayNilPlayerAndNilDeviceAreSafe(t *testing.T) {
	var p *Player
	p.Play(model.TypeOrderNew)

	p = NewPlayerWithDevice(nil, true)
	p.Play(model.TypeOrderNew)
}

func TestPlaySwallowsDeviceErrors(t *testing.T) {
	device := &countingBeeper{err: errors.New("write: broken pipe")}
	p := NewPlayerWithDevice(device, true)

	p.Play(model.TypeOrderNew)
	// First beep fails, pattern aborts, nothing escapes.
	waitForBeeps(t, device, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), device.beeps.Load())
}

func TestPlaySurvivesPanickingDevice(t *testing.T) {
	device := &countingBeeper{panics: true}
	p := NewPlayerWithDevice(device, true)

	p.Play(model.TypeCartAbandon)
	waitForBeeps(t, device, 1)
	// Give the recovering goroutine time to unwind; the test passing at
	// all proves the panic stayed contained.
	time.Sleep(50 * time.Millisecond)
}
