package vm

import (
	"math/rand/v2"
	"time"
)

// TimerPeriod is the interval between delay/sound timer decrements.
const TimerPeriod = time.Second / 60

// Clock supplies the wall-clock time that gates TimerPeriod.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Random is the source of CXNN random bytes. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

// NewRandom returns a PCG source seeded with seed, or with the current time
// when seed is zero.
func NewRandom(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type timers struct {
	clock Clock
	last  time.Time // zero until the first tick after reset

	delay uint8
	sound uint8
}

func (t *timers) reset() {
	t.last = time.Time{}
	t.delay = 0
	t.sound = 0
}

// tick decrements both timers once TimerPeriod has elapsed since the last
// decrement. The first call only starts the measurement.
func (t *timers) tick() {
	now := t.clock.Now()
	if t.last.IsZero() {
		t.last = now
		return
	}

	if now.Sub(t.last) < TimerPeriod {
		return
	}

	if t.delay > 0 {
		t.delay--
	}
	if t.sound > 0 {
		t.sound--
	}
	t.last = now
}
