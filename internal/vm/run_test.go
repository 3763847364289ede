package vm

import (
	"errors"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

type fakeHAL struct {
	clock *fakeClock
	reads int

	quitAfter int
	onRead    func(n int, keyDown, keyUp func(Key))

	draws int
	beeps int
	waits int
}

func (h *fakeHAL) ReadInput(keyDown func(Key), keyUp func(Key)) error {
	h.reads++
	if h.onRead != nil {
		h.onRead(h.reads, keyDown, keyUp)
	}
	if h.reads >= h.quitAfter {
		return ErrQuit
	}
	return nil
}

func (h *fakeHAL) Draw(gfx []uint8) error {
	h.draws++
	return nil
}

func (h *fakeHAL) Beep() error {
	h.beeps++
	return nil
}

func (h *fakeHAL) WaitForNextFrame() error {
	h.waits++
	h.clock.Advance(20 * time.Millisecond)
	return nil
}

func TestRunDrawsAndBeeps(t *testing.T) {
	vm, clock := newTestVM(t,
		0x6003, // 0x200: mov v0, 3
		0xF018, // 0x202: ssound v0
		0x00E0, // 0x204: cls
		0x1206, // 0x206: jmp 0x206
	)
	hal := &fakeHAL{clock: clock, quitAfter: 8}

	err := vm.Run(hal)
	assert.True(t, errors.Is(err, ErrQuit))

	// initial frame after load, then cls
	assert.Equal(t, 2, hal.draws)
	assert.Equal(t, 1, hal.beeps)
	assert.Equal(t, 7, hal.waits)
}

func TestRunDeliversKeys(t *testing.T) {
	vm, clock := newTestVM(t,
		0xF10A, // 0x200: key v1
		0x1202, // 0x202: jmp 0x202
	)
	hal := &fakeHAL{
		clock:     clock,
		quitAfter: 6,
		onRead: func(n int, keyDown, keyUp func(Key)) {
			if n == 3 {
				keyDown(Key7)
			}
		},
	}

	err := vm.Run(hal)
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, uint8(7), vm.registers[1])
	assert.False(t, vm.Waiting())
	assert.Equal(t, uint16(0x202), vm.pc)
}

func TestRunReturnsEngineError(t *testing.T) {
	vm, clock := newTestVM(t, 0x00EE)
	hal := &fakeHAL{clock: clock, quitAfter: 100}

	err := vm.Run(hal)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, 0, hal.reads)

	hal.quitAfter = 3
	err = vm.WaitForReboot(hal)
	assert.True(t, errors.Is(err, ErrQuit))
	assert.Equal(t, 3, hal.reads)
}
