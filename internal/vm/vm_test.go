package vm

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/assert"
)

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fixedRandom struct {
	value int
}

func (r fixedRandom) IntN(n int) int { return r.value % n }

func encode(ops ...uint16) []byte {
	program := make([]byte, 0, len(ops)*2)
	for _, op := range ops {
		program = append(program, byte(op>>8), byte(op))
	}
	return program
}

func newTestVM(t *testing.T, ops ...uint16) (*VM, *fakeClock) {
	t.Helper()

	clock := newFakeClock()
	vm := New(WithClock(clock), WithRandom(fixedRandom{value: 0xAB}))
	vm.LoadProgram(encode(ops...))
	return vm, clock
}

func runSteps(t *testing.T, vm *VM, n int) {
	t.Helper()

	for i := 0; i < n; i++ {
		assert.NoError(t, vm.Step())
	}
}

func TestLoadProgram(t *testing.T) {
	vm, _ := newTestVM(t, 0x1234, 0xABCD)

	assert.Equal(t, ProgramStart, vm.pc)
	assert.Equal(t, uint8(0x12), vm.memory[0x200])
	assert.Equal(t, uint8(0xCD), vm.memory[0x203])
	assert.Equal(t, uint8(0x00), vm.memory[0x204])

	for i, b := range chip8Font {
		assert.Equal(t, b, vm.memory[i])
	}
	assert.Equal(t, uint8(0), vm.memory[len(chip8Font)])
}

func TestLoadProgramResetsState(t *testing.T) {
	vm, _ := newTestVM(t,
		0x6A05, // mov va, 5
		0xFA15, // sdelay va
		0xA000, // mvi 0x000
		0xD015, // sprite v0, v1, 5
		0x220A, // jsr 0x20a
		0x0000,
	)
	runSteps(t, vm, 5)

	assert.Equal(t, 1, vm.stack.depth())
	assert.Equal(t, uint8(0x05), vm.registers[0xA])
	assert.Equal(t, uint8(1), vm.gfx[0])

	vm.LoadProgram(encode(0x6001))

	assert.Equal(t, ProgramStart, vm.pc)
	assert.Equal(t, uint16(0), vm.index)
	assert.Equal(t, 0, vm.stack.depth())
	assert.Equal(t, uint8(0), vm.registers[0xA])
	assert.Equal(t, uint8(0), vm.DelayTimer())
	assert.Equal(t, uint8(0), vm.SoundTimer())
	assert.Equal(t, uint8(0), vm.gfx[0])
	assert.Equal(t, uint8(0), vm.memory[0x208])
	assert.Equal(t, Scanning, vm.KeyWaitState())
}

func TestLoadProgramTruncatesOversizedImage(t *testing.T) {
	vm := New(WithClock(newFakeClock()))

	program := make([]byte, MaxProgramSize+10)
	for i := range program {
		program[i] = 0x77
	}
	vm.LoadProgram(program)

	assert.Equal(t, uint8(0x77), vm.memory[MemorySize-1])
}

func TestAddScenario(t *testing.T) {
	vm, _ := newTestVM(t,
		0x600A, // mov v0, 10
		0x610B, // mov v1, 11
		0x8014, // add v0, v1
	)
	runSteps(t, vm, 3)

	assert.Equal(t, uint8(21), vm.registers[0])
	assert.Equal(t, uint8(0), vm.registers[0xF])
	assert.Equal(t, ProgramStart+6, vm.pc)
}

func TestStackUnderflow(t *testing.T) {
	vm, _ := newTestVM(t, 0x00EE)

	err := vm.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, ProgramStart, vm.pc)
}

func TestStackOverflow(t *testing.T) {
	vm, _ := newTestVM(t, 0x2200) // jsr 0x200

	runSteps(t, vm, StackSize)
	assert.Equal(t, StackSize, vm.stack.depth())

	err := vm.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestCallAndReturn(t *testing.T) {
	vm, _ := newTestVM(t,
		0x2206, // 0x200: jsr 0x206
		0x6102, // 0x202: mov v1, 2
		0x1204, // 0x204: jmp 0x204
		0x6001, // 0x206: mov v0, 1
		0x00EE, // 0x208: rts
	)

	runSteps(t, vm, 1)
	assert.Equal(t, uint16(0x206), vm.pc)

	runSteps(t, vm, 2)
	assert.Equal(t, uint16(0x202), vm.pc)
	assert.Equal(t, 0, vm.stack.depth())

	runSteps(t, vm, 3)
	assert.Equal(t, uint8(1), vm.registers[0])
	assert.Equal(t, uint8(2), vm.registers[1])
	assert.Equal(t, uint16(0x204), vm.pc)
}

func TestErrorsLatch(t *testing.T) {
	vm, _ := newTestVM(t, 0x5121)

	err := vm.Step()
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.True(t, decodeErr.Variant)
	assert.Equal(t, uint16(0x5121), decodeErr.Opcode)
	assert.Equal(t, ProgramStart, decodeErr.PC)

	assert.Equal(t, err, vm.Step())
	assert.Equal(t, ProgramStart, vm.pc)

	vm.LoadProgram(encode(0x6001))
	assert.NoError(t, vm.Step())
}

func TestFetchWrapsAtEndOfMemory(t *testing.T) {
	vm, _ := newTestVM(t, 0x1FFF) // jmp 0xfff
	runSteps(t, vm, 1)

	// high byte from 0xfff, low byte from the font at 0x000
	err := vm.Step()
	var decodeErr *DecodeError
	assert.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, uint16(0x00F0), decodeErr.Opcode)
	assert.False(t, decodeErr.Variant)
}

func TestKeyboardIgnoresOutOfRange(t *testing.T) {
	vm, _ := newTestVM(t)

	vm.KeyDown(Key(16))
	vm.KeyDown(Key(0xFF))
	vm.KeyDown(KeyF)
	for i := 0; i < KeyCount-1; i++ {
		assert.False(t, vm.keypad[i])
	}
	assert.True(t, vm.keypad[KeyF])

	vm.KeyUp(Key(200))
	vm.KeyUp(KeyF)
	assert.False(t, vm.keypad[KeyF])
}

func TestFramebufferAliasesDisplay(t *testing.T) {
	vm, _ := newTestVM(t, 0xA000, 0xD015)
	runSteps(t, vm, 2)

	fb := vm.Framebuffer()
	assert.Equal(t, ScreenWidth*ScreenHeight, len(fb))
	assert.Equal(t, uint8(1), fb[0])
	assert.Equal(t, uint8(1), fb[3])
	assert.Equal(t, uint8(0), fb[4])
}

func TestIsMachineError(t *testing.T) {
	assert.True(t, IsMachineError(&DecodeError{Opcode: 0xFFFF}))
	assert.True(t, IsMachineError(fmt.Errorf("rts: %w", ErrStackUnderflow)))
	assert.True(t, IsMachineError(ErrStackOverflow))
	assert.False(t, IsMachineError(ErrQuit))
	assert.False(t, IsMachineError(errors.New("texture lost")))
	assert.False(t, IsMachineError(nil))
}

func TestDecodeErrorMessage(t *testing.T) {
	assert.Equal(t, "unknown op code 0xFFFF at 0x0200", (&DecodeError{PC: 0x200, Opcode: 0xFFFF}).Error())
	assert.Equal(t, "unsupported variant of 0x5000 opcode: 0x5121 at 0x0204",
		(&DecodeError{PC: 0x204, Opcode: 0x5121, Variant: true}).Error())
}
