package vm

import (
	"fmt"
	"log/slog"
)

const (
	MemorySize    = 4096
	StackSize     = 16
	RegisterCount = 16
	ScreenWidth   = 64
	ScreenHeight  = 32
	KeyCount      = 16

	ProgramStart    = uint16(0x200)
	MaxProgramSize  = MemorySize - int(ProgramStart)
	InstructionSize = 2

	addressMask = MemorySize - 1
)

type VM struct {
	memory    [MemorySize]uint8    // Memory (4k)
	registers [RegisterCount]uint8 // V registers (V0-VF)

	stack stack // Call stack

	pc    uint16 // Program counter
	index uint16 // Index register

	timers timers // Delay and sound timers

	gfx      [ScreenWidth * ScreenHeight]uint8 // Graphics buffer
	keypad   [KeyCount]bool                    // Keypad
	drawFlag bool                              // Indicates a draw has occurred

	keyWait KeyWaitState

	rng Random
	err error
}

// Option configures a VM created by New.
type Option func(*VM)

// WithClock replaces the wall clock that gates the 60Hz timers.
func WithClock(clock Clock) Option {
	return func(vm *VM) {
		vm.timers.clock = clock
	}
}

// WithRandom replaces the random source used by CXNN.
func WithRandom(rng Random) Option {
	return func(vm *VM) {
		vm.rng = rng
	}
}

func New(opts ...Option) *VM {
	vm := &VM{
		timers: timers{clock: systemClock{}},
		rng:    NewRandom(0),
	}
	for _, opt := range opts {
		opt(vm)
	}

	vm.reset()
	return vm
}

type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// LoadProgram replaces the whole machine state and places program at
// ProgramStart. Bytes beyond the end of memory are dropped.
func (vm *VM) LoadProgram(program []byte) {
	vm.reset()

	slog.Info("load program", "at", fmt.Sprintf("0x%04x", ProgramStart), "n", len(program))
	copy(vm.memory[ProgramStart:], program)
}

func (vm *VM) reset() {
	vm.pc = ProgramStart
	vm.index = 0
	vm.stack.reset()
	vm.timers.reset()
	vm.keyWait = Scanning
	vm.err = nil

	// Clear the display
	vm.gfx = [ScreenWidth * ScreenHeight]uint8{}
	vm.drawFlag = true

	slog.Debug("clear registers", "n", len(vm.registers))
	vm.registers = [RegisterCount]uint8{}

	slog.Debug("clear memory", "n", len(vm.memory))
	vm.memory = [MemorySize]uint8{}

	// Load font set into memory
	slog.Debug("load font", "at", fmt.Sprintf("0x%04x", 0), "n", len(chip8Font))
	copy(vm.memory[0:], chip8Font)
}

// KeyDown marks key as held. Keys outside 0x0-0xF are ignored.
func (vm *VM) KeyDown(key Key) {
	if int(key) < KeyCount {
		vm.keypad[key] = true
	}
}

// KeyUp marks key as released. Keys outside 0x0-0xF are ignored.
func (vm *VM) KeyUp(key Key) {
	if int(key) < KeyCount {
		vm.keypad[key] = false
	}
}

// Framebuffer returns the 64x32 row-major display, one byte (0 or 1) per
// pixel. The slice aliases VM state and must only be read.
func (vm *VM) Framebuffer() []uint8 {
	return vm.gfx[:]
}

func (vm *VM) DelayTimer() uint8 { return vm.timers.delay }

func (vm *VM) SoundTimer() uint8 { return vm.timers.sound }

// KeyWaitState reports whether the VM is parked on FX0A.
func (vm *VM) KeyWaitState() KeyWaitState { return vm.keyWait }

// Waiting is shorthand for KeyWaitState() == Parked.
func (vm *VM) Waiting() bool { return vm.keyWait == Parked }

// Step executes one instruction. Errors are fatal: once Step fails it keeps
// returning the same error until the next LoadProgram.
func (vm *VM) Step() error {
	if vm.err != nil {
		return vm.err
	}

	opcode := vm.fetchOpcode()
	vm.timers.tick()
	vm.pc += InstructionSize

	if err := vm.executeOpcode(opcode); err != nil {
		vm.pc -= InstructionSize
		vm.err = err
		return err
	}

	return nil
}

func (vm *VM) fetchOpcode() uint16 {
	hi := vm.memory[vm.pc&addressMask]
	lo := vm.memory[(vm.pc+1)&addressMask]

	opcode := uint16(hi)<<8 | uint16(lo) // Op code is two bytes
	return opcode
}

func (vm *VM) read(addr uint16) uint8 {
	return vm.memory[addr&addressMask]
}

func (vm *VM) write(addr uint16, v uint8) {
	vm.memory[addr&addressMask] = v
}
