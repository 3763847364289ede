//go:build !linux && !darwin

// Package termhal runs the emulator inside a raw-mode terminal.
package termhal

import (
	"errors"

	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/vm"
)

var errUnsupported = errors.New("terminal display is not supported on this platform")

type Terminal struct{}

func New(_ config.Config) (*Terminal, error) {
	return nil, errUnsupported
}

func (t *Terminal) Shutdown() {}

func (t *Terminal) ReadInput(_ func(vm.Key), _ func(vm.Key)) error { return errUnsupported }

func (t *Terminal) Draw(_ []uint8) error { return errUnsupported }

func (t *Terminal) Beep() error { return errUnsupported }

func (t *Terminal) WaitForNextFrame() error { return errUnsupported }
