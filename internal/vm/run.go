package vm

import (
	"errors"
)

// Host control signals returned from HAL methods.
var (
	ErrReboot = errors.New("reboot")
	ErrQuit   = errors.New("quit")
)

type HAL interface {
	ReadInput(keyDown func(Key), keyUp func(Key)) error
	Draw(gfx []uint8) error
	Beep() error
	WaitForNextFrame() error
}

// Run drives the loaded program against hal until a step fails or the hal
// returns an error such as ErrQuit or ErrReboot.
func (vm *VM) Run(hal HAL) error {
	for {
		if err := vm.runStep(hal); err != nil {
			return err
		}
	}
}

// WaitForReboot keeps the host responsive after a fatal error, returning
// once the hal reports quit or reboot.
func (vm *VM) WaitForReboot(hal HAL) error {
	for {
		if err := hal.WaitForNextFrame(); err != nil {
			return err
		}

		if err := hal.ReadInput(func(_ Key) {}, func(_ Key) {}); err != nil {
			return err
		}
	}
}

func (vm *VM) runStep(hal HAL) error {
	sound := vm.timers.sound

	if err := vm.Step(); err != nil {
		return err
	}

	if vm.drawFlag {
		if err := hal.Draw(vm.Framebuffer()); err != nil {
			return err
		}
		vm.drawFlag = false
	}

	if sound > 0 && vm.timers.sound == 0 {
		if err := hal.Beep(); err != nil {
			return err
		}
	}

	if err := hal.ReadInput(vm.KeyDown, vm.KeyUp); err != nil {
		return err
	}

	if err := hal.WaitForNextFrame(); err != nil {
		return err
	}

	return nil
}
