package termhal

import (
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
)

// KeyHold is how long a key stays down after its byte arrives. Terminals
// report presses only, so releases are synthesized.
const KeyHold = 150 * time.Millisecond

const (
	keyCtrlC     = 0x03
	keyBackspace = 0x08
	keyEscape    = 0x1b
	keyDelete    = 0x7f
)

// Same layout as the SDL host: 1234/qwer/asdf/zxcv.
var runeKeys = map[byte]vm.Key{
	'x': vm.Key0,
	'1': vm.Key1,
	'2': vm.Key2,
	'3': vm.Key3,
	'q': vm.Key4,
	'w': vm.Key5,
	'e': vm.Key6,
	'a': vm.Key7,
	's': vm.Key8,
	'd': vm.Key9,
	'z': vm.KeyA,
	'c': vm.KeyB,
	'4': vm.KeyC,
	'r': vm.KeyD,
	'f': vm.KeyE,
	'v': vm.KeyF,
}

// input turns raw terminal bytes into key down/up callbacks.
type input struct {
	hold     time.Duration
	releases [vm.KeyCount]time.Time // zero while the key is up
}

func newInput() input {
	return input{hold: KeyHold}
}

// feed processes one read from the terminal. A lone Escape or Ctrl-C quits,
// Backspace reboots, escape sequences (arrow keys etc.) are skipped.
func (in *input) feed(buf []byte, now time.Time, keyDown, keyUp func(vm.Key)) error {
	in.expire(now, keyUp)

	for i := 0; i < len(buf); i++ {
		b := buf[i]
		switch b {
		case keyCtrlC:
			return vm.ErrQuit
		case keyEscape:
			if i == len(buf)-1 {
				return vm.ErrQuit
			}
			return nil
		case keyBackspace, keyDelete:
			return vm.ErrReboot
		}

		if b >= 'A' && b <= 'Z' {
			b += 'a' - 'A'
		}
		if key, ok := runeKeys[b]; ok {
			in.press(key, now, keyDown)
		}
	}

	return nil
}

func (in *input) press(key vm.Key, now time.Time, keyDown func(vm.Key)) {
	if in.releases[key].IsZero() {
		keyDown(key)
	}
	in.releases[key] = now.Add(in.hold)
}

func (in *input) expire(now time.Time, keyUp func(vm.Key)) {
	for i, release := range in.releases {
		if release.IsZero() || now.Before(release) {
			continue
		}
		in.releases[i] = time.Time{}
		keyUp(vm.Key(i))
	}
}
