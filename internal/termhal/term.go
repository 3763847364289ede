//go:build linux || darwin

// Package termhal runs the emulator inside a raw-mode terminal.
package termhal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/vm"
	"golang.org/x/sys/unix"
)

type Terminal struct {
	fd      int
	out     *os.File
	restore unix.Termios

	input      input
	readBuf    [64]byte
	frame      []byte
	frameDelay time.Duration
}

var _ vm.HAL = (*Terminal)(nil)

func New(cfg config.Config) (*Terminal, error) {
	fgColor, err := config.ParseColor(cfg.Foreground)
	if err != nil {
		return nil, err
	}
	bgColor, err := config.ParseColor(cfg.Background)
	if err != nil {
		return nil, err
	}

	fd := int(os.Stdin.Fd())
	termios, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("stdin is not a terminal: %w", err)
	}

	term := &Terminal{
		fd:         fd,
		out:        os.Stdout,
		restore:    *termios,
		input:      newInput(),
		frameDelay: cfg.CycleDelay(),
	}

	raw := *termios
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR | unix.ICRNL | unix.IXON
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}
	slog.Debug("termhal: raw mode")

	if _, err := term.out.WriteString(hideCursor + colors(fgColor, bgColor) + clearScreen); err != nil {
		term.Shutdown()
		return nil, fmt.Errorf("failed to write to terminal: %w", err)
	}

	return term, nil
}

func (t *Terminal) Shutdown() {
	if _, err := t.out.WriteString(resetColors + showCursor + "\r\n"); err != nil {
		slog.Error("failed to reset terminal", "err", err)
	}

	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.restore); err != nil {
		slog.Error("failed to restore terminal mode", "err", err)
	}
}

func (t *Terminal) ReadInput(keyDown func(vm.Key), keyUp func(vm.Key)) error {
	n, err := unix.Read(t.fd, t.readBuf[:])
	if err != nil {
		if errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR) {
			n = 0
		} else {
			return fmt.Errorf("failed to read terminal: %w", err)
		}
	}

	return t.input.feed(t.readBuf[:n], time.Now(), keyDown, keyUp)
}

func (t *Terminal) Draw(gfx []uint8) error {
	t.frame = Render(t.frame[:0], gfx)
	if _, err := t.out.Write(t.frame); err != nil {
		return fmt.Errorf("failed to draw frame: %w", err)
	}
	return nil
}

func (t *Terminal) Beep() error {
	_, err := t.out.WriteString("\a")
	return err
}

func (t *Terminal) WaitForNextFrame() error {
	time.Sleep(t.frameDelay)
	return nil
}
