// Package rom reads CHIP-8 program images from disk.
package rom

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kapitanov/chip8emu/internal/vm"
)

var (
	ErrEmpty    = errors.New("rom is empty")
	ErrTooLarge = errors.New("rom does not fit in memory")
)

// Load reads the ROM at path and checks that it fits above vm.ProgramStart.
func Load(path string) ([]byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}

	if err := Validate(bs); err != nil {
		return nil, fmt.Errorf("unable to load file %q: %w", path, err)
	}

	slog.Debug("rom: loaded", "path", path, "n", len(bs))
	return bs, nil
}

func Validate(bs []byte) error {
	switch {
	case len(bs) == 0:
		return ErrEmpty
	case len(bs) > vm.MaxProgramSize:
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrTooLarge, len(bs), vm.MaxProgramSize)
	}
	return nil
}
