// Package config holds the emulator run settings bound to command line flags.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	DisplaySDL      = "sdl"
	DisplayTerminal = "term"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Verbose bool

	Display string // DisplaySDL or DisplayTerminal
	Speed   int    // instructions per second
	Scale   int    // window pixels per CHIP-8 pixel

	Foreground string // RRGGBB
	Background string // RRGGBB

	Mute         bool
	ToneFreq     float64
	ToneDuration time.Duration

	Seed uint64 // 0 seeds from the clock
}

func Default() Config {
	return Config{
		Display:      DisplaySDL,
		Speed:        800,
		Scale:        16,
		Foreground:   "bea700",
		Background:   "000000",
		ToneFreq:     440,
		ToneDuration: 120 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.Display != DisplaySDL && c.Display != DisplayTerminal {
		return fmt.Errorf("%w: display %q, want %q or %q", ErrInvalid, c.Display, DisplaySDL, DisplayTerminal)
	}

	if c.Speed <= 0 {
		return fmt.Errorf("%w: speed must be positive, got %d", ErrInvalid, c.Speed)
	}

	if c.Scale <= 0 {
		return fmt.Errorf("%w: scale must be positive, got %d", ErrInvalid, c.Scale)
	}

	if _, err := ParseColor(c.Foreground); err != nil {
		return fmt.Errorf("%w: foreground: %w", ErrInvalid, err)
	}

	if _, err := ParseColor(c.Background); err != nil {
		return fmt.Errorf("%w: background: %w", ErrInvalid, err)
	}

	if c.ToneFreq <= 0 {
		return fmt.Errorf("%w: tone frequency must be positive, got %g", ErrInvalid, c.ToneFreq)
	}

	if c.ToneDuration < 0 {
		return fmt.Errorf("%w: tone duration must not be negative, got %s", ErrInvalid, c.ToneDuration)
	}

	return nil
}

// CycleDelay is the host wait between two instructions.
func (c Config) CycleDelay() time.Duration {
	return time.Second / time.Duration(c.Speed)
}

// ParseColor parses an RRGGBB hex color, with or without a leading '#',
// into 0x00RRGGBB.
func ParseColor(s string) (uint32, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("color %q is not RRGGBB", s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q is not RRGGBB: %w", s, err)
	}
	return uint32(v), nil
}
