package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/hal"
	"github.com/kapitanov/chip8emu/internal/rom"
	"github.com/kapitanov/chip8emu/internal/sound"
	"github.com/kapitanov/chip8emu/internal/termhal"
	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/spf13/cobra"
)

type host interface {
	vm.HAL
	Shutdown()
}

func main() {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run emulator",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			setupLogger(cfg.Verbose)
			return cfg.Validate()
		},
	}

	cmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable verbose logging")
	cmd.PersistentFlags().Float64Var(&cfg.ToneFreq, "tone-freq", cfg.ToneFreq, "beep frequency in Hz")
	cmd.PersistentFlags().DurationVar(&cfg.ToneDuration, "tone-duration", cfg.ToneDuration, "beep duration")

	cmd.Flags().StringVar(&cfg.Display, "display", cfg.Display, "display backend: sdl or term")
	cmd.Flags().IntVar(&cfg.Speed, "speed", cfg.Speed, "instructions per second")
	cmd.Flags().IntVar(&cfg.Scale, "scale", cfg.Scale, "window pixels per CHIP-8 pixel")
	cmd.Flags().StringVar(&cfg.Foreground, "fg", cfg.Foreground, "foreground color (RRGGBB)")
	cmd.Flags().StringVar(&cfg.Background, "bg", cfg.Background, "background color (RRGGBB)")
	cmd.Flags().BoolVar(&cfg.Mute, "mute", cfg.Mute, "disable sound")
	cmd.Flags().Uint64Var(&cfg.Seed, "seed", cfg.Seed, "random seed, 0 to seed from the clock")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		return run(cfg, args[0])
	}

	cmd.AddCommand(toneCommand(&cfg))

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

func setupLogger(verbose bool) {
	loggerOpts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	if verbose {
		loggerOpts.Level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))
}

func run(cfg config.Config, path string) error {
	bs, err := rom.Load(path)
	if err != nil {
		return err
	}

	h, err := openHost(cfg)
	if err != nil {
		return fmt.Errorf("unable to initialize hal: %w", err)
	}
	defer h.Shutdown()

	machine := vm.New(vm.WithRandom(vm.NewRandom(cfg.Seed)))

	for {
		machine.LoadProgram(bs)
		err = machine.Run(h)

		if vm.IsMachineError(err) {
			slog.Error("program halted", "err", err)
			err = machine.WaitForReboot(h)
		}

		switch {
		case errors.Is(err, vm.ErrQuit):
			return nil
		case errors.Is(err, vm.ErrReboot):
			slog.Info("reboot")
			continue
		default:
			return err
		}
	}
}

func openHost(cfg config.Config) (host, error) {
	if cfg.Display == config.DisplayTerminal {
		t, err := termhal.New(cfg)
		if err != nil {
			return nil, err
		}
		return t, nil
	}

	h, err := hal.New(cfg)
	if err != nil {
		return nil, err
	}
	return h, nil
}

func toneCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tone",
		Short: "Write the beep sound to a WAV file",
		Args:  cobra.NoArgs,
	}

	output := cmd.Flags().StringP("output", "o", "beep.wav", "output file")

	cmd.RunE = func(_ *cobra.Command, _ []string) error {
		f, err := os.Create(*output)
		if err != nil {
			return fmt.Errorf("unable to create file %q: %w", *output, err)
		}

		tone := sound.NewTone(cfg.ToneFreq, cfg.ToneDuration)
		if err := sound.WriteWAV(f, tone.Buffer()); err != nil {
			_ = f.Close()
			return err
		}

		slog.Info("tone written", "path", *output, "samples", tone.Samples())
		return f.Close()
	}

	return cmd
}
