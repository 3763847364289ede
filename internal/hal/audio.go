package hal

import (
	"fmt"
	"log/slog"

	"github.com/kapitanov/chip8emu/internal/config"
	"github.com/kapitanov/chip8emu/internal/sound"
	"github.com/veandco/go-sdl2/sdl"
)

// audio plays a pre-rendered beep on an SDL queue-mode audio device.
type audio struct {
	id   sdl.AudioDeviceID
	beep []byte
}

func openAudio(cfg config.Config) (*audio, error) {
	tone := sound.NewTone(cfg.ToneFreq, cfg.ToneDuration)

	spec := &sdl.AudioSpec{
		Freq:     int32(tone.SampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  2048,
	}

	var actualSpec sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actualSpec, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open sdl audio device: %w", err)
	}
	slog.Debug("hal: open audio", "freq", actualSpec.Freq, "samples", actualSpec.Samples)

	sdl.PauseAudioDevice(id, false)

	return &audio{
		id:   id,
		beep: tone.PCM8(),
	}, nil
}

func (a *audio) play() error {
	if len(a.beep) == 0 {
		return nil
	}

	sdl.ClearQueuedAudio(a.id)
	if err := sdl.QueueAudio(a.id, a.beep); err != nil {
		return fmt.Errorf("failed to queue sdl audio: %w", err)
	}
	return nil
}

func (a *audio) close() {
	sdl.ClearQueuedAudio(a.id)
	sdl.CloseAudioDevice(a.id)
}
