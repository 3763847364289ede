// Package sound synthesizes the beep played when the sound timer expires.
package sound

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	DefaultSampleRate = 22050
	DefaultDecay      = 0.0001

	bitDepth  = 8
	silence   = 128
	amplitude = 127

	wavFormatPCM = 1
)

// Tone is a sine wave with exponentially decaying amplitude, rendered as
// unsigned 8-bit mono samples centred on 128.
type Tone struct {
	Frequency  float64
	Duration   time.Duration
	SampleRate int
	Decay      float64 // per-sample decay rate
}

// NewTone returns a tone with the default sample rate and decay.
func NewTone(frequency float64, duration time.Duration) Tone {
	return Tone{
		Frequency:  frequency,
		Duration:   duration,
		SampleRate: DefaultSampleRate,
		Decay:      DefaultDecay,
	}
}

// Samples returns the number of samples in the tone.
func (t Tone) Samples() int {
	return int(float64(t.SampleRate) * t.Duration.Seconds())
}

// Buffer renders the tone.
func (t Tone) Buffer() *audio.IntBuffer {
	data := make([]int, t.Samples())
	for i := range data {
		angle := 2.0 * math.Pi * float64(i) * t.Frequency / float64(t.SampleRate)
		envelope := math.Exp(-t.Decay * float64(i))
		data[i] = silence + int(envelope*math.Sin(angle)*amplitude)
	}

	return &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  t.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
}

// PCM8 renders the tone as raw unsigned 8-bit samples.
func (t Tone) PCM8() []byte {
	buf := t.Buffer()
	pcm := make([]byte, len(buf.Data))
	for i, s := range buf.Data {
		pcm[i] = uint8(s)
	}
	return pcm
}

// WriteWAV encodes buf as an 8-bit mono PCM WAV file.
func WriteWAV(w io.WriteSeeker, buf *audio.IntBuffer) error {
	enc := wav.NewEncoder(w, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, wavFormatPCM)

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("unable to encode wav: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("unable to finish wav: %w", err)
	}

	return nil
}
