package sound

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/retroenv/retrogolib/assert"
)

func TestToneSamples(t *testing.T) {
	tone := NewTone(440, 100*time.Millisecond)

	assert.Equal(t, 2205, tone.Samples())

	buf := tone.Buffer()
	assert.Equal(t, 2205, len(buf.Data))
	assert.Equal(t, 1, buf.Format.NumChannels)
	assert.Equal(t, DefaultSampleRate, buf.Format.SampleRate)
	assert.Equal(t, 8, buf.SourceBitDepth)

	// sin(0) is silence
	assert.Equal(t, 128, buf.Data[0])

	for _, s := range buf.Data {
		assert.True(t, s >= 1 && s <= 255)
	}
}

func TestToneDecays(t *testing.T) {
	tone := NewTone(441, time.Second)
	buf := tone.Buffer()

	// peaks of a 441Hz wave at 22050Hz fall every 50 samples, offset 12.5
	early := buf.Data[12] - silence
	late := buf.Data[20012] - silence
	assert.True(t, early > 100)
	assert.True(t, late < early/2)
}

func TestTonePCM8(t *testing.T) {
	tone := NewTone(440, 10*time.Millisecond)
	buf := tone.Buffer()
	pcm := tone.PCM8()

	assert.Equal(t, len(buf.Data), len(pcm))
	for i := range pcm {
		assert.Equal(t, uint8(buf.Data[i]), pcm[i])
	}
}

func TestZeroDurationTone(t *testing.T) {
	tone := NewTone(440, 0)
	assert.Equal(t, 0, len(tone.PCM8()))
}

func TestWriteWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beep.wav")
	f, err := os.Create(path)
	assert.NoError(t, err)

	tone := NewTone(440, 50*time.Millisecond)
	assert.NoError(t, WriteWAV(f, tone.Buffer()))
	assert.NoError(t, f.Close())

	r, err := os.Open(path)
	assert.NoError(t, err)
	defer r.Close()

	dec := wav.NewDecoder(r)
	assert.True(t, dec.IsValidFile())
	assert.Equal(t, uint32(DefaultSampleRate), dec.SampleRate)
	assert.Equal(t, uint16(1), dec.NumChans)
	assert.Equal(t, uint16(8), dec.BitDepth)
}
