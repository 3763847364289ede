package termhal

import (
	"errors"
	"testing"
	"time"

	"github.com/kapitanov/chip8emu/internal/vm"
	"github.com/retroenv/retrogolib/assert"
)

type keyRecorder struct {
	down []vm.Key
	up   []vm.Key
}

func (r *keyRecorder) keyDown(k vm.Key) { r.down = append(r.down, k) }
func (r *keyRecorder) keyUp(k vm.Key)   { r.up = append(r.up, k) }

func TestInputHoldsAndReleases(t *testing.T) {
	in := newInput()
	rec := &keyRecorder{}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.NoError(t, in.feed([]byte("w1"), now, rec.keyDown, rec.keyUp))
	assert.Equal(t, []vm.Key{vm.Key5, vm.Key1}, rec.down)

	// repeated press extends the hold without a second key down
	now = now.Add(100 * time.Millisecond)
	assert.NoError(t, in.feed([]byte("W"), now, rec.keyDown, rec.keyUp))
	assert.Equal(t, 2, len(rec.down))

	now = now.Add(60 * time.Millisecond)
	assert.NoError(t, in.feed(nil, now, rec.keyDown, rec.keyUp))
	assert.Equal(t, []vm.Key{vm.Key1}, rec.up)

	now = now.Add(KeyHold)
	assert.NoError(t, in.feed(nil, now, rec.keyDown, rec.keyUp))
	assert.Equal(t, []vm.Key{vm.Key1, vm.Key5}, rec.up)
}

func TestInputIgnoresUnmappedBytes(t *testing.T) {
	in := newInput()
	rec := &keyRecorder{}

	assert.NoError(t, in.feed([]byte("ghjk\r\n"), time.Now(), rec.keyDown, rec.keyUp))
	assert.Equal(t, 0, len(rec.down))
}

func TestInputControlKeys(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		err  error
	}{
		{"escape", []byte{keyEscape}, vm.ErrQuit},
		{"ctrl-c", []byte{'q', keyCtrlC}, vm.ErrQuit},
		{"backspace", []byte{keyDelete}, vm.ErrReboot},
		{"ctrl-h", []byte{keyBackspace}, vm.ErrReboot},
		{"arrow key", []byte{keyEscape, '[', 'A'}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newInput()
			rec := &keyRecorder{}

			err := in.feed(tt.in, time.Now(), rec.keyDown, rec.keyUp)
			if tt.err == nil {
				assert.NoError(t, err)
				assert.Equal(t, 0, len(rec.down))
				return
			}
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}
