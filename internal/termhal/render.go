package termhal

import (
	"fmt"

	"github.com/kapitanov/chip8emu/internal/vm"
)

const (
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearScreen = "\x1b[2J"
	resetColors = "\x1b[0m"
)

// Each text row holds two framebuffer rows: top pixel, bottom pixel.
var halfBlocks = [2][2]string{
	{" ", "▄"},
	{"▀", "█"},
}

// Render appends gfx to dst as ScreenHeight/2 lines of half-block glyphs,
// starting with a cursor-home sequence.
func Render(dst []byte, gfx []uint8) []byte {
	dst = append(dst, cursorHome...)

	for y := 0; y < vm.ScreenHeight; y += 2 {
		top := gfx[y*vm.ScreenWidth : (y+1)*vm.ScreenWidth]
		bottom := gfx[(y+1)*vm.ScreenWidth : (y+2)*vm.ScreenWidth]

		for x := 0; x < vm.ScreenWidth; x++ {
			dst = append(dst, halfBlocks[top[x]&1][bottom[x]&1]...)
		}
		dst = append(dst, '\r', '\n')
	}

	return dst
}

// colors returns the SGR sequence selecting 24-bit foreground and
// background colors given as 0xRRGGBB.
func colors(fg, bg uint32) string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm",
		fg>>16&0xFF, fg>>8&0xFF, fg&0xFF,
		bg>>16&0xFF, bg>>8&0xFF, bg&0xFF)
}
