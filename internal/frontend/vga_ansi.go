package frontend

import (
	"fmt"
	"io"

	"github.com/MoochMcGee/ape/internal/memory"
)

// vgaTextBase is the physical address of the 80x25 text-mode character and
// attribute buffer, matching the original implementation's
// GetMemory().GetPtr<u8>(0xB000, 0x8000) (segment 0xB000, offset 0x8000).
const vgaTextBase = 0xB8000

const (
	vgaCols = 80
	vgaRows = 25
)

// ibmToANSI maps the IBM PC 16-colour attribute nibble to the nearest
// standard ANSI SGR foreground code; adding 10 gives the background code.
var ibmToANSI = [16]int{30, 34, 32, 36, 31, 35, 33, 37, 90, 94, 92, 96, 91, 95, 93, 97}

// ANSIVGA is a backend.VGABackend that renders the text-mode buffer to an
// ANSI-capable terminal. It owns no state the core depends on beyond
// SetMode/Update, matching the original VGA module's narrow backend
// contract.
type ANSIVGA struct {
	Mem *memory.Memory
	Out io.Writer

	mode byte
	last [vgaRows * vgaCols * 2]byte
}

func NewANSIVGA(mem *memory.Memory, out io.Writer) *ANSIVGA {
	v := &ANSIVGA{Mem: mem, Out: out}
	for i := range v.last {
		v.last[i] = 0xFF // force a full redraw on first Update
	}
	return v
}

func (v *ANSIVGA) SetMode(mode byte) {
	v.mode = mode
	fmt.Fprint(v.Out, "\x1b[2J\x1b[H")
}

// Update redraws every cell whose character or attribute byte changed
// since the last call, which keeps a full-screen refresh cheap for the
// common case of a program updating a handful of characters per frame.
func (v *ANSIVGA) Update() {
	for row := 0; row < vgaRows; row++ {
		for col := 0; col < vgaCols; col++ {
			cellOff := uint32((row*vgaCols + col) * 2)
			ch := v.Mem.ReadPhys8(vgaTextBase + cellOff)
			attr := v.Mem.ReadPhys8(vgaTextBase + cellOff + 1)

			idx := int(cellOff)
			if v.last[idx] == ch && v.last[idx+1] == attr {
				continue
			}
			v.last[idx], v.last[idx+1] = ch, attr

			fg := ibmToANSI[attr&0x0F]
			bg := ibmToANSI[(attr>>4)&0x07] + 10
			fmt.Fprintf(v.Out, "\x1b[%d;%dH\x1b[%d;%dm%c", row+1, col+1, fg, bg, printable(ch))
		}
	}
	fmt.Fprint(v.Out, "\x1b[0m")
}

func printable(c byte) byte {
	if c < 0x20 || c == 0x7F {
		return ' '
	}
	return c
}
