// Package interrupt implements the BIOS and MS-DOS interrupt services this
// core emulates: INT 10h/13h/16h/1Ah from BIOS, and the thin INT 21h
// subset MS-DOS programs rely on.
package interrupt

import (
	"github.com/MoochMcGee/ape/internal/backend"
	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

// Layer implements cpu.InterruptCaller: CallInterrupt tries the BIOS
// vector table first, then MS-DOS, and reports unhandled to the caller
// only when neither claims the vector, so the CPU falls back to a real
// interrupt-vector-table jump.
type Layer struct {
	TTY     backend.TTYBackend
	VGA     backend.VGABackend
	Floppy  backend.FloppyDrive
	Files   *DOSFiles

	// SimulateMSDOS gates whether INT 21h is serviced at all; a floppy
	// boot sector that never issues DOS calls runs with this false.
	SimulateMSDOS bool

	// Terminated and ExitCode record an AH=0x4C request. The CPU itself
	// has no notion of "the guest program asked to exit"; internal/machine
	// polls this on a timer while the CPU runs and stops the CPU when it is
	// set.
	Terminated bool
	ExitCode   byte
}

func NewLayer(tty backend.TTYBackend, vga backend.VGABackend, floppy backend.FloppyDrive, dosBaseDir string) *Layer {
	l := &Layer{TTY: tty, VGA: vga, Floppy: floppy}
	if dosBaseDir != "" {
		l.Files = NewDOSFiles(dosBaseDir)
		l.SimulateMSDOS = true
	}
	return l
}

func (l *Layer) CallInterrupt(regs *cpu.Registers, mem *memory.Memory, vector byte) (bool, error) {
	handled, err := l.callBIOS(regs, mem, vector)
	if err != nil {
		return false, err
	}
	if handled {
		return true, nil
	}
	if !l.SimulateMSDOS {
		return false, nil
	}
	return l.callMSDOS(regs, mem, vector)
}
