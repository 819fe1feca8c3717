// Package boot implements the two supported ways to get a program into
// memory and the CPU pointed at it: a floppy boot sector loaded at the
// BIOS's conventional 0x7C00, and a flat MS-DOS .COM image loaded at
// offset 0x100 of its own segment.
package boot

import (
	"fmt"

	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

// bootSectorAddr is the address the BIOS convention loads a floppy's
// first sector to and jumps into with CS=0.
const bootSectorAddr = 0x7C00

// comLoadOffset is the offset within its segment MS-DOS loads a .COM
// program's first byte to; the 256 bytes before it are reserved for a
// Program Segment Prefix, which this core does not populate since nothing
// in its MS-DOS emulation reads one.
const comLoadOffset = 0x100

// comSegment is the single segment a .COM program runs in: CS, DS, ES, and
// SS all alias it, matching the .COM format's flat 64KB memory model.
const comSegment = 0x1000

// comStackTop is SP's initial value: the top of the 64KB segment, leaving
// the full segment below it available as stack and heap.
const comStackTop = 0xFFFE

// BootFloppy loads a 512-byte boot sector to 0x7C00 and points CS:IP at
// it, matching real BIOS behaviour on a successful floppy boot. SS:SP is
// set to 0000:7C00, so the stack grows down from just below the loaded
// code, a common convention real boot sectors rely on without setting up
// their own stack.
func BootFloppy(mem *memory.Memory, regs *cpu.Registers, bootSector []byte) error {
	if len(bootSector) != 512 {
		return fmt.Errorf("boot sector must be exactly 512 bytes, got %d", len(bootSector))
	}
	mem.LoadAt(memory.Physical(0, bootSectorAddr), bootSector)

	regs.Reset()
	regs.SetCS(0)
	regs.SetIP(bootSectorAddr)
	regs.SetSS(0)
	regs.SetSP(bootSectorAddr)
	return nil
}

// BootCOM loads a flat .COM image at offset 0x100 of a dedicated segment
// and points CS:IP at it, matching MS-DOS's loader for this program
// format.
func BootCOM(mem *memory.Memory, regs *cpu.Registers, program []byte) error {
	if len(program) > 0x10000-comLoadOffset {
		return fmt.Errorf(".COM image of %d bytes does not fit in a 64KB segment", len(program))
	}
	mem.LoadAt(memory.Physical(comSegment, comLoadOffset), program)

	regs.Reset()
	regs.SetCS(comSegment)
	regs.SetDS(comSegment)
	regs.SetES(comSegment)
	regs.SetSS(comSegment)
	regs.SetIP(comLoadOffset)
	regs.SetSP(comStackTop)

	// MS-DOS leaves a 0x0000 word at the top of the stack (SS:0xFFFE) before
	// transferring control, so a .COM program that simply RETs pops
	// IP=0x0000 and "returns" to offset 0 of its segment, the PSP area,
	// which this core leaves unpopulated.
	mem.Write16(comSegment, comStackTop, 0)
	return nil
}
