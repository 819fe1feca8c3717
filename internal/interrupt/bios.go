package interrupt

import (
	"time"

	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

// callBIOS services the BIOS-owned interrupt vectors: INT 10h (video),
// INT 13h (disk), INT 16h (keyboard), INT 1Ah (time). It reports handled
// for any of those four vectors even when the specific AH subfunction is
// not implemented, matching real BIOS behaviour of returning with CF set
// (plus an error code in AH for INT 13h) rather than leaving the vector
// unclaimed.
func (l *Layer) callBIOS(regs *cpu.Registers, mem *memory.Memory, vector byte) (bool, error) {
	switch vector {
	case 0x10:
		l.bios10(regs, mem)
		return true, nil
	case 0x13:
		l.bios13(regs, mem)
		return true, nil
	case 0x16:
		l.bios16(regs)
		return true, nil
	case 0x1A:
		l.bios1A(regs)
		return true, nil
	default:
		return false, nil
	}
}

// bios10 implements INT 10h video services.
func (l *Layer) bios10(regs *cpu.Registers, mem *memory.Memory) {
	switch regs.AH() {
	case 0x00: // set video mode
		if l.VGA != nil {
			l.VGA.SetMode(regs.AL())
		}
		regs.SetCF(false)
	case 0x02: // set cursor position: DH=row, DL=column
		if l.TTY != nil {
			l.TTY.MoveCursor(int(regs.DL()), int(regs.DH()))
		}
		regs.SetCF(false)
	case 0x03: // get cursor position
		if l.TTY != nil {
			regs.SetDH(byte(l.TTY.CursorRow()))
			regs.SetDL(byte(l.TTY.CursorColumn()))
		}
		regs.SetCF(false)
	case 0x06: // scroll up AL lines, fill with attribute BH
		if l.TTY != nil {
			l.TTY.Scroll(int(regs.AL()), regs.BH())
		}
		regs.SetCF(false)
	case 0x0E: // teletype output: write AL, advance cursor, wrap/scroll
		if l.TTY != nil {
			l.TTY.WriteChar(regs.AL())
		}
		regs.SetCF(false)
	case 0x0F: // get current video mode
		regs.SetAH(80) // columns
		regs.SetCF(false)
	default:
		regs.SetCF(true)
	}
	if l.VGA != nil {
		l.VGA.Update()
	}
}

// bios13 implements the subset of INT 13h disk services this core
// supports: read sectors. Writes are out of scope.
func (l *Layer) bios13(regs *cpu.Registers, mem *memory.Memory) {
	switch regs.AH() {
	case 0x00: // reset disk system
		regs.SetCF(false)
	case 0x02: // read sectors into ES:BX
		l.bios13Read(regs, mem)
	default:
		regs.SetAH(0x01) // invalid function
		regs.SetCF(true)
	}
}

func (l *Layer) bios13Read(regs *cpu.Registers, mem *memory.Memory) {
	if l.Floppy == nil {
		regs.SetAH(0x80) // no such drive
		regs.SetCF(true)
		return
	}
	count := int(regs.AL())
	cylinder := int(regs.CH())
	sector := int(regs.CL() & 0x3F)
	head := int(regs.DH())

	destSeg, destOff := regs.ES(), regs.BX()
	for i := 0; i < count; i++ {
		data, err := l.Floppy.ReadSector(cylinder, head, sector+i)
		if err != nil {
			regs.SetAH(0x04) // sector not found
			regs.SetCF(true)
			return
		}
		for j, b := range data {
			mem.Write8(destSeg, destOff+uint16(j), b)
		}
		destOff += uint16(len(data))
	}
	regs.SetAL(byte(count))
	regs.SetCF(false)
}

// bios16 implements INT 16h keyboard services: blocking read and a
// non-blocking status check.
func (l *Layer) bios16(regs *cpu.Registers) {
	switch regs.AH() {
	case 0x00: // read keystroke (blocking from the backend's perspective)
		if l.TTY != nil {
			c := l.TTY.ReadChar()
			regs.SetAL(c)
			regs.SetAH(0)
		}
	case 0x01: // check for keystroke, non-blocking
		available := l.TTY != nil && l.TTY.HasChar()
		regs.SetZF(!available) // ZF=1 means "no key available", per the real BIOS
	default:
		regs.SetCF(true)
	}
}

// bios1A implements INT 1Ah AH=0x00 (read system timer tick count), using
// the host clock since there is no emulated PIT in scope.
func (l *Layer) bios1A(regs *cpu.Registers) {
	switch regs.AH() {
	case 0x00:
		// 18.2 ticks/sec since midnight is the real BIOS unit; the host
		// wall clock gives a plausible, monotonically increasing stand-in.
		ticks := uint32(time.Now().UnixNano()/1e9*18) & 0x00FFFFFF
		regs.SetCX(uint16(ticks >> 16))
		regs.SetDX(uint16(ticks))
		regs.SetAL(0) // no midnight rollover tracked
	default:
		regs.SetCF(true)
	}
}
