package interrupt

import (
	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

// callMSDOS implements the INT 21h subset this core emulates. Each AH
// subfunction is handled independently: the original implementation this
// was distilled from has AH=0x3F fall through into AH=0x42 by way of a
// missing break statement, but nothing in either subfunction's documented
// behaviour depends on that, so this implementation treats them as the two
// unrelated operations they are meant to be.
func (l *Layer) callMSDOS(regs *cpu.Registers, mem *memory.Memory, vector byte) (bool, error) {
	if vector != 0x21 {
		return false, nil
	}

	switch regs.AH() {
	case 0x02: // display character: DL
		if l.TTY != nil {
			l.TTY.WriteChar(regs.DL())
		}
	case 0x09: // display string: DS:DX, '$'-terminated
		if l.TTY != nil {
			l.writeDollarString(regs, mem)
		}
	case 0x19: // get default drive
		regs.SetAL(0) // drive A
	case 0x30: // get DOS version
		regs.SetAL(5)
		regs.SetAH(0)
	case 0x3D: // open file: DS:DX = ASCIZ path, AL = access mode
		l.dosOpen(regs, mem)
	case 0x3F: // read file: BX = handle, CX = count, DS:DX = buffer
		l.dosRead(regs, mem)
	case 0x42: // seek file: BX = handle, AL = origin, CX:DX = offset; new position in DX:AX
		l.dosSeek(regs)
	case 0x4C: // terminate with return code AL
		l.Terminated = true
		l.ExitCode = regs.AL()
	default:
		return false, &cpu.InterruptError{Vector: vector}
	}
	return true, nil
}

func (l *Layer) writeDollarString(regs *cpu.Registers, mem *memory.Memory) {
	seg, off := regs.DS(), regs.DX()
	for {
		c := mem.Read8(seg, off)
		if c == '$' {
			return
		}
		l.TTY.WriteChar(c)
		off++
	}
}

func (l *Layer) dosOpen(regs *cpu.Registers, mem *memory.Memory) {
	if l.Files == nil {
		regs.SetAX(0x02) // file not found
		regs.SetCF(true)
		return
	}
	path := mem.CString(regs.DS(), regs.DX())
	handle, err := l.Files.Open(path)
	if err != nil {
		regs.SetAX(0x02)
		regs.SetCF(true)
		return
	}
	regs.SetAX(handle)
	regs.SetCF(false)
}

func (l *Layer) dosRead(regs *cpu.Registers, mem *memory.Memory) {
	if l.Files == nil {
		regs.SetAX(0x06) // invalid handle
		regs.SetCF(true)
		return
	}
	buf := make([]byte, regs.CX())
	n, err := l.Files.Read(regs.BX(), buf)
	if err != nil {
		regs.SetAX(0x05) // access denied
		regs.SetCF(true)
		return
	}
	seg, off := regs.DS(), regs.DX()
	for i := 0; i < n; i++ {
		mem.Write8(seg, off+uint16(i), buf[i])
	}
	regs.SetAX(uint16(n))
	regs.SetCF(false)
}

func (l *Layer) dosSeek(regs *cpu.Registers) {
	if l.Files == nil {
		regs.SetAX(0x06)
		regs.SetCF(true)
		return
	}
	origin := SeekOrigin(regs.AL())
	offset := int32(uint32(regs.CX())<<16 | uint32(regs.DX()))
	pos, err := l.Files.Seek(regs.BX(), origin, offset)
	if err != nil {
		regs.SetAX(0x01)
		regs.SetCF(true)
		return
	}
	regs.SetDX(uint16(uint32(pos) >> 16))
	regs.SetAX(uint16(uint32(pos)))
	regs.SetCF(false)
}
