package cpu

import "github.com/MoochMcGee/ape/internal/memory"

// Resolver maps a decoded Parameter to a concrete rvalue (Read) or lvalue
// (Write) against a specific Registers/Memory pair, honoring the
// instruction's segment-prefix override when resolving a memory operand.
type Resolver struct {
	Regs *Registers
	Mem  *memory.Memory
	Seg  SegmentPrefix
}

func NewResolver(regs *Registers, mem *memory.Memory, seg SegmentPrefix) *Resolver {
	return &Resolver{Regs: regs, Mem: mem, Seg: seg}
}

// segmentRegister returns the RegName of the segment a memory operand
// resolves against: the instruction's override when present, otherwise the
// operand's own default (SS for BP-based forms, DS otherwise).
func (res *Resolver) segmentRegister(m MemOperand) RegName {
	switch res.Seg {
	case SegCS:
		return CS
	case SegDS:
		return DS
	case SegES:
		return ES
	case SegSS:
		return SS
	default:
		return m.DefaultSegment()
	}
}

// EffectiveAddress returns the (segment, offset) pair a memory operand
// resolves to, without reading memory. Used directly by LEA (wants the
// offset only) and LDS/LES (want to combine the loaded word with this
// operand's own segment).
func (res *Resolver) EffectiveAddress(m MemOperand) (seg, off uint16) {
	seg = res.Regs.Reg16(res.segmentRegister(m))

	switch m.Base {
	case BaseBXSI:
		off = res.Regs.BX() + res.Regs.SI()
	case BaseBXDI:
		off = res.Regs.BX() + res.Regs.DI()
	case BaseBPSI:
		off = res.Regs.BP() + res.Regs.SI()
	case BaseBPDI:
		off = res.Regs.BP() + res.Regs.DI()
	case BaseSI:
		off = res.Regs.SI()
	case BaseDI:
		off = res.Regs.DI()
	case BaseBP:
		off = res.Regs.BP()
	case BaseBX:
		off = res.Regs.BX()
	case BaseDirect:
		off = m.Addr16
		return
	}
	if m.HasDisp {
		off = uint16(int16(off) + m.Disp)
	}
	return
}

// ReadByte resolves p as an 8-bit rvalue.
func (res *Resolver) ReadByte(p Parameter) (byte, error) {
	switch p.Kind {
	case PReg:
		if p.Width != Byte {
			return 0, &OperandError{Kind: ParameterLengthMismatch, Param: p}
		}
		return res.Regs.Reg8(p.Reg), nil
	case PMem:
		seg, off := res.EffectiveAddress(p.Mem)
		return res.Mem.Read8(seg, off), nil
	case PImmByte, PImmSByte:
		return byte(p.Imm), nil
	default:
		return 0, &OperandError{Kind: UnhandledParameter, Param: p}
	}
}

// WriteByte resolves p as an 8-bit lvalue and stores v into it.
func (res *Resolver) WriteByte(p Parameter, v byte) error {
	switch p.Kind {
	case PReg:
		if p.Width != Byte {
			return &OperandError{Kind: ParameterLengthMismatch, Param: p}
		}
		res.Regs.SetReg8(p.Reg, v)
		return nil
	case PMem:
		seg, off := res.EffectiveAddress(p.Mem)
		res.Mem.Write8(seg, off, v)
		return nil
	default:
		return &OperandError{Kind: UnhandledParameter, Param: p}
	}
}

// ReadWord resolves p as a 16-bit rvalue.
func (res *Resolver) ReadWord(p Parameter) (uint16, error) {
	switch p.Kind {
	case PReg:
		if p.Width != Word {
			return 0, &OperandError{Kind: ParameterLengthMismatch, Param: p}
		}
		return res.Regs.Reg16(p.Reg), nil
	case PSeg:
		return res.Regs.Reg16(p.Reg), nil
	case PMem:
		seg, off := res.EffectiveAddress(p.Mem)
		return res.Mem.Read16(seg, off), nil
	case PImmWord, PRelWord, PImmSByte:
		return p.Imm, nil
	case PImplied0:
		return 0, nil
	case PImplied1:
		return 1, nil
	case PImplied3:
		return 3, nil
	case PFarPtr:
		return p.Imm, nil
	default:
		return 0, &OperandError{Kind: UnhandledParameter, Param: p}
	}
}

// WriteWord resolves p as a 16-bit lvalue and stores v into it.
func (res *Resolver) WriteWord(p Parameter, v uint16) error {
	switch p.Kind {
	case PReg:
		if p.Width != Word {
			return &OperandError{Kind: ParameterLengthMismatch, Param: p}
		}
		res.Regs.SetReg16(p.Reg, v)
		return nil
	case PSeg:
		res.Regs.SetReg16(p.Reg, v)
		return nil
	case PMem:
		seg, off := res.EffectiveAddress(p.Mem)
		res.Mem.Write16(seg, off, v)
		return nil
	default:
		return &OperandError{Kind: UnhandledParameter, Param: p}
	}
}

// ReadCount resolves a Grp2 shift/rotate count parameter to a byte value,
// for PReg(CL) or PImplied1 forms.
func (res *Resolver) ReadCount(p Parameter) (byte, error) {
	switch p.Kind {
	case PReg:
		return res.Regs.Reg8(p.Reg), nil
	case PImplied1:
		return 1, nil
	default:
		return 0, &OperandError{Kind: UnhandledParameter, Param: p}
	}
}
