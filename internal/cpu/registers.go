package cpu

// Flag bit positions within the FLAGS register, matching the real 8086
// layout (bit 1 is reserved-always-1 and is not modeled as a named flag
// here, matching spec.md's flag set).
const (
	FlagCF = 1 << 0
	FlagPF = 1 << 2
	FlagAF = 1 << 4
	FlagZF = 1 << 6
	FlagSF = 1 << 7
	FlagTF = 1 << 8
	FlagIF = 1 << 9
	FlagDF = 1 << 10
	FlagOF = 1 << 11
)

// Registers holds the full general-purpose, segment, pointer, and flag
// state of one CPU. Eight-bit high/low halves are not separately stored;
// AH/AL/etc. are computed from the owning 16-bit word on every access, so
// the AH+AL==AX invariant holds structurally rather than by convention.
type Registers struct {
	ax, bx, cx, dx uint16
	si, di, bp, sp uint16
	ip             uint16

	cs, ds, es, ss uint16

	flags uint16

	// LastCS/LastIP shadow CS:IP as of the most recently fetched
	// instruction, updated before every fresh decode in Tick so a live
	// disassembly view (or a fatal-error report) can show where
	// execution actually was, not just IP at the point of fault.
	LastCS, LastIP uint16
}

// Reset zeroes every register and flag, matching power-on state.
func (r *Registers) Reset() {
	*r = Registers{}
}

// 16-bit general-purpose accessors.

func (r *Registers) AX() uint16   { return r.ax }
func (r *Registers) SetAX(v uint16) { r.ax = v }
func (r *Registers) BX() uint16   { return r.bx }
func (r *Registers) SetBX(v uint16) { r.bx = v }
func (r *Registers) CX() uint16   { return r.cx }
func (r *Registers) SetCX(v uint16) { r.cx = v }
func (r *Registers) DX() uint16   { return r.dx }
func (r *Registers) SetDX(v uint16) { r.dx = v }

func (r *Registers) SI() uint16     { return r.si }
func (r *Registers) SetSI(v uint16) { r.si = v }
func (r *Registers) DI() uint16     { return r.di }
func (r *Registers) SetDI(v uint16) { r.di = v }
func (r *Registers) BP() uint16     { return r.bp }
func (r *Registers) SetBP(v uint16) { r.bp = v }
func (r *Registers) SP() uint16     { return r.sp }
func (r *Registers) SetSP(v uint16) { r.sp = v }

func (r *Registers) IP() uint16     { return r.ip }
func (r *Registers) SetIP(v uint16) { r.ip = v }

// 8-bit high/low accessors, derived from the owning word via masking, not
// separate storage.

func (r *Registers) AL() byte { return byte(r.ax) }
func (r *Registers) AH() byte { return byte(r.ax >> 8) }
func (r *Registers) SetAL(v byte) { r.ax = (r.ax &^ 0x00FF) | uint16(v) }
func (r *Registers) SetAH(v byte) { r.ax = (r.ax &^ 0xFF00) | uint16(v)<<8 }

func (r *Registers) BL() byte { return byte(r.bx) }
func (r *Registers) BH() byte { return byte(r.bx >> 8) }
func (r *Registers) SetBL(v byte) { r.bx = (r.bx &^ 0x00FF) | uint16(v) }
func (r *Registers) SetBH(v byte) { r.bx = (r.bx &^ 0xFF00) | uint16(v)<<8 }

func (r *Registers) CL() byte { return byte(r.cx) }
func (r *Registers) CH() byte { return byte(r.cx >> 8) }
func (r *Registers) SetCL(v byte) { r.cx = (r.cx &^ 0x00FF) | uint16(v) }
func (r *Registers) SetCH(v byte) { r.cx = (r.cx &^ 0xFF00) | uint16(v)<<8 }

func (r *Registers) DL() byte { return byte(r.dx) }
func (r *Registers) DH() byte { return byte(r.dx >> 8) }
func (r *Registers) SetDL(v byte) { r.dx = (r.dx &^ 0x00FF) | uint16(v) }
func (r *Registers) SetDH(v byte) { r.dx = (r.dx &^ 0xFF00) | uint16(v)<<8 }

// Segment register accessors.

func (r *Registers) CS() uint16     { return r.cs }
func (r *Registers) SetCS(v uint16) { r.cs = v }
func (r *Registers) DS() uint16     { return r.ds }
func (r *Registers) SetDS(v uint16) { r.ds = v }
func (r *Registers) ES() uint16     { return r.es }
func (r *Registers) SetES(v uint16) { r.es = v }
func (r *Registers) SS() uint16     { return r.ss }
func (r *Registers) SetSS(v uint16) { r.ss = v }

// Reg16 and SetReg16 index by RegName for the decoder/resolver, which work
// in terms of RegName rather than individual accessor methods.
func (r *Registers) Reg16(name RegName) uint16 {
	switch name {
	case AX:
		return r.ax
	case BX:
		return r.bx
	case CX:
		return r.cx
	case DX:
		return r.dx
	case SI:
		return r.si
	case DI:
		return r.di
	case BP:
		return r.bp
	case SP:
		return r.sp
	case IP:
		return r.ip
	case CS:
		return r.cs
	case DS:
		return r.ds
	case ES:
		return r.es
	case SS:
		return r.ss
	case FLAGS:
		return r.flags
	default:
		return 0
	}
}

func (r *Registers) SetReg16(name RegName, v uint16) {
	switch name {
	case AX:
		r.ax = v
	case BX:
		r.bx = v
	case CX:
		r.cx = v
	case DX:
		r.dx = v
	case SI:
		r.si = v
	case DI:
		r.di = v
	case BP:
		r.bp = v
	case SP:
		r.sp = v
	case IP:
		r.ip = v
	case CS:
		r.cs = v
	case DS:
		r.ds = v
	case ES:
		r.es = v
	case SS:
		r.ss = v
	case FLAGS:
		r.flags = v
	}
}

func (r *Registers) Reg8(name RegName) byte {
	switch name {
	case AL:
		return r.AL()
	case AH:
		return r.AH()
	case BL:
		return r.BL()
	case BH:
		return r.BH()
	case CL:
		return r.CL()
	case CH:
		return r.CH()
	case DL:
		return r.DL()
	case DH:
		return r.DH()
	default:
		return 0
	}
}

func (r *Registers) SetReg8(name RegName, v byte) {
	switch name {
	case AL:
		r.SetAL(v)
	case AH:
		r.SetAH(v)
	case BL:
		r.SetBL(v)
	case BH:
		r.SetBH(v)
	case CL:
		r.SetCL(v)
	case CH:
		r.SetCH(v)
	case DL:
		r.SetDL(v)
	case DH:
		r.SetDH(v)
	}
}

// Flags accessors.

func (r *Registers) Flags() uint16     { return r.flags }
func (r *Registers) SetFlags(v uint16) { r.flags = v }

func (r *Registers) getFlag(mask uint16) bool { return r.flags&mask != 0 }
func (r *Registers) setFlag(mask uint16, on bool) {
	if on {
		r.flags |= mask
	} else {
		r.flags &^= mask
	}
}

func (r *Registers) CF() bool       { return r.getFlag(FlagCF) }
func (r *Registers) SetCF(b bool)   { r.setFlag(FlagCF, b) }
func (r *Registers) PF() bool       { return r.getFlag(FlagPF) }
func (r *Registers) SetPF(b bool)   { r.setFlag(FlagPF, b) }
func (r *Registers) AF() bool       { return r.getFlag(FlagAF) }
func (r *Registers) SetAF(b bool)   { r.setFlag(FlagAF, b) }
func (r *Registers) ZF() bool       { return r.getFlag(FlagZF) }
func (r *Registers) SetZF(b bool)   { r.setFlag(FlagZF, b) }
func (r *Registers) SF() bool       { return r.getFlag(FlagSF) }
func (r *Registers) SetSF(b bool)   { r.setFlag(FlagSF, b) }
func (r *Registers) TF() bool       { return r.getFlag(FlagTF) }
func (r *Registers) SetTF(b bool)   { r.setFlag(FlagTF, b) }
func (r *Registers) IF() bool       { return r.getFlag(FlagIF) }
func (r *Registers) SetIF(b bool)   { r.setFlag(FlagIF, b) }
func (r *Registers) DF() bool       { return r.getFlag(FlagDF) }
func (r *Registers) SetDF(b bool)   { r.setFlag(FlagDF, b) }
func (r *Registers) OF() bool       { return r.getFlag(FlagOF) }
func (r *Registers) SetOF(b bool)   { r.setFlag(FlagOF, b) }

// parity reports even parity of the low byte of v, as the PF flag requires:
// true when the number of set bits in the low 8 bits is even.
func parity(v byte) bool {
	v ^= v >> 4
	v ^= v >> 2
	v ^= v >> 1
	return v&1 == 0
}

// arith8 computes a+b+carryIn (sub=false) or a-b-carryIn (sub=true) as an
// 8-bit result, sets CF/ZF/SF/PF/OF/AF accordingly, and returns the result.
// carryIn is the incoming CF for ADC/SBB, or 0 for ADD/SUB/CMP.
func arith8(r *Registers, a, b, carryIn byte, sub bool) byte {
	var wide uint16
	if sub {
		wide = uint16(a) - uint16(b) - uint16(carryIn)
		r.SetCF(uint16(a) < uint16(b)+uint16(carryIn))
	} else {
		wide = uint16(a) + uint16(b) + uint16(carryIn)
		r.SetCF(wide > 0xFF)
	}
	result := byte(wide)
	r.SetZF(result == 0)
	r.SetSF(result&0x80 != 0)
	r.SetPF(parity(result))

	signA, signB, signR := a&0x80 != 0, b&0x80 != 0, result&0x80 != 0
	if sub {
		r.SetAF((a & 0x0F) < (b&0x0F)+carryIn)
		r.SetOF(signA != signB && signR != signA)
	} else {
		r.SetAF((a&0x0F)+(b&0x0F)+carryIn > 0x0F)
		r.SetOF(signA == signB && signR != signA)
	}
	return result
}

// arith16 is arith8's 16-bit counterpart.
func arith16(r *Registers, a, b, carryIn uint16, sub bool) uint16 {
	var wide uint32
	if sub {
		wide = uint32(a) - uint32(b) - uint32(carryIn)
		r.SetCF(uint32(a) < uint32(b)+uint32(carryIn))
	} else {
		wide = uint32(a) + uint32(b) + uint32(carryIn)
		r.SetCF(wide > 0xFFFF)
	}
	result := uint16(wide)
	r.SetZF(result == 0)
	r.SetSF(result&0x8000 != 0)
	r.SetPF(parity(byte(result)))

	signA, signB, signR := a&0x8000 != 0, b&0x8000 != 0, result&0x8000 != 0
	if sub {
		r.SetAF((a & 0x0F) < (b&0x0F)+carryIn)
		r.SetOF(signA != signB && signR != signA)
	} else {
		r.SetAF((a&0x0F)+(b&0x0F)+carryIn > 0x0F)
		r.SetOF(signA == signB && signR != signA)
	}
	return result
}

// setFlagsLogic8 and setFlagsLogic16 set ZF/SF/PF from a logical result and
// unconditionally clear CF/OF, per the AND/OR/XOR/TEST rule.
func setFlagsLogic8(r *Registers, result byte) {
	r.SetCF(false)
	r.SetOF(false)
	r.SetZF(result == 0)
	r.SetSF(result&0x80 != 0)
	r.SetPF(parity(result))
}

func setFlagsLogic16(r *Registers, result uint16) {
	r.SetCF(false)
	r.SetOF(false)
	r.SetZF(result == 0)
	r.SetSF(result&0x8000 != 0)
	r.SetPF(parity(byte(result)))
}
