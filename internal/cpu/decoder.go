package cpu

// Decoder is not used by Decode, the package-level function that turns the
// byte stream at CS:IP into an Instruction. Decode never mutates CPU
// register or flag state and never writes to memory; it only reads bytes
// starting at the given segment:offset, exactly as many as the
// instruction's encoding requires.
type Decoder struct {
	mem   *memReader
	seg   SegmentPrefix
	rep   RepPrefix
	n     int // bytes consumed so far
}

// MemReader is the narrow read surface the decoder needs from memory,
// satisfied by *memory.Memory.
type MemReader interface {
	Read8(seg, off uint16) byte
	Read16(seg, off uint16) uint16
}

type memReader struct {
	m       MemReader
	cs, ip  uint16
}

func (r *memReader) fetch8() byte {
	v := r.m.Read8(r.cs, r.ip)
	r.ip++
	return v
}

func (r *memReader) fetch16() uint16 {
	v := r.m.Read16(r.cs, r.ip)
	r.ip += 2
	return v
}

// Decode decodes one instruction starting at cs:ip, returning the decoded
// Instruction and its encoded length. It does not advance the caller's IP;
// the caller advances by the returned Instruction.Length.
func Decode(m MemReader, cs, ip uint16) (Instruction, error) {
	r := &memReader{m: m, cs: cs, ip: ip}
	start := ip

	seg := SegNone
	rep := RepNone

prefixLoop:
	for {
		b := m.Read8(cs, r.ip)
		switch b {
		case 0x26:
			seg = SegES
		case 0x2E:
			seg = SegCS
		case 0x36:
			seg = SegSS
		case 0x3E:
			seg = SegDS
		case 0xF2:
			rep = RepNZ
		case 0xF3:
			rep = Rep
		default:
			break prefixLoop
		}
		r.ip++
	}

	opcode := r.fetch8()
	inst, err := decodeOpcode(r, opcode)
	if err != nil {
		if de, ok := err.(*DecodeError); ok {
			de.CS, de.IP = cs, start
		}
		return Instruction{}, err
	}
	inst.Segment = seg

	// 0xF3 (Rep) means REPE specifically when prefixing a comparing
	// string primitive; MOVS/LODS/STOS have no comparison result to
	// repeat on, so Rep stands for plain "repeat CX times" there.
	if rep == Rep && (inst.Op == OpCMPSB || inst.Op == OpCMPSW || inst.Op == OpSCASB || inst.Op == OpSCASW) {
		rep = RepZ
	}
	inst.Rep = rep
	inst.Length = int(r.ip - start)
	return inst, nil
}

// modrm holds the three decoded fields of a ModR/M byte.
type modrm struct {
	mod uint8
	reg uint8
	rm  uint8
}

func fetchModRM(r *memReader) modrm {
	b := r.fetch8()
	return modrm{mod: b >> 6 & 3, reg: b >> 3 & 7, rm: b & 7}
}

// decodeMem decodes the effective-address expression for a non-register
// ModR/M (mod != 3), consuming any displacement bytes the mod field calls
// for. It mirrors Resolver.EffectiveAddress's base/rm table exactly.
func decodeMem(r *memReader, mm modrm) MemOperand {
	var m MemOperand
	switch mm.rm {
	case 0:
		m.Base = BaseBXSI
	case 1:
		m.Base = BaseBXDI
	case 2:
		m.Base = BaseBPSI
	case 3:
		m.Base = BaseBPDI
	case 4:
		m.Base = BaseSI
	case 5:
		m.Base = BaseDI
	case 6:
		if mm.mod == 0 {
			m.Base = BaseDirect
			m.Addr16 = r.fetch16()
			return m
		}
		m.Base = BaseBP
	case 7:
		m.Base = BaseBX
	}

	switch mm.mod {
	case 1:
		m.HasDisp = true
		m.Disp = int16(int8(r.fetch8()))
	case 2:
		m.HasDisp = true
		m.Disp = int16(r.fetch16())
	}
	return m
}

// rmParam decodes a full ModR/M r/m operand (register when mod==3,
// otherwise memory), at the given operand width.
func rmParam(r *memReader, mm modrm, w Width) Parameter {
	if mm.mod == 3 {
		if w == Byte {
			return Parameter{Kind: PReg, Reg: Reg8(mm.rm), Width: Byte}
		}
		return Parameter{Kind: PReg, Reg: Reg16(mm.rm), Width: Word}
	}
	return Parameter{Kind: PMem, Mem: decodeMem(r, mm), Width: w}
}

func regParam(mm modrm, w Width) Parameter {
	if w == Byte {
		return Parameter{Kind: PReg, Reg: Reg8(mm.reg), Width: Byte}
	}
	return Parameter{Kind: PReg, Reg: Reg16(mm.reg), Width: Word}
}
