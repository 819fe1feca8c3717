package cpu

// arithOpByBase maps an arithmetic-family opcode with its low 3 bits cleared
// (0x00, 0x08, 0x10, ... 0x38) to its Op, mirroring the 8086 opcode map's
// regular 8-byte stride for ADD/OR/ADC/SBB/AND/SUB/XOR/CMP.
var arithOpByBase = map[byte]Op{
	0x00: OpADD,
	0x08: OpOR,
	0x10: OpADC,
	0x18: OpSBB,
	0x20: OpAND,
	0x28: OpSUB,
	0x30: OpXOR,
	0x38: OpCMP,
}

// jccByNibble maps the low nibble of a 0x70-0x7F short-jump opcode to its
// predicate, in Intel's defined order.
var jccByNibble = [16]Op{
	OpJO, OpJNO, OpJB, OpJAE, OpJE, OpJNE, OpJBE, OpJA,
	OpJS, OpJNS, OpJPE, OpJPO, OpJL, OpJGE, OpJLE, OpJG,
}

func decodeOpcode(r *memReader, opcode byte) (Instruction, error) {
	// Segment-register PUSH/POP: 0x06/0x07 (ES), 0x0E (CS, no matching POP
	// on this instruction set), 0x16/0x17 (SS), 0x1E/0x1F (DS). These sit
	// inside the arithmetic family's opcode range and must be peeled off
	// before the base&^0x07 lookup below, or they collide with it (0x06
	// reduces to the same base as 0x00 ADD, 0x0E to 0x08 OR, and so on).
	switch opcode {
	case 0x06, 0x0E, 0x16, 0x1E:
		return Instruction{Op: OpPUSH, Width: Word, Params: []Parameter{segPushPopOperand(opcode)}}, nil
	case 0x07, 0x17, 0x1F:
		return Instruction{Op: OpPOP, Width: Word, Params: []Parameter{segPushPopOperand(opcode)}}, nil
	}

	// Arithmetic family: ADD/OR/ADC/SBB/AND/SUB/XOR/CMP, 6 forms each.
	if base := opcode &^ 0x07; opcode < 0x40 {
		if op, ok := arithOpByBase[base]; ok {
			return decodeArithForm(r, op, opcode&0x07)
		}
	}

	switch {
	case opcode >= 0x40 && opcode <= 0x47:
		return Instruction{Op: OpINC, Width: Word, Params: []Parameter{regOperand16(opcode - 0x40)}}, nil
	case opcode >= 0x48 && opcode <= 0x4F:
		return Instruction{Op: OpDEC, Width: Word, Params: []Parameter{regOperand16(opcode - 0x48)}}, nil
	case opcode >= 0x50 && opcode <= 0x57:
		return Instruction{Op: OpPUSH, Width: Word, Params: []Parameter{regOperand16(opcode - 0x50)}}, nil
	case opcode >= 0x58 && opcode <= 0x5F:
		return Instruction{Op: OpPOP, Width: Word, Params: []Parameter{regOperand16(opcode - 0x58)}}, nil
	case opcode >= 0x70 && opcode <= 0x7F:
		disp := int8(r.fetch8())
		return Instruction{Op: jccByNibble[opcode-0x70], Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case opcode >= 0xB0 && opcode <= 0xB7:
		imm := r.fetch8()
		return Instruction{Op: OpMOV, Width: Byte, Params: []Parameter{regOperand8(opcode - 0xB0), {Kind: PImmByte, Imm: uint16(imm)}}}, nil
	case opcode >= 0xB8 && opcode <= 0xBF:
		imm := r.fetch16()
		return Instruction{Op: OpMOV, Width: Word, Params: []Parameter{regOperand16(opcode - 0xB8), {Kind: PImmWord, Imm: imm}}}, nil
	case opcode >= 0x91 && opcode <= 0x97:
		return Instruction{Op: OpXCHG, Width: Word, Params: []Parameter{{Kind: PReg, Reg: AX, Width: Word}, regOperand16(opcode - 0x90)}}, nil
	}

	switch opcode {
	case 0x80:
		return decodeGroup1(r, Byte, false)
	case 0x81:
		return decodeGroup1(r, Word, false)
	case 0x82:
		return decodeGroup1(r, Byte, false)
	case 0x83:
		return decodeGroup1(r, Word, true)
	case 0x84:
		return decodeTest(r, Byte)
	case 0x85:
		return decodeTest(r, Word)
	case 0x86:
		return decodeModRMBinary(r, OpXCHG, Byte, true)
	case 0x87:
		return decodeModRMBinary(r, OpXCHG, Word, true)
	case 0x88:
		return decodeModRMBinary(r, OpMOV, Byte, false)
	case 0x89:
		return decodeModRMBinary(r, OpMOV, Word, false)
	case 0x8A:
		return decodeModRMBinary(r, OpMOV, Byte, true)
	case 0x8B:
		return decodeModRMBinary(r, OpMOV, Word, true)
	case 0x8D:
		mm := fetchModRM(r)
		dst := regParam(mm, Word)
		src := rmParam(r, mm, Word)
		return Instruction{Op: OpLEA, Width: Word, Params: []Parameter{dst, src}}, nil
	case 0x8E:
		mm := fetchModRM(r)
		dst := Parameter{Kind: PSeg, Reg: SegReg(mm.reg), Width: Word}
		src := rmParam(r, mm, Word)
		return Instruction{Op: OpMOV, Width: Word, Params: []Parameter{dst, src}}, nil
	case 0x8C:
		mm := fetchModRM(r)
		src := Parameter{Kind: PSeg, Reg: SegReg(mm.reg), Width: Word}
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpMOV, Width: Word, Params: []Parameter{dst, src}}, nil
	case 0x8F:
		mm := fetchModRM(r)
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpPOP, Width: Word, Params: []Parameter{dst}}, nil
	case 0x90:
		return Instruction{Op: OpNOP}, nil
	case 0x9A:
		off := r.fetch16()
		seg := r.fetch16()
		return Instruction{Op: OpCALLFAR, Params: []Parameter{{Kind: PFarPtr, Imm: seg, Disp16: off}}}, nil
	case 0x9C:
		return Instruction{Op: OpPUSHF}, nil
	case 0x9D:
		return Instruction{Op: OpPOPF}, nil
	case 0xA4:
		return Instruction{Op: OpMOVSB, Width: Byte}, nil
	case 0xA5:
		return Instruction{Op: OpMOVSW, Width: Word}, nil
	case 0xA6:
		return Instruction{Op: OpCMPSB, Width: Byte}, nil
	case 0xA7:
		return Instruction{Op: OpCMPSW, Width: Word}, nil
	case 0xA8:
		imm := r.fetch8()
		return Instruction{Op: OpTEST, Width: Byte, Params: []Parameter{{Kind: PReg, Reg: AL, Width: Byte}, {Kind: PImmByte, Imm: uint16(imm)}}}, nil
	case 0xA9:
		imm := r.fetch16()
		return Instruction{Op: OpTEST, Width: Word, Params: []Parameter{{Kind: PReg, Reg: AX, Width: Word}, {Kind: PImmWord, Imm: imm}}}, nil
	case 0xAA:
		return Instruction{Op: OpSTOSB, Width: Byte}, nil
	case 0xAB:
		return Instruction{Op: OpSTOSW, Width: Word}, nil
	case 0xAC:
		return Instruction{Op: OpLODSB, Width: Byte}, nil
	case 0xAD:
		return Instruction{Op: OpLODSW, Width: Word}, nil
	case 0xAE:
		return Instruction{Op: OpSCASB, Width: Byte}, nil
	case 0xAF:
		return Instruction{Op: OpSCASW, Width: Word}, nil
	case 0xC2:
		imm := r.fetch16()
		return Instruction{Op: OpRET, Params: []Parameter{{Kind: PImmWord, Imm: imm}}}, nil
	case 0xC3:
		return Instruction{Op: OpRET}, nil
	case 0xC4:
		mm := fetchModRM(r)
		dst := regParam(mm, Word)
		src := rmParam(r, mm, Word)
		return Instruction{Op: OpLES, Width: Word, Params: []Parameter{dst, src}}, nil
	case 0xC5:
		mm := fetchModRM(r)
		dst := regParam(mm, Word)
		src := rmParam(r, mm, Word)
		return Instruction{Op: OpLDS, Width: Word, Params: []Parameter{dst, src}}, nil
	case 0xC6:
		mm := fetchModRM(r)
		dst := rmParam(r, mm, Byte)
		imm := r.fetch8()
		return Instruction{Op: OpMOV, Width: Byte, Params: []Parameter{dst, {Kind: PImmByte, Imm: uint16(imm)}}}, nil
	case 0xC7:
		mm := fetchModRM(r)
		dst := rmParam(r, mm, Word)
		imm := r.fetch16()
		return Instruction{Op: OpMOV, Width: Word, Params: []Parameter{dst, {Kind: PImmWord, Imm: imm}}}, nil
	case 0xCA:
		imm := r.fetch16()
		return Instruction{Op: OpRETF, Params: []Parameter{{Kind: PImmWord, Imm: imm}}}, nil
	case 0xCB:
		return Instruction{Op: OpRETF}, nil
	case 0xCC:
		return Instruction{Op: OpINT, Params: []Parameter{{Kind: PImmByte, Imm: 3}}}, nil
	case 0xCD:
		imm := r.fetch8()
		return Instruction{Op: OpINT, Params: []Parameter{{Kind: PImmByte, Imm: uint16(imm)}}}, nil
	case 0xCE:
		return Instruction{Op: OpINTO}, nil
	case 0xCF:
		return Instruction{Op: OpIRET}, nil
	case 0xD0:
		return decodeGroup2(r, Byte, shiftCount{implied1: true})
	case 0xD1:
		return decodeGroup2(r, Word, shiftCount{implied1: true})
	case 0xD2:
		return decodeGroup2(r, Byte, shiftCount{fromCL: true})
	case 0xD3:
		return decodeGroup2(r, Word, shiftCount{fromCL: true})
	case 0xE0:
		disp := int8(r.fetch8())
		return Instruction{Op: OpLOOPNE, Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case 0xE1:
		disp := int8(r.fetch8())
		return Instruction{Op: OpLOOPE, Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case 0xE2:
		disp := int8(r.fetch8())
		return Instruction{Op: OpLOOP, Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case 0xE3:
		disp := int8(r.fetch8())
		return Instruction{Op: OpJCXZ, Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case 0xE4:
		port := r.fetch8()
		return Instruction{Op: OpIN, Width: Byte, Params: []Parameter{{Kind: PImmByte, Imm: uint16(port)}}}, nil
	case 0xE5:
		port := r.fetch8()
		return Instruction{Op: OpIN, Width: Word, Params: []Parameter{{Kind: PImmByte, Imm: uint16(port)}}}, nil
	case 0xE6:
		port := r.fetch8()
		return Instruction{Op: OpOUT, Width: Byte, Params: []Parameter{{Kind: PImmByte, Imm: uint16(port)}}}, nil
	case 0xE7:
		port := r.fetch8()
		return Instruction{Op: OpOUT, Width: Word, Params: []Parameter{{Kind: PImmByte, Imm: uint16(port)}}}, nil
	case 0xE8:
		disp := int16(r.fetch16())
		return Instruction{Op: OpCALL, Params: []Parameter{{Kind: PRelWord, Imm: uint16(disp)}}}, nil
	case 0xE9:
		disp := int16(r.fetch16())
		return Instruction{Op: OpJMP, Params: []Parameter{{Kind: PRelWord, Imm: uint16(disp)}}}, nil
	case 0xEA:
		off := r.fetch16()
		seg := r.fetch16()
		return Instruction{Op: OpJMPFAR, Params: []Parameter{{Kind: PFarPtr, Imm: seg, Disp16: off}}}, nil
	case 0xEB:
		disp := int8(r.fetch8())
		return Instruction{Op: OpJMP, Params: []Parameter{{Kind: PRelByte, Imm: uint16(disp)}}}, nil
	case 0xEC:
		return Instruction{Op: OpIN, Width: Byte, Params: []Parameter{{Kind: PReg, Reg: DX, Width: Word}}}, nil
	case 0xED:
		return Instruction{Op: OpIN, Width: Word, Params: []Parameter{{Kind: PReg, Reg: DX, Width: Word}}}, nil
	case 0xEE:
		return Instruction{Op: OpOUT, Width: Byte, Params: []Parameter{{Kind: PReg, Reg: DX, Width: Word}}}, nil
	case 0xEF:
		return Instruction{Op: OpOUT, Width: Word, Params: []Parameter{{Kind: PReg, Reg: DX, Width: Word}}}, nil
	case 0xF4:
		return Instruction{Op: OpHLT}, nil
	case 0xF5:
		return Instruction{Op: OpCMC}, nil
	case 0xF6:
		return decodeGroup3(r, Byte)
	case 0xF7:
		return decodeGroup3(r, Word)
	case 0xF8:
		return Instruction{Op: OpCLC}, nil
	case 0xF9:
		return Instruction{Op: OpSTC}, nil
	case 0xFA:
		return Instruction{Op: OpCLI}, nil
	case 0xFB:
		return Instruction{Op: OpSTI}, nil
	case 0xFC:
		return Instruction{Op: OpCLD}, nil
	case 0xFD:
		return Instruction{Op: OpSTD}, nil
	case 0xFE:
		return decodeGroup4(r)
	case 0xFF:
		return decodeGroup5(r)
	}

	return Instruction{}, &DecodeError{Kind: UnhandledInstruction, Opcode: opcode}
}

// segPushPopOperand returns the PSeg parameter for one of the fixed
// segment-register PUSH/POP opcodes.
func segPushPopOperand(opcode byte) Parameter {
	var seg RegName
	switch opcode {
	case 0x06, 0x07:
		seg = ES
	case 0x0E:
		seg = CS
	case 0x16, 0x17:
		seg = SS
	case 0x1E, 0x1F:
		seg = DS
	}
	return Parameter{Kind: PSeg, Reg: seg, Width: Word}
}

func regOperand16(index byte) Parameter {
	return Parameter{Kind: PReg, Reg: Reg16(index), Width: Word}
}

func regOperand8(index byte) Parameter {
	return Parameter{Kind: PReg, Reg: Reg8(index), Width: Byte}
}

// decodeArithForm decodes one of the six forms sharing an arithmetic
// family's opcode base: form selects Eb,Gb / Ev,Gv / Gb,Eb / Gv,Ev / AL,Ib
// / AX,Iv by the low 3 bits of the opcode.
func decodeArithForm(r *memReader, op Op, form byte) (Instruction, error) {
	switch form {
	case 0:
		return decodeModRMBinary(r, op, Byte, false)
	case 1:
		return decodeModRMBinary(r, op, Word, false)
	case 2:
		return decodeModRMBinary(r, op, Byte, true)
	case 3:
		return decodeModRMBinary(r, op, Word, true)
	case 4:
		imm := r.fetch8()
		return Instruction{Op: op, Width: Byte, Params: []Parameter{{Kind: PReg, Reg: AL, Width: Byte}, {Kind: PImmByte, Imm: uint16(imm)}}}, nil
	case 5:
		imm := r.fetch16()
		return Instruction{Op: op, Width: Word, Params: []Parameter{{Kind: PReg, Reg: AX, Width: Word}, {Kind: PImmWord, Imm: imm}}}, nil
	}
	return Instruction{}, &DecodeError{Kind: UnhandledInstruction}
}

// decodeModRMBinary decodes a two-operand ModR/M instruction. regIsDest
// selects Gv,Ev (register field is the destination) vs. Ev,Gv (r/m field is
// the destination).
func decodeModRMBinary(r *memReader, op Op, w Width, regIsDest bool) (Instruction, error) {
	mm := fetchModRM(r)
	reg := regParam(mm, w)
	rm := rmParam(r, mm, w)
	if regIsDest {
		return Instruction{Op: op, Width: w, Params: []Parameter{reg, rm}}, nil
	}
	return Instruction{Op: op, Width: w, Params: []Parameter{rm, reg}}, nil
}

func decodeTest(r *memReader, w Width) (Instruction, error) {
	mm := fetchModRM(r)
	reg := regParam(mm, w)
	rm := rmParam(r, mm, w)
	return Instruction{Op: OpTEST, Width: w, Params: []Parameter{rm, reg}}, nil
}
