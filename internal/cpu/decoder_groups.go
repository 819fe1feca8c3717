package cpu

// Group opcodes (0x80-0x83, 0xD0-0xD3, 0xF6-0xF7, 0xFE-0xFF) carry their
// real mnemonic in the ModR/M reg field rather than the opcode byte; these
// functions resolve that secondary dispatch at decode time so the executor
// never has to look at a ModR/M byte again.

// grp1OpByReg maps the 3-bit ModR/M reg field of a Grp1 (0x80-0x83)
// instruction to its Op, in the fixed ADD/OR/ADC/SBB/AND/SUB/XOR/CMP order.
var grp1OpByReg = [8]Op{OpADD, OpOR, OpADC, OpSBB, OpAND, OpSUB, OpXOR, OpCMP}

func decodeGroup1(r *memReader, w Width, immIsByteSignExtended bool) (Instruction, error) {
	mm := fetchModRM(r)
	dst := rmParam(r, mm, w)
	op := grp1OpByReg[mm.reg]

	var imm Parameter
	if w == Byte {
		imm = Parameter{Kind: PImmByte, Imm: uint16(r.fetch8())}
	} else if immIsByteSignExtended {
		imm = Parameter{Kind: PImmSByte, Imm: uint16(int16(int8(r.fetch8())))}
	} else {
		imm = Parameter{Kind: PImmWord, Imm: r.fetch16()}
	}
	return Instruction{Op: op, Width: w, Params: []Parameter{dst, imm}}, nil
}

// grp2OpByReg maps the Grp2 (0xD0-0xD3) reg field to its shift/rotate Op.
var grp2OpByReg = [8]Op{OpROL, OpROR, OpRCL, OpRCR, OpSHL, OpSHR, OpInvalid, OpSAR}

// shiftCount describes how a Grp2 instruction's shift count is encoded:
// implied 1 or taken from CL. Immediate-count forms are not decoded.
type shiftCount struct {
	implied1 bool
	fromCL   bool
}

func decodeGroup2(r *memReader, w Width, sc shiftCount) (Instruction, error) {
	mm := fetchModRM(r)
	dst := rmParam(r, mm, w)
	op := grp2OpByReg[mm.reg]
	if op == OpInvalid {
		return Instruction{}, &DecodeError{Kind: UnhandledGroupSubopcode, SubOp: mm.reg, Opcode: 0xD0}
	}

	var count Parameter
	switch {
	case sc.implied1:
		count = Parameter{Kind: PImplied1, Imm: 1}
	case sc.fromCL:
		count = Parameter{Kind: PReg, Reg: CL, Width: Byte}
	}
	return Instruction{Op: op, Width: w, Params: []Parameter{dst, count}}, nil
}

// grp3OpByReg maps the Grp3 (0xF6/0xF7) reg field to its Op. Reg value 1
// (alternate TEST encoding) behaves identically to 0.
var grp3OpByReg = [8]Op{OpTEST, OpTEST, OpNOT, OpNEG, OpMUL, OpIMUL, OpDIV, OpIDIV}

func decodeGroup3(r *memReader, w Width) (Instruction, error) {
	mm := fetchModRM(r)
	dst := rmParam(r, mm, w)
	op := grp3OpByReg[mm.reg]

	if op == OpTEST {
		var imm Parameter
		if w == Byte {
			imm = Parameter{Kind: PImmByte, Imm: uint16(r.fetch8())}
		} else {
			imm = Parameter{Kind: PImmWord, Imm: r.fetch16()}
		}
		return Instruction{Op: op, Width: w, Params: []Parameter{dst, imm}}, nil
	}
	return Instruction{Op: op, Width: w, Params: []Parameter{dst}}, nil
}

// decodeGroup4 decodes 0xFE (Grp4: byte INC/DEC only).
func decodeGroup4(r *memReader) (Instruction, error) {
	mm := fetchModRM(r)
	dst := rmParam(r, mm, Byte)
	switch mm.reg {
	case 0:
		return Instruction{Op: OpINC, Width: Byte, Params: []Parameter{dst}}, nil
	case 1:
		return Instruction{Op: OpDEC, Width: Byte, Params: []Parameter{dst}}, nil
	}
	return Instruction{}, &DecodeError{Kind: UnhandledGroupSubopcode, SubOp: mm.reg, Opcode: 0xFE}
}

// decodeGroup5 decodes 0xFF (Grp5: word INC/DEC/CALL/CALLFAR/JMP/JMPFAR/PUSH).
func decodeGroup5(r *memReader) (Instruction, error) {
	mm := fetchModRM(r)
	switch mm.reg {
	case 0:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpINC, Width: Word, Params: []Parameter{dst}}, nil
	case 1:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpDEC, Width: Word, Params: []Parameter{dst}}, nil
	case 2:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpCALL, Width: Word, Params: []Parameter{dst}}, nil
	case 3:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpCALLFAR, Width: Word, Params: []Parameter{dst}}, nil
	case 4:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpJMP, Width: Word, Params: []Parameter{dst}}, nil
	case 5:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpJMPFAR, Width: Word, Params: []Parameter{dst}}, nil
	case 6:
		dst := rmParam(r, mm, Word)
		return Instruction{Op: OpPUSH, Width: Word, Params: []Parameter{dst}}, nil
	}
	return Instruction{}, &DecodeError{Kind: UnhandledGroupSubopcode, SubOp: mm.reg, Opcode: 0xFF}
}
