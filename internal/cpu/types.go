// Package cpu implements the 8086/80186-class real-mode interpreter:
// register and flag storage, an instruction decoder, a parameter resolver,
// and per-mnemonic executor functions, wired together by a cooperative
// execution loop.
package cpu

// Type tags the instruction-set level the CPU is configured for. It is a
// pure tag: shift counts mask to 5 bits identically on every type, and no
// other behaviour currently branches on it.
type Type uint32

const (
	I8086 Type = iota
	I186
	I286
	I386
)

func (t Type) String() string {
	switch t {
	case I8086:
		return "8086"
	case I186:
		return "80186"
	case I286:
		return "80286"
	case I386:
		return "80386"
	default:
		return "unknown"
	}
}

// SegmentPrefix records a decoded segment-override prefix byte (0x26, 0x2E,
// 0x36, 0x3E). None means the parameter's own default segment applies.
type SegmentPrefix uint8

const (
	SegNone SegmentPrefix = iota
	SegCS
	SegDS
	SegES
	SegSS
)

// RepPrefix records a decoded repetition prefix byte. Rep (0xF3) is
// reinterpreted as RepZ when the instruction it prefixes is a comparing
// string primitive (CMPS/SCAS); it stays Rep for MOVS/LODS/STOS, which have
// no notion of a comparison result to repeat on.
type RepPrefix uint8

const (
	RepNone RepPrefix = iota
	Rep
	RepZ
	RepNZ
)

// RegName names a register operand independent of its storage width; the
// width is implied by which RegName is used (AL is always 8 bits, AX always
// 16).
type RegName uint8

const (
	RegNone RegName = iota

	AL
	CL
	DL
	BL
	AH
	CH
	DH
	BH

	AX
	CX
	DX
	BX
	SP
	BP
	SI
	DI

	CS
	DS
	ES
	SS

	IP
	FLAGS
)

// reg16ByIndex and reg8ByIndex mirror the teacher's getReg16/getReg8
// index-based switches: ModR/M and the register-in-opcode forms encode
// registers as a 3-bit index in this exact order.
var reg16ByIndex = [8]RegName{AX, CX, DX, BX, SP, BP, SI, DI}
var reg8ByIndex = [8]RegName{AL, CL, DL, BL, AH, CH, DH, BH}

func Reg16(index uint8) RegName { return reg16ByIndex[index&7] }
func Reg8(index uint8) RegName  { return reg8ByIndex[index&7] }

// segByIndex mirrors the sreg encoding used by MOV/PUSH/POP-segment and by
// segment-prefix bytes, in ES/CS/SS/DS order where relevant forms use it.
var segByIndex = [4]RegName{ES, CS, SS, DS}

func SegReg(index uint8) RegName { return segByIndex[index&3] }

// Width distinguishes byte vs. word operand size; there is no dword operand
// size at this instruction-set level.
type Width uint8

const (
	Byte Width = iota
	Word
)

// MemBase enumerates the eight 8086 effective-address base expressions plus
// the direct [addr16] form, matching Resolver.EffectiveAddress's table.
type MemBase uint8

const (
	BaseBXSI MemBase = iota // [BX+SI]
	BaseBXDI                // [BX+DI]
	BaseBPSI                // [BP+SI], default segment SS
	BaseBPDI                // [BP+DI], default segment SS
	BaseSI                  // [SI]
	BaseDI                  // [DI]
	BaseBP                  // [BP+disp] (mod!=0 only; mod==0 rm==6 is BaseDirect), default segment SS
	BaseBX                  // [BX]
	BaseDirect              // [addr16], mod==0 rm==6 special case
)

// MemOperand describes a decoded effective-address expression, fully
// resolved at decode time except for the segment-prefix override, which the
// resolver applies.
type MemOperand struct {
	Base    MemBase
	HasDisp bool
	Disp    int16 // signed displacement, sign-extended from disp8 when narrow
	Addr16  uint16 // valid only when Base == BaseDirect
}

// DefaultSegment returns the segment a memory operand uses absent any
// segment-override prefix: SS for BP-based forms, DS otherwise.
func (m MemOperand) DefaultSegment() RegName {
	switch m.Base {
	case BaseBPSI, BaseBPDI, BaseBP:
		return SS
	default:
		return DS
	}
}

// ParamKind discriminates the shape of a decoded Parameter.
type ParamKind uint8

const (
	PNone ParamKind = iota
	PReg           // register operand named by Reg
	PSeg           // segment register operand named by Reg
	PMem           // memory operand described by Mem
	PImmByte       // unsigned 8-bit immediate in Imm
	PImmSByte      // signed 8-bit immediate, sign-extended into Imm
	PImmWord       // unsigned 16-bit immediate in Imm
	PRelByte       // signed 8-bit relative branch displacement in Imm
	PRelWord       // signed 16-bit relative branch displacement in Imm
	PFarPtr        // far pointer, segment in Imm, offset in Disp16
	PImplied0      // fixed implied operand value 0
	PImplied1
	PImplied3
)

// Parameter is one decoded operand of an Instruction. Exactly one of the
// Reg/Mem/Imm fields is meaningful, selected by Kind.
type Parameter struct {
	Kind    ParamKind
	Reg     RegName
	Mem     MemOperand
	Imm     uint16
	Disp16  uint16 // second half of a PFarPtr operand (the offset)
	Width   Width
}

// Op identifies the decoded mnemonic an Instruction carries. The executor
// dispatches on Op, not on the raw opcode byte, so group sub-opcodes are
// already resolved by the time an Instruction exists.
type Op uint16

const (
	OpInvalid Op = iota

	OpADD
	OpADC
	OpSUB
	OpSBB
	OpCMP
	OpINC
	OpDEC
	OpMUL
	OpIMUL
	OpDIV
	OpIDIV
	OpNEG

	OpAND
	OpOR
	OpXOR
	OpTEST
	OpNOT

	OpSHL
	OpSHR
	OpSAR
	OpROL
	OpROR
	OpRCL
	OpRCR

	OpMOVSB
	OpMOVSW
	OpCMPSB
	OpCMPSW
	OpLODSB
	OpLODSW
	OpSTOSB
	OpSTOSW
	OpSCASB
	OpSCASW

	OpMOV
	OpXCHG
	OpLEA
	OpLDS
	OpLES
	OpPUSH
	OpPOP
	OpPUSHF
	OpPOPF
	OpIN
	OpOUT

	OpJMP
	OpJMPFAR
	OpJA
	OpJAE
	OpJB
	OpJBE
	OpJCXZ
	OpJE
	OpJG
	OpJGE
	OpJL
	OpJLE
	OpJNE
	OpJO
	OpJNO
	OpJPE
	OpJPO
	OpJS
	OpJNS

	OpCALL
	OpCALLFAR
	OpRET
	OpRETF
	OpLOOP
	OpLOOPE
	OpLOOPNE
	OpINT
	OpINTO
	OpIRET
	OpHLT

	OpCLC
	OpSTC
	OpCLI
	OpSTI
	OpCLD
	OpSTD
	OpCMC
	OpNOP
)

// Instruction is the immutable result of decoding one instruction at
// CS:IP. Decode never mutates CPU state; Execute consumes this value.
type Instruction struct {
	Op         Op
	Segment    SegmentPrefix
	Rep        RepPrefix
	Params     []Parameter
	Width      Width
	Length     int // total encoded length in bytes, including prefixes
}
