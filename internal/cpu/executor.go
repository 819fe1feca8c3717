package cpu

import "github.com/MoochMcGee/ape/internal/memory"

// InterruptCaller is implemented by the interrupt layer (BIOS + MS-DOS).
// CallInterrupt reports whether it fully emulated the requested vector; the
// executor performs the real interrupt-vector-table jump itself only when
// it did not.
type InterruptCaller interface {
	CallInterrupt(regs *Registers, mem *memory.Memory, vector byte) (handled bool, err error)
}

// Executor consumes a decoded Instruction and mutates Registers/Memory
// accordingly. It never looks at raw opcode bytes; every case it switches
// on is an Op already resolved by the decoder.
type Executor struct {
	Regs       *Registers
	Mem        *memory.Memory
	Interrupts InterruptCaller
	Halted     bool
}

func NewExecutor(regs *Registers, mem *memory.Memory, ic InterruptCaller) *Executor {
	return &Executor{Regs: regs, Mem: mem, Interrupts: ic}
}

// Execute runs one instruction to completion. For string primitives with a
// repetition prefix, "completion" means one element of the repetition: the
// caller (the CPU loop) checks done and, when false, calls Execute again
// with the same Instruction on the next Tick without having advanced IP,
// giving the loop a suspension point between each element.
func (e *Executor) Execute(inst Instruction) (done bool, err error) {
	switch inst.Op {
	case OpMOVSB, OpMOVSW, OpCMPSB, OpCMPSW, OpLODSB, OpLODSW, OpSTOSB, OpSTOSW, OpSCASB, OpSCASW:
		return e.execString(inst)
	}

	res := NewResolver(e.Regs, e.Mem, inst.Segment)
	err = e.dispatch(inst, res)
	return true, err
}

func (e *Executor) dispatch(inst Instruction, res *Resolver) error {
	switch inst.Op {
	case OpADD, OpADC, OpSUB, OpSBB, OpCMP:
		return e.execArith(inst, res)
	case OpINC, OpDEC:
		return e.execIncDec(inst, res)
	case OpMUL, OpIMUL, OpDIV, OpIDIV:
		return e.execMulDiv(inst, res)
	case OpNEG:
		return e.execNeg(inst, res)
	case OpAND, OpOR, OpXOR, OpTEST:
		return e.execLogic(inst, res)
	case OpNOT:
		return e.execNot(inst, res)
	case OpSHL, OpSHR, OpSAR, OpROL, OpROR, OpRCL, OpRCR:
		return e.execShift(inst, res)
	case OpMOV, OpXCHG, OpLEA, OpLDS, OpLES, OpPUSH, OpPOP, OpPUSHF, OpPOPF, OpIN, OpOUT:
		return e.execTransfer(inst, res)
	case OpJMP, OpJMPFAR, OpJA, OpJAE, OpJB, OpJBE, OpJCXZ, OpJE, OpJG, OpJGE, OpJL, OpJLE,
		OpJNE, OpJO, OpJNO, OpJPE, OpJPO, OpJS, OpJNS,
		OpCALL, OpCALLFAR, OpRET, OpRETF, OpLOOP, OpLOOPE, OpLOOPNE,
		OpINT, OpINTO, OpIRET, OpHLT:
		return e.execControl(inst, res)
	case OpCLC:
		e.Regs.SetCF(false)
		return nil
	case OpSTC:
		e.Regs.SetCF(true)
		return nil
	case OpCLI:
		e.Regs.SetIF(false)
		return nil
	case OpSTI:
		e.Regs.SetIF(true)
		return nil
	case OpCLD:
		e.Regs.SetDF(false)
		return nil
	case OpSTD:
		e.Regs.SetDF(true)
		return nil
	case OpCMC:
		e.Regs.SetCF(!e.Regs.CF())
		return nil
	case OpNOP:
		return nil
	default:
		return &DecodeError{Kind: UnhandledInstruction}
	}
}

// push16 decrements SP by 2 and stores v at SS:SP, matching the 8086
// convention of a downward-growing stack.
func (e *Executor) push16(v uint16) {
	sp := e.Regs.SP() - 2
	e.Regs.SetSP(sp)
	e.Mem.Write16(e.Regs.SS(), sp, v)
}

// pop16 reads the word at SS:SP and increments SP by 2.
func (e *Executor) pop16() uint16 {
	v := e.Mem.Read16(e.Regs.SS(), e.Regs.SP())
	e.Regs.SetSP(e.Regs.SP() + 2)
	return v
}

// RaiseInterrupt services vector either through the registered interrupt
// layer (BIOS/MS-DOS, emulated as Go functions) or, when the layer does not
// claim it, through the real interrupt-vector-table mechanism: push
// FLAGS/CS/IP, clear IF and TF, and jump to the handler address stored at
// physical address vector*4.
func (e *Executor) RaiseInterrupt(vector byte) error {
	if e.Interrupts != nil {
		handled, err := e.Interrupts.CallInterrupt(e.Regs, e.Mem, vector)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}

	e.push16(e.Regs.Flags())
	e.push16(e.Regs.CS())
	e.push16(e.Regs.IP())
	e.Regs.SetIF(false)
	e.Regs.SetTF(false)

	addr := uint32(vector) * 4
	newIP := e.Mem.ReadPhys16(addr)
	newCS := e.Mem.ReadPhys16(addr + 2)
	e.Regs.SetIP(newIP)
	e.Regs.SetCS(newCS)
	return nil
}
