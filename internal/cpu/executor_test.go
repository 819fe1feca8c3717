package cpu

import (
	"testing"

	"github.com/MoochMcGee/ape/internal/memory"
)

func newTestCPU() (*Registers, *memory.Memory, *Executor) {
	regs := &Registers{}
	mem := memory.New()
	return regs, mem, NewExecutor(regs, mem, nil)
}

func TestExecuteADDSetsFlags(t *testing.T) {
	regs, _, ex := newTestCPU()
	regs.SetAL(0x7F)
	inst := Instruction{
		Op:    OpADD,
		Width: Byte,
		Params: []Parameter{
			{Kind: PReg, Reg: AL, Width: Byte},
			{Kind: PImmByte, Imm: 1},
		},
	}
	if _, err := ex.Execute(inst); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.AL() != 0x80 {
		t.Errorf("AL = 0x%02X, want 0x80", regs.AL())
	}
	if !regs.OF() {
		t.Error("OF should be set after signed overflow 0x7F+1")
	}
	if regs.CF() {
		t.Error("CF should be clear: no unsigned carry")
	}
}

func TestExecuteCMPDoesNotWriteBack(t *testing.T) {
	regs, _, ex := newTestCPU()
	regs.SetAX(5)
	inst := Instruction{
		Op:    OpCMP,
		Width: Word,
		Params: []Parameter{
			{Kind: PReg, Reg: AX, Width: Word},
			{Kind: PImmWord, Imm: 10},
		},
	}
	if _, err := ex.Execute(inst); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.AX() != 5 {
		t.Errorf("AX = %d, want unchanged 5", regs.AX())
	}
	if !regs.CF() {
		t.Error("CF should be set: 5 - 10 borrows")
	}
	if !regs.SF() {
		t.Error("SF should be set: 5-10 = -5, sign bit set in two's complement")
	}
}

func TestDivideByZeroRoutesToINT0(t *testing.T) {
	regs, mem, ex := newTestCPU()
	// Point INT 0's vector at 0x0060:0x0000 and seed a CS:IP far away so
	// we can tell the jump actually happened.
	mem.WritePhys16(0, 0x0000)
	mem.WritePhys16(2, 0x0060)
	regs.SetCS(0x1000)
	regs.SetIP(0x0050)
	regs.SetSP(0x0100)
	regs.SetAX(1)

	inst := Instruction{
		Op:    OpDIV,
		Width: Byte,
		Params: []Parameter{
			{Kind: PImmByte, Imm: 0},
		},
	}
	if _, err := ex.Execute(inst); err != nil {
		t.Fatalf("DIV by zero must not return an error: %v", err)
	}
	if regs.CS() != 0x0060 || regs.IP() != 0x0000 {
		t.Errorf("CS:IP = %04X:%04X, want 0060:0000 (vector 0 handler)", regs.CS(), regs.IP())
	}
}

func TestREPMOVSBCopiesCXBytes(t *testing.T) {
	regs, mem, ex := newTestCPU()
	regs.SetDS(0)
	regs.SetES(0x1000)
	regs.SetSI(0x0000)
	regs.SetDI(0x0000)
	regs.SetCX(4)
	for i := uint16(0); i < 4; i++ {
		mem.Write8(0, i, byte('A'+i))
	}

	inst := Instruction{Op: OpMOVSB, Width: Byte, Rep: Rep}
	for {
		done, err := ex.Execute(inst)
		if err != nil {
			t.Fatalf("Execute: %v", err)
		}
		if done {
			break
		}
	}

	if regs.CX() != 0 {
		t.Errorf("CX = %d, want 0", regs.CX())
	}
	for i := uint16(0); i < 4; i++ {
		got := mem.Read8(0x1000, i)
		want := byte('A' + i)
		if got != want {
			t.Errorf("dest[%d] = %q, want %q", i, got, want)
		}
	}
}

func TestREPMOVSBZeroCountDoesNothing(t *testing.T) {
	regs, _, ex := newTestCPU()
	regs.SetCX(0)
	inst := Instruction{Op: OpMOVSB, Width: Byte, Rep: Rep}
	done, err := ex.Execute(inst)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !done {
		t.Error("a REP with CX=0 should finish immediately")
	}
}

func TestHLTSetsHalted(t *testing.T) {
	_, _, ex := newTestCPU()
	if _, err := ex.Execute(Instruction{Op: OpHLT}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !ex.Halted {
		t.Error("HLT should set Halted")
	}
}

func TestShiftByOneSetsOFOnSignChange(t *testing.T) {
	regs, _, ex := newTestCPU()
	regs.SetAL(0x40) // 0100_0000 -> SHL by 1 -> 1000_0000, sign changes
	inst := Instruction{
		Op:    OpSHL,
		Width: Byte,
		Params: []Parameter{
			{Kind: PReg, Reg: AL, Width: Byte},
			{Kind: PImplied1, Imm: 1},
		},
	}
	if _, err := ex.Execute(inst); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if regs.AL() != 0x80 {
		t.Errorf("AL = 0x%02X, want 0x80", regs.AL())
	}
	if !regs.OF() {
		t.Error("OF should be set: SHL by 1 changed the sign bit")
	}
}

func TestPushPopRoundtrip(t *testing.T) {
	regs, _, ex := newTestCPU()
	regs.SetSS(0)
	regs.SetSP(0x100)
	regs.SetAX(0xBEEF)

	push := Instruction{Op: OpPUSH, Params: []Parameter{{Kind: PReg, Reg: AX, Width: Word}}}
	if _, err := ex.Execute(push); err != nil {
		t.Fatalf("PUSH: %v", err)
	}
	if regs.SP() != 0x100-2 {
		t.Errorf("SP = 0x%04X, want 0x%04X", regs.SP(), 0x100-2)
	}

	regs.SetAX(0)
	pop := Instruction{Op: OpPOP, Params: []Parameter{{Kind: PReg, Reg: AX, Width: Word}}}
	if _, err := ex.Execute(pop); err != nil {
		t.Fatalf("POP: %v", err)
	}
	if regs.AX() != 0xBEEF {
		t.Errorf("AX = 0x%04X, want 0xBEEF", regs.AX())
	}
	if regs.SP() != 0x100 {
		t.Errorf("SP = 0x%04X, want 0x0100", regs.SP())
	}
}
