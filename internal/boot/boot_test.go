package boot

import (
	"testing"

	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

func sampleBootSector() []byte {
	sector := make([]byte, 512)
	sector[0] = 0xF4 // HLT, just so the bytes aren't all zero
	sector[0x1FE] = 0x55
	sector[0x1FF] = 0xAA
	return sector
}

func TestBootFloppyLoadsSectorAndSetsCSIP(t *testing.T) {
	mem := memory.New()
	regs := &cpu.Registers{}
	sector := sampleBootSector()

	if err := BootFloppy(mem, regs, sector); err != nil {
		t.Fatalf("BootFloppy: %v", err)
	}
	if regs.CS() != 0 || regs.IP() != bootSectorAddr {
		t.Errorf("CS:IP = %04X:%04X, want 0000:7C00", regs.CS(), regs.IP())
	}
	if got := mem.Read8(0, bootSectorAddr); got != 0xF4 {
		t.Errorf("byte at 0x7C00 = %02X, want F4", got)
	}
	if mem.Read8(0, bootSectorAddr+0x1FE) != 0x55 || mem.Read8(0, bootSectorAddr+0x1FF) != 0xAA {
		t.Error("boot signature not copied to memory")
	}
}

func TestBootFloppyRejectsWrongSize(t *testing.T) {
	mem := memory.New()
	regs := &cpu.Registers{}
	if err := BootFloppy(mem, regs, make([]byte, 100)); err == nil {
		t.Fatal("expected an error for a short boot sector")
	}
}

func TestBootCOMLoadsAtOffset0x100(t *testing.T) {
	mem := memory.New()
	regs := &cpu.Registers{}
	program := []byte{0xB8, 0x01, 0x00, 0xF4} // MOV AX,1; HLT

	if err := BootCOM(mem, regs, program); err != nil {
		t.Fatalf("BootCOM: %v", err)
	}
	if regs.IP() != comLoadOffset {
		t.Errorf("IP = %04X, want %04X", regs.IP(), comLoadOffset)
	}
	if regs.CS() != regs.DS() || regs.DS() != regs.ES() || regs.ES() != regs.SS() {
		t.Error("CS, DS, ES, SS must all alias the same segment for a .COM program")
	}
	for i, want := range program {
		if got := mem.Read8(regs.CS(), comLoadOffset+uint16(i)); got != want {
			t.Errorf("byte %d = %02X, want %02X", i, got, want)
		}
	}
}

func TestBootCOMRETReturnsToSentinelZero(t *testing.T) {
	mem := memory.New()
	c := cpu.NewCPU(mem, nil, cpu.I8086)
	program := []byte{0xC3} // RET

	if err := BootCOM(mem, c.Regs, program); err != nil {
		t.Fatalf("BootCOM: %v", err)
	}
	if err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if c.Regs.CS() != comSegment || c.Regs.IP() != 0 {
		t.Errorf("after RET, CS:IP = %04X:%04X, want %04X:0000", c.Regs.CS(), c.Regs.IP(), comSegment)
	}
}

func TestBootCOMRejectsOversizedImage(t *testing.T) {
	mem := memory.New()
	regs := &cpu.Registers{}
	if err := BootCOM(mem, regs, make([]byte, 0x10000)); err == nil {
		t.Fatal("expected an error for an image too big to fit after offset 0x100")
	}
}
