package cpu

import (
	"testing"
	"time"

	"github.com/MoochMcGee/ape/internal/memory"
)

func TestTickRunsProgramToHalt(t *testing.T) {
	mem := memory.New()
	// MOV AX, 0x0001 ; ADD AX, 0x0001 ; HLT
	program := []byte{0xB8, 0x01, 0x00, 0x05, 0x01, 0x00, 0xF4}
	mem.LoadAt(0, program)

	c := NewCPU(mem, nil, I8086)
	c.Regs.SetCS(0)
	c.Regs.SetIP(0)

	for i := 0; i < 100 && !c.Exec.Halted; i++ {
		if err := c.Tick(); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	if !c.Exec.Halted {
		t.Fatal("program did not halt within 100 ticks")
	}
	if c.Regs.AX() != 2 {
		t.Errorf("AX = %d, want 2", c.Regs.AX())
	}
}

func TestTickUpdatesLastCSIP(t *testing.T) {
	mem := memory.New()
	mem.LoadAt(memory.Physical(0x2000, 0), []byte{0x90, 0x90}) // NOP; NOP
	c := NewCPU(mem, nil, I8086)
	c.Regs.SetCS(0x2000)
	c.Regs.SetIP(0)

	if err := c.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if c.Regs.LastCS != 0x2000 || c.Regs.LastIP != 0 {
		t.Errorf("LastCS:LastIP = %04X:%04X, want 2000:0000", c.Regs.LastCS, c.Regs.LastIP)
	}
	if c.Regs.IP() != 1 {
		t.Errorf("IP = %d, want 1 after a one-byte NOP", c.Regs.IP())
	}
}

func TestStateChangedCallbackFiresOnStopAndUnregister(t *testing.T) {
	mem := memory.New()
	mem.LoadAt(0, []byte{0xF4}) // HLT
	c := NewCPU(mem, nil, I8086)

	var seen []State
	handle := c.RegisterStateChangedCallback(func(s State) {
		seen = append(seen, s)
	})

	c.Start()
	for i := 0; i < 1000 && c.alive.Load(); i++ {
		time.Sleep(time.Millisecond)
	}

	if len(seen) == 0 {
		t.Fatal("expected at least one state-changed callback")
	}
	if seen[len(seen)-1] != Stopped {
		t.Errorf("last observed state = %v, want Stopped", seen[len(seen)-1])
	}

	c.UnregisterStateChangedCallback(handle)
	before := len(seen)
	c.notify(Running)
	if len(seen) != before {
		t.Error("unregistered callback should not fire")
	}
}

func TestPauseOnBootStartsPaused(t *testing.T) {
	mem := memory.New()
	c := NewCPU(mem, nil, I8086)
	c.PauseOnBoot = true
	c.Start()
	defer c.Stop()

	for i := 0; i < 1000 && State(c.requested.Load()) != Paused; i++ {
	}
	if State(c.requested.Load()) != Paused {
		t.Error("PauseOnBoot should request Paused immediately on Start")
	}
}
