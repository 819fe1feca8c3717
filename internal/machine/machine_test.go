package machine

import (
	"testing"
	"time"

	"github.com/MoochMcGee/ape/internal/cpu"
)

// terminateProgram assembles: MOV AH,0x4C; MOV AL,code; INT 21h — a
// minimal COM-style terminate-with-code sequence.
func terminateProgram(code byte) []byte {
	return []byte{
		0xB4, 0x4C, // MOV AH, 0x4C
		0xB0, code, // MOV AL, code
		0xCD, 0x21, // INT 21h
	}
}

func waitForState(t *testing.T, m *Machine, want cpu.State) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if m.CPU.GetState() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v, got %v", want, m.CPU.GetState())
}

func TestBootCOMAndTerminateStopsMachine(t *testing.T) {
	m := New(Config{DOSBaseDir: t.TempDir()})
	if err := m.BootCOM(terminateProgram(42)); err != nil {
		t.Fatalf("BootCOM: %v", err)
	}
	m.Start()
	waitForState(t, m, cpu.Stopped)

	code, terminated := m.ExitCode()
	if !terminated || code != 42 {
		t.Errorf("ExitCode() = %d, %v; want 42, true", code, terminated)
	}
}

func TestBootFloppyRunsUntilHalt(t *testing.T) {
	sector := make([]byte, 512)
	sector[0] = 0xF4 // HLT
	sector[0x1FE] = 0x55
	sector[0x1FF] = 0xAA

	m := New(Config{})
	if err := m.BootFloppy(sector); err != nil {
		t.Fatalf("BootFloppy: %v", err)
	}
	m.Start()
	waitForState(t, m, cpu.Stopped)

	if _, terminated := m.ExitCode(); terminated {
		t.Error("a floppy boot with no DOS calls should never report terminated")
	}
}

func TestPauseOnBootHoldsBeforeFirstInstruction(t *testing.T) {
	sector := make([]byte, 512)
	sector[0] = 0xF4
	sector[0x1FE] = 0x55
	sector[0x1FF] = 0xAA

	m := New(Config{PauseOnBoot: true})
	if err := m.BootFloppy(sector); err != nil {
		t.Fatalf("BootFloppy: %v", err)
	}
	m.Start()
	waitForState(t, m, cpu.Paused)
	m.Stop()
}
