package interrupt

import (
	"os"
	"testing"

	"github.com/MoochMcGee/ape/internal/cpu"
	"github.com/MoochMcGee/ape/internal/memory"
)

// fakeTTY is a minimal backend.TTYBackend recording every character
// written to it, used so interrupt tests don't need a real terminal.
type fakeTTY struct {
	written  []byte
	row, col int
	pending  bool
}

func (f *fakeTTY) WriteChar(c byte)       { f.written = append(f.written, c) }
func (f *fakeTTY) ReadChar() byte         { return 'X' }
func (f *fakeTTY) HasChar() bool          { return f.pending }
func (f *fakeTTY) Scroll(int, byte)       {}
func (f *fakeTTY) MoveCursor(x, y int)    { f.col, f.row = x, y }
func (f *fakeTTY) Clear()                 {}
func (f *fakeTTY) CursorRow() int         { return f.row }
func (f *fakeTTY) SetCursorRow(r int)     { f.row = r }
func (f *fakeTTY) CursorColumn() int      { return f.col }
func (f *fakeTTY) SetCursorColumn(c int)  { f.col = c }

func TestBIOSTeletypeOutput(t *testing.T) {
	tty := &fakeTTY{}
	l := NewLayer(tty, nil, nil, "")
	regs := &cpu.Registers{}
	regs.SetAH(0x0E)
	regs.SetAL('A')

	handled, err := l.CallInterrupt(regs, memory.New(), 0x10)
	if err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if !handled {
		t.Fatal("INT 10h must always be claimed by the BIOS layer")
	}
	if len(tty.written) != 1 || tty.written[0] != 'A' {
		t.Errorf("written = %v, want ['A']", tty.written)
	}
}

func TestBIOSKeyboardPeekReflectsAvailability(t *testing.T) {
	tty := &fakeTTY{}
	l := NewLayer(tty, nil, nil, "")
	mem := memory.New()

	regs := &cpu.Registers{}
	regs.SetAH(0x01)
	if _, err := l.CallInterrupt(regs, mem, 0x16); err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if !regs.ZF() {
		t.Error("ZF should be set when no key is pending")
	}

	tty.pending = true
	regs.SetAH(0x01)
	if _, err := l.CallInterrupt(regs, mem, 0x16); err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if regs.ZF() {
		t.Error("ZF should be clear once a key is pending")
	}
}

func TestMSDOSPrintString(t *testing.T) {
	tty := &fakeTTY{}
	l := NewLayer(tty, nil, nil, "/tmp")
	mem := memory.New()
	mem.LoadAt(memory.Physical(0, 0x100), []byte("HI$"))

	regs := &cpu.Registers{}
	regs.SetAH(0x09)
	regs.SetDS(0)
	regs.SetDX(0x100)

	handled, err := l.CallInterrupt(regs, mem, 0x21)
	if err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if !handled {
		t.Fatal("INT 21h AH=0x09 should be handled")
	}
	if string(tty.written) != "HI" {
		t.Errorf("written = %q, want %q", tty.written, "HI")
	}
}

func TestMSDOSTerminateSetsExitCode(t *testing.T) {
	l := NewLayer(nil, nil, nil, "/tmp")
	regs := &cpu.Registers{}
	regs.SetAH(0x4C)
	regs.SetAL(7)

	handled, err := l.CallInterrupt(regs, memory.New(), 0x21)
	if err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if !handled {
		t.Fatal("INT 21h AH=0x4C should be handled")
	}
	if !l.Terminated || l.ExitCode != 7 {
		t.Errorf("Terminated=%v ExitCode=%d, want true 7", l.Terminated, l.ExitCode)
	}
}

func TestMSDOSGetVersion(t *testing.T) {
	l := NewLayer(nil, nil, nil, "/tmp")
	regs := &cpu.Registers{}
	regs.SetAH(0x30)

	if _, err := l.CallInterrupt(regs, memory.New(), 0x21); err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if regs.AL() != 5 {
		t.Errorf("AL = %d, want 5 (DOS version major)", regs.AL())
	}
}

func TestUnhandledVectorFallsThrough(t *testing.T) {
	l := NewLayer(nil, nil, nil, "")
	regs := &cpu.Registers{}
	handled, err := l.CallInterrupt(regs, memory.New(), 0x15)
	if err != nil {
		t.Fatalf("CallInterrupt: %v", err)
	}
	if handled {
		t.Error("an unrelated vector should not be claimed by BIOS or DOS")
	}
}

func TestDOSFileOpenReadSeekRoundtrip(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/greeting.txt"
	if err := os.WriteFile(path, []byte("hello world"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	df := NewDOSFiles(dir)
	handle, err := df.Open("/greeting.txt")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	buf := make([]byte, 5)
	n, err := df.Read(handle, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 5 || string(buf) != "hello" {
		t.Errorf("Read: got %q (n=%d), want %q", buf[:n], n, "hello")
	}

	pos, err := df.Seek(handle, SeekFromStart, 6)
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if pos != 6 {
		t.Errorf("Seek returned %d, want 6", pos)
	}
	n, err = df.Read(handle, buf)
	if err != nil {
		t.Fatalf("Read after seek: %v", err)
	}
	if string(buf[:n]) != "world" {
		t.Errorf("Read after seek: got %q, want %q", buf[:n], "world")
	}
}
