package memory

import "testing"

func TestPhysicalWraps(t *testing.T) {
	got := Physical(0xFFFF, 0xFFFF)
	want := (uint32(0xFFFF)<<4 + uint32(0xFFFF)) & AddressMask
	if got != want {
		t.Errorf("Physical(0xFFFF, 0xFFFF) = 0x%05X, want 0x%05X", got, want)
	}
	if got >= Size {
		t.Errorf("Physical(0xFFFF, 0xFFFF) = 0x%05X, want < Size", got)
	}
}

func TestReadWrite8(t *testing.T) {
	m := New()
	m.Write8(0x1000, 0x0010, 0x42)
	if got := m.Read8(0x1000, 0x0010); got != 0x42 {
		t.Errorf("Read8 after Write8: got 0x%02X, want 0x42", got)
	}
}

func TestReadWrite16LittleEndian(t *testing.T) {
	m := New()
	m.Write16(0x0000, 0x0100, 0xBEEF)
	if lo := m.Read8(0x0000, 0x0100); lo != 0xEF {
		t.Errorf("low byte: got 0x%02X, want 0xEF", lo)
	}
	if hi := m.Read8(0x0000, 0x0101); hi != 0xBE {
		t.Errorf("high byte: got 0x%02X, want 0xBE", hi)
	}
	if got := m.Read16(0x0000, 0x0100); got != 0xBEEF {
		t.Errorf("Read16: got 0x%04X, want 0xBEEF", got)
	}
}

func TestSegmentOffsetAliasing(t *testing.T) {
	m := New()
	// 0x1000:0x0010 and 0x0FFF:0x0020 alias the same physical byte, 0x10010.
	m.Write8(0x1000, 0x0010, 0x99)
	if got := m.Read8(0x0FFF, 0x0020); got != 0x99 {
		t.Errorf("aliased read: got 0x%02X, want 0x99", got)
	}
}

func TestCString(t *testing.T) {
	m := New()
	data := []byte("HELLO.COM\x00garbage")
	m.LoadAt(Physical(0x2000, 0), data)
	if got := m.CString(0x2000, 0); got != "HELLO.COM" {
		t.Errorf("CString: got %q, want %q", got, "HELLO.COM")
	}
}

func TestReset(t *testing.T) {
	m := New()
	m.Write8(0, 0, 0xFF)
	m.Reset()
	if got := m.Read8(0, 0); got != 0 {
		t.Errorf("Read8 after Reset: got 0x%02X, want 0x00", got)
	}
}
