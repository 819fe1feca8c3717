package cpu

import "testing"

func TestAHALAXAliasing(t *testing.T) {
	r := &Registers{}
	r.SetAX(0x1234)
	if got := r.AH(); got != 0x12 {
		t.Errorf("AH() after SetAX(0x1234): got 0x%02X, want 0x12", got)
	}
	if got := r.AL(); got != 0x34 {
		t.Errorf("AL() after SetAX(0x1234): got 0x%02X, want 0x34", got)
	}

	r.SetAL(0xFF)
	if got := r.AX(); got != 0x12FF {
		t.Errorf("AX() after SetAL(0xFF): got 0x%04X, want 0x12FF", got)
	}

	r.SetAH(0x00)
	if got := r.AX(); got != 0x00FF {
		t.Errorf("AX() after SetAH(0x00): got 0x%04X, want 0x00FF", got)
	}
}

func TestRegNameRoundtrip(t *testing.T) {
	for i := byte(0); i < 8; i++ {
		if Reg16(i) != reg16ByIndex[i] {
			t.Errorf("Reg16(%d) inconsistent with table", i)
		}
		if Reg8(i) != reg8ByIndex[i] {
			t.Errorf("Reg8(%d) inconsistent with table", i)
		}
	}
}

func TestParity(t *testing.T) {
	cases := []struct {
		v    byte
		want bool
	}{
		{0x00, true},  // zero set bits: even
		{0x01, false}, // one set bit: odd
		{0x03, true},  // two set bits: even
		{0xFF, true},  // eight set bits: even
	}
	for _, c := range cases {
		if got := parity(c.v); got != c.want {
			t.Errorf("parity(0x%02X) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestArith8AddOverflow(t *testing.T) {
	r := &Registers{}
	// 0x7F + 0x01 = 0x80: signed overflow (OF), no unsigned carry (CF).
	result := arith8(r, 0x7F, 0x01, 0, false)
	if result != 0x80 {
		t.Errorf("result = 0x%02X, want 0x80", result)
	}
	if !r.OF() {
		t.Error("OF should be set: 0x7F + 0x01 overflows signed byte range")
	}
	if r.CF() {
		t.Error("CF should be clear: no unsigned carry out of bit 7")
	}
	if !r.SF() {
		t.Error("SF should be set: result 0x80 has the sign bit set")
	}
}

func TestArith8SubBorrow(t *testing.T) {
	r := &Registers{}
	// 0x00 - 0x01 borrows.
	result := arith8(r, 0x00, 0x01, 0, true)
	if result != 0xFF {
		t.Errorf("result = 0x%02X, want 0xFF", result)
	}
	if !r.CF() {
		t.Error("CF should be set: 0x00 - 0x01 borrows")
	}
	if !r.SF() {
		t.Error("SF should be set: result 0xFF has the sign bit set")
	}
}

func TestArith16CMPNoOverflow(t *testing.T) {
	r := &Registers{}
	result := arith16(r, 5, 3, 0, true)
	if result != 2 {
		t.Errorf("result = %d, want 2", result)
	}
	if r.CF() {
		t.Error("CF should be clear: 5 - 3 does not borrow")
	}
	if r.ZF() {
		t.Error("ZF should be clear: result is nonzero")
	}
	if r.OF() {
		t.Error("OF should be clear: 5 - 3 does not overflow")
	}
}

func TestSetFlagsLogicClearsCFOF(t *testing.T) {
	r := &Registers{}
	r.SetCF(true)
	r.SetOF(true)
	setFlagsLogic8(r, 0)
	if r.CF() || r.OF() {
		t.Error("logic ops must clear CF and OF")
	}
	if !r.ZF() {
		t.Error("ZF should be set for a zero logic result")
	}
}
