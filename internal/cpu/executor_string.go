package cpu

// execString runs a single element of a string primitive (MOVS/CMPS/LODS/
// STOS/SCAS). When the instruction carries no repetition prefix, one
// element is the whole instruction and done is always true. When it does,
// the CPU loop calls Execute repeatedly with the same Instruction — IP is
// not advanced between calls — so each element becomes its own suspension
// point for Stop/Pause requests, rather than the repetition draining in one
// uninterruptible loop.
func (e *Executor) execString(inst Instruction) (done bool, err error) {
	if inst.Rep != RepNone && e.Regs.CX() == 0 {
		return true, nil
	}

	srcRes := NewResolver(e.Regs, e.Mem, inst.Segment)

	step := int16(1)
	if e.Regs.DF() {
		step = -1
	}

	switch inst.Op {
	case OpMOVSB:
		v, _ := srcRes.ReadByte(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Byte})
		e.Mem.Write8(e.Regs.ES(), e.Regs.DI(), v)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step))
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step))
	case OpMOVSW:
		v, _ := srcRes.ReadWord(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Word})
		e.Mem.Write16(e.Regs.ES(), e.Regs.DI(), v)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step*2))
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step*2))
	case OpCMPSB:
		a, _ := srcRes.ReadByte(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Byte})
		b := e.Mem.Read8(e.Regs.ES(), e.Regs.DI())
		arith8(e.Regs, a, b, 0, true)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step))
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step))
	case OpCMPSW:
		a, _ := srcRes.ReadWord(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Word})
		b := e.Mem.Read16(e.Regs.ES(), e.Regs.DI())
		arith16(e.Regs, a, b, 0, true)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step*2))
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step*2))
	case OpLODSB:
		v, _ := srcRes.ReadByte(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Byte})
		e.Regs.SetAL(v)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step))
	case OpLODSW:
		v, _ := srcRes.ReadWord(Parameter{Kind: PMem, Mem: MemOperand{Base: BaseSI}, Width: Word})
		e.Regs.SetAX(v)
		e.Regs.SetSI(uint16(int16(e.Regs.SI()) + step*2))
	case OpSTOSB:
		e.Mem.Write8(e.Regs.ES(), e.Regs.DI(), e.Regs.AL())
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step))
	case OpSTOSW:
		e.Mem.Write16(e.Regs.ES(), e.Regs.DI(), e.Regs.AX())
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step*2))
	case OpSCASB:
		b := e.Mem.Read8(e.Regs.ES(), e.Regs.DI())
		arith8(e.Regs, e.Regs.AL(), b, 0, true)
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step))
	case OpSCASW:
		b := e.Mem.Read16(e.Regs.ES(), e.Regs.DI())
		arith16(e.Regs, e.Regs.AX(), b, 0, true)
		e.Regs.SetDI(uint16(int16(e.Regs.DI()) + step*2))
	}

	if inst.Rep == RepNone {
		return true, nil
	}

	e.Regs.SetCX(e.Regs.CX() - 1)
	switch inst.Rep {
	case RepZ:
		if !e.Regs.ZF() || e.Regs.CX() == 0 {
			return true, nil
		}
	case RepNZ:
		if e.Regs.ZF() || e.Regs.CX() == 0 {
			return true, nil
		}
	case Rep:
		if e.Regs.CX() == 0 {
			return true, nil
		}
	}
	return false, nil
}
