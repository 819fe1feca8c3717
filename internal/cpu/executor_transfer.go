package cpu

// execTransfer implements the data-movement and stack family: MOV, XCHG,
// LEA, LDS, LES, PUSH, POP, PUSHF, POPF, IN, OUT.
func (e *Executor) execTransfer(inst Instruction, res *Resolver) error {
	switch inst.Op {
	case OpMOV:
		return e.execMov(inst, res)
	case OpXCHG:
		return e.execXchg(inst, res)
	case OpLEA:
		dst, src := inst.Params[0], inst.Params[1]
		_, off := res.EffectiveAddress(src.Mem)
		return res.WriteWord(dst, off)
	case OpLDS, OpLES:
		dst, src := inst.Params[0], inst.Params[1]
		segOut, off := res.EffectiveAddress(src.Mem)
		_ = segOut
		newOff := e.Mem.Read16(segOut, off)
		newSeg := e.Mem.Read16(segOut, off+2)
		if err := res.WriteWord(dst, newOff); err != nil {
			return err
		}
		if inst.Op == OpLDS {
			e.Regs.SetDS(newSeg)
		} else {
			e.Regs.SetES(newSeg)
		}
		return nil
	case OpPUSH:
		v, err := res.ReadWord(inst.Params[0])
		if err != nil {
			return err
		}
		e.push16(v)
		return nil
	case OpPOP:
		return res.WriteWord(inst.Params[0], e.pop16())
	case OpPUSHF:
		e.push16(e.Regs.Flags())
		return nil
	case OpPOPF:
		e.Regs.SetFlags(e.pop16())
		return nil
	case OpIN:
		return e.execIn(inst, res)
	case OpOUT:
		return nil // no port-mapped hardware is modeled by this core
	}
	return &DecodeError{Kind: UnhandledInstruction}
}

func (e *Executor) execMov(inst Instruction, res *Resolver) error {
	dst, src := inst.Params[0], inst.Params[1]
	if inst.Width == Byte {
		v, err := res.ReadByte(src)
		if err != nil {
			return err
		}
		return res.WriteByte(dst, v)
	}
	v, err := res.ReadWord(src)
	if err != nil {
		return err
	}
	return res.WriteWord(dst, v)
}

func (e *Executor) execXchg(inst Instruction, res *Resolver) error {
	a, b := inst.Params[0], inst.Params[1]
	if inst.Width == Byte {
		va, err := res.ReadByte(a)
		if err != nil {
			return err
		}
		vb, err := res.ReadByte(b)
		if err != nil {
			return err
		}
		if err := res.WriteByte(a, vb); err != nil {
			return err
		}
		return res.WriteByte(b, va)
	}
	va, err := res.ReadWord(a)
	if err != nil {
		return err
	}
	vb, err := res.ReadWord(b)
	if err != nil {
		return err
	}
	if err := res.WriteWord(a, vb); err != nil {
		return err
	}
	return res.WriteWord(b, va)
}

// execIn implements IN. No port-mapped hardware is modeled by this core,
// so every port reads as open bus (all ones), matching real hardware
// behaviour when nothing is wired to respond.
func (e *Executor) execIn(inst Instruction, res *Resolver) error {
	if inst.Width == Byte {
		e.Regs.SetAL(0xFF)
		return nil
	}
	e.Regs.SetAX(0xFFFF)
	return nil
}
