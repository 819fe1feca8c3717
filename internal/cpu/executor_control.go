package cpu

// execControl implements jumps, calls, returns, loop instructions,
// software interrupts, and HLT. It assumes the caller has already advanced
// IP past this instruction's encoding, so a relative displacement is simply
// added to the current IP and CALL's return address is the current IP.
func (e *Executor) execControl(inst Instruction, res *Resolver) error {
	switch inst.Op {
	case OpJMP:
		return e.jumpNear(inst, res)
	case OpJMPFAR:
		return e.jumpFar(inst, res)
	case OpJA:
		return e.jumpIf(inst, !e.Regs.CF() && !e.Regs.ZF())
	case OpJAE:
		return e.jumpIf(inst, !e.Regs.CF())
	case OpJB:
		return e.jumpIf(inst, e.Regs.CF())
	case OpJBE:
		return e.jumpIf(inst, e.Regs.CF() || e.Regs.ZF())
	case OpJCXZ:
		return e.jumpIf(inst, e.Regs.CX() == 0)
	case OpJE:
		return e.jumpIf(inst, e.Regs.ZF())
	case OpJNE:
		return e.jumpIf(inst, !e.Regs.ZF())
	case OpJG:
		return e.jumpIf(inst, !e.Regs.ZF() && e.Regs.SF() == e.Regs.OF())
	case OpJGE:
		return e.jumpIf(inst, e.Regs.SF() == e.Regs.OF())
	case OpJL:
		return e.jumpIf(inst, e.Regs.SF() != e.Regs.OF())
	case OpJLE:
		return e.jumpIf(inst, e.Regs.ZF() || e.Regs.SF() != e.Regs.OF())
	case OpJO:
		return e.jumpIf(inst, e.Regs.OF())
	case OpJNO:
		return e.jumpIf(inst, !e.Regs.OF())
	case OpJPE:
		return e.jumpIf(inst, e.Regs.PF())
	case OpJPO:
		return e.jumpIf(inst, !e.Regs.PF())
	case OpJS:
		return e.jumpIf(inst, e.Regs.SF())
	case OpJNS:
		return e.jumpIf(inst, !e.Regs.SF())
	case OpCALL:
		e.push16(e.Regs.IP())
		return e.jumpNear(inst, res)
	case OpCALLFAR:
		e.push16(e.Regs.CS())
		e.push16(e.Regs.IP())
		return e.jumpFar(inst, res)
	case OpRET:
		e.Regs.SetIP(e.pop16())
		if len(inst.Params) == 1 {
			e.Regs.SetSP(e.Regs.SP() + inst.Params[0].Imm)
		}
		return nil
	case OpRETF:
		e.Regs.SetIP(e.pop16())
		e.Regs.SetCS(e.pop16())
		if len(inst.Params) == 1 {
			e.Regs.SetSP(e.Regs.SP() + inst.Params[0].Imm)
		}
		return nil
	case OpLOOP:
		e.Regs.SetCX(e.Regs.CX() - 1)
		return e.jumpIf(inst, e.Regs.CX() != 0)
	case OpLOOPE:
		e.Regs.SetCX(e.Regs.CX() - 1)
		return e.jumpIf(inst, e.Regs.CX() != 0 && e.Regs.ZF())
	case OpLOOPNE:
		e.Regs.SetCX(e.Regs.CX() - 1)
		return e.jumpIf(inst, e.Regs.CX() != 0 && !e.Regs.ZF())
	case OpINT:
		return e.RaiseInterrupt(byte(inst.Params[0].Imm))
	case OpINTO:
		if e.Regs.OF() {
			return e.RaiseInterrupt(4)
		}
		return nil
	case OpIRET:
		e.Regs.SetIP(e.pop16())
		e.Regs.SetCS(e.pop16())
		e.Regs.SetFlags(e.pop16())
		return nil
	case OpHLT:
		e.Halted = true
		return nil
	}
	return &DecodeError{Kind: UnhandledInstruction}
}

func (e *Executor) jumpIf(inst Instruction, take bool) error {
	if !take {
		return nil
	}
	p := inst.Params[0]
	e.Regs.SetIP(uint16(int16(e.Regs.IP()) + int16(p.Imm)))
	return nil
}

// jumpNear resolves a near JMP/CALL target: a relative displacement, a
// register, or a memory operand holding the destination offset.
func (e *Executor) jumpNear(inst Instruction, res *Resolver) error {
	p := inst.Params[0]
	switch p.Kind {
	case PRelByte, PRelWord:
		e.Regs.SetIP(uint16(int16(e.Regs.IP()) + int16(p.Imm)))
		return nil
	default:
		target, err := res.ReadWord(p)
		if err != nil {
			return err
		}
		e.Regs.SetIP(target)
		return nil
	}
}

// jumpFar resolves a far JMP/CALL target: either an immediate
// segment:offset pair or a memory operand holding both words.
func (e *Executor) jumpFar(inst Instruction, res *Resolver) error {
	p := inst.Params[0]
	if p.Kind == PFarPtr {
		e.Regs.SetCS(p.Imm)
		e.Regs.SetIP(p.Disp16)
		return nil
	}
	seg, off := res.EffectiveAddress(p.Mem)
	newIP := e.Mem.Read16(seg, off)
	newCS := e.Mem.Read16(seg, off+2)
	e.Regs.SetIP(newIP)
	e.Regs.SetCS(newCS)
	return nil
}
