package cpu

// execArith implements ADD/ADC/SUB/SBB/CMP. All five share the same
// dst,src shape; CMP differs only in discarding the result instead of
// writing it back, and ADC/SBB differ only in folding the incoming carry
// into the operation.
func (e *Executor) execArith(inst Instruction, res *Resolver) error {
	dst, src := inst.Params[0], inst.Params[1]
	sub := inst.Op == OpSUB || inst.Op == OpSBB || inst.Op == OpCMP
	withCarry := inst.Op == OpADC || inst.Op == OpSBB

	if inst.Width == Byte {
		a, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		b, err := res.ReadByte(src)
		if err != nil {
			return err
		}
		var carryIn byte
		if withCarry && e.Regs.CF() {
			carryIn = 1
		}
		result := arith8(e.Regs, a, b, carryIn, sub)
		if inst.Op == OpCMP {
			return nil
		}
		return res.WriteByte(dst, result)
	}

	a, err := res.ReadWord(dst)
	if err != nil {
		return err
	}
	b, err := res.ReadWord(src)
	if err != nil {
		return err
	}
	var carryIn uint16
	if withCarry && e.Regs.CF() {
		carryIn = 1
	}
	result := arith16(e.Regs, a, b, carryIn, sub)
	if inst.Op == OpCMP {
		return nil
	}
	return res.WriteWord(dst, result)
}

// execIncDec implements INC/DEC. Unlike ADD/SUB, these leave CF untouched
// (a deliberate 8086 quirk so INC/DEC can be used inside a multi-word
// add/subtract loop without disturbing the carry chain) and only touch
// OF/ZF/SF/PF/AF.
func (e *Executor) execIncDec(inst Instruction, res *Resolver) error {
	dst := inst.Params[0]
	delta := byte(1)
	sub := inst.Op == OpDEC

	savedCF := e.Regs.CF()
	if inst.Width == Byte {
		a, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		result := arith8(e.Regs, a, delta, 0, sub)
		e.Regs.SetCF(savedCF)
		return res.WriteByte(dst, result)
	}

	a, err := res.ReadWord(dst)
	if err != nil {
		return err
	}
	result := arith16(e.Regs, a, uint16(delta), 0, sub)
	e.Regs.SetCF(savedCF)
	return res.WriteWord(dst, result)
}

// execNeg implements NEG: two's-complement negation, equivalent to 0-dst,
// with CF set whenever the operand was nonzero (negation of zero is zero
// and does not set CF).
func (e *Executor) execNeg(inst Instruction, res *Resolver) error {
	dst := inst.Params[0]
	if inst.Width == Byte {
		a, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		result := arith8(e.Regs, 0, a, 0, true)
		return res.WriteByte(dst, result)
	}
	a, err := res.ReadWord(dst)
	if err != nil {
		return err
	}
	result := arith16(e.Regs, 0, a, 0, true)
	return res.WriteWord(dst, result)
}

// execMulDiv implements MUL/IMUL/DIV/IDIV. Each reads its second operand
// from the instruction's sole explicit Parameter and its first (implicit)
// operand from AL/AX, writing the widened result to AX or DX:AX.
func (e *Executor) execMulDiv(inst Instruction, res *Resolver) error {
	dst := inst.Params[0]

	if inst.Width == Byte {
		operand, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		switch inst.Op {
		case OpMUL:
			product := uint16(e.Regs.AL()) * uint16(operand)
			e.Regs.SetAX(product)
			highNonzero := product > 0xFF
			e.Regs.SetCF(highNonzero)
			e.Regs.SetOF(highNonzero)
		case OpIMUL:
			product := int16(int8(e.Regs.AL())) * int16(int8(operand))
			e.Regs.SetAX(uint16(product))
			signExtended := product == int16(int8(byte(product)))
			e.Regs.SetCF(!signExtended)
			e.Regs.SetOF(!signExtended)
		case OpDIV:
			if operand == 0 {
				return e.RaiseInterrupt(0)
			}
			dividend := e.Regs.AX()
			quotient := dividend / uint16(operand)
			if quotient > 0xFF {
				return e.RaiseInterrupt(0)
			}
			remainder := dividend % uint16(operand)
			e.Regs.SetAL(byte(quotient))
			e.Regs.SetAH(byte(remainder))
		case OpIDIV:
			if operand == 0 {
				return e.RaiseInterrupt(0)
			}
			dividend := int16(e.Regs.AX())
			divisor := int16(int8(operand))
			quotient := dividend / divisor
			if quotient > 127 || quotient < -128 {
				return e.RaiseInterrupt(0)
			}
			remainder := dividend % divisor
			e.Regs.SetAL(byte(quotient))
			e.Regs.SetAH(byte(remainder))
		}
		return nil
	}

	operand, err := res.ReadWord(dst)
	if err != nil {
		return err
	}
	switch inst.Op {
	case OpMUL:
		product := uint32(e.Regs.AX()) * uint32(operand)
		e.Regs.SetAX(uint16(product))
		e.Regs.SetDX(uint16(product >> 16))
		highNonzero := product > 0xFFFF
		e.Regs.SetCF(highNonzero)
		e.Regs.SetOF(highNonzero)
	case OpIMUL:
		product := int32(int16(e.Regs.AX())) * int32(int16(operand))
		e.Regs.SetAX(uint16(product))
		e.Regs.SetDX(uint16(uint32(product) >> 16))
		signExtended := product == int32(int16(uint16(product)))
		e.Regs.SetCF(!signExtended)
		e.Regs.SetOF(!signExtended)
	case OpDIV:
		if operand == 0 {
			return e.RaiseInterrupt(0)
		}
		dividend := uint32(e.Regs.DX())<<16 | uint32(e.Regs.AX())
		quotient := dividend / uint32(operand)
		if quotient > 0xFFFF {
			return e.RaiseInterrupt(0)
		}
		remainder := dividend % uint32(operand)
		e.Regs.SetAX(uint16(quotient))
		e.Regs.SetDX(uint16(remainder))
	case OpIDIV:
		if operand == 0 {
			return e.RaiseInterrupt(0)
		}
		dividend := int32(uint32(e.Regs.DX())<<16 | uint32(e.Regs.AX()))
		divisor := int32(int16(operand))
		quotient := dividend / divisor
		if quotient > 32767 || quotient < -32768 {
			return e.RaiseInterrupt(0)
		}
		remainder := dividend % divisor
		e.Regs.SetAX(uint16(quotient))
		e.Regs.SetDX(uint16(remainder))
	}
	return nil
}
