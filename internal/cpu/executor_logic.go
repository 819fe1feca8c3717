package cpu

// execLogic implements AND/OR/XOR/TEST. TEST behaves exactly like AND
// except that it discards the result, matching the arithmetic family's
// CMP/SUB relationship.
func (e *Executor) execLogic(inst Instruction, res *Resolver) error {
	dst, src := inst.Params[0], inst.Params[1]

	if inst.Width == Byte {
		a, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		b, err := res.ReadByte(src)
		if err != nil {
			return err
		}
		var result byte
		switch inst.Op {
		case OpAND, OpTEST:
			result = a & b
		case OpOR:
			result = a | b
		case OpXOR:
			result = a ^ b
		}
		setFlagsLogic8(e.Regs, result)
		if inst.Op == OpTEST {
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
	var result uint16
	switch inst.Op {
	case OpAND, OpTEST:
		result = a & b
	case OpOR:
		result = a | b
	case OpXOR:
		result = a ^ b
	}
	setFlagsLogic16(e.Regs, result)
	if inst.Op == OpTEST {
		return nil
	}
	return res.WriteWord(dst, result)
}

// execNot implements NOT: bitwise complement, no flags affected.
func (e *Executor) execNot(inst Instruction, res *Resolver) error {
	dst := inst.Params[0]
	if inst.Width == Byte {
		a, err := res.ReadByte(dst)
		if err != nil {
			return err
		}
		return res.WriteByte(dst, ^a)
	}
	a, err := res.ReadWord(dst)
	if err != nil {
		return err
	}
	return res.WriteWord(dst, ^a)
}
