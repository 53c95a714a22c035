package z80

// This file decodes the CB-prefixed page: rotates/shifts, BIT, RES and
// SET on a register or (HL) (spec §4.4.2). The sub-opcode uses the same
// x/y/z split as the main page: x selects the class (0=rotate/shift,
// 1=BIT, 2=RES, 3=SET), y selects the bit index (x!=0) or rotate op
// (x==0), z selects the operand register slot (6=(HL)).

// execCB decodes and executes one unprefixed-CB instruction. The CB
// byte itself was already consumed by execOne's prefix loop.
func (c *CPU) execCB() int {
	op := c.fetchOpcode()
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	effAddr := c.Reg.HL()
	v := c.loadR8(z, idxNone, effAddr, true)

	switch x {
	case 0:
		result, flags := rotOp(y, v, c.Reg.F())
		c.Reg.SetF(flags)
		c.storeR8(z, idxNone, effAddr, true, result)
		if z == 6 {
			return 15
		}
		return 8
	case 1:
		x53src := v
		if z == 6 {
			x53src = uint8((effAddr + 1) >> 8) // MEMPTR = HL+1 (spec §4.2)
		}
		flags := Bit(v, y, c.Reg.F(), x53src)
		c.Reg.SetF(flags)
		if z == 6 {
			return 12
		}
		return 8
	case 2:
		result := v &^ (1 << y)
		c.storeR8(z, idxNone, effAddr, true, result)
		if z == 6 {
			return 15
		}
		return 8
	default:
		result := v | (1 << y)
		c.storeR8(z, idxNone, effAddr, true, result)
		if z == 6 {
			return 15
		}
		return 8
	}
}

// execIndexedCB decodes and executes one DDCB/FDCB instruction: fetch
// displacement, fetch sub-opcode (neither bumps R — only the DD/FD and
// CB bytes are M1 cycles, already charged by execOne), operate on
// (IX+d)/(IY+d), and for every form but BIT optionally copy the result
// into a plain register (the undocumented "LD r,rot (IX+d)" behavior,
// spec §4.4.2).
func (c *CPU) execIndexedCB(idx indexMode) int {
	d := c.fetchByte()
	op := c.fetchByte()
	addr := indexedAddr(c.Reg, idx, d)
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7

	v := c.Mem.Read8(addr)

	switch x {
	case 0:
		result, flags := rotOp(y, v, c.Reg.F())
		c.Reg.SetF(flags)
		c.Mem.Write8(addr, result)
		if z != 6 {
			c.storePlainR8(z, result)
		}
		return 19
	case 1:
		flags := Bit(v, y, c.Reg.F(), uint8(addr>>8))
		c.Reg.SetF(flags)
		return 16
	case 2:
		result := v &^ (1 << y)
		c.Mem.Write8(addr, result)
		if z != 6 {
			c.storePlainR8(z, result)
		}
		return 19
	default:
		result := v | (1 << y)
		c.Mem.Write8(addr, result)
		if z != 6 {
			c.storePlainR8(z, result)
		}
		return 19
	}
}
