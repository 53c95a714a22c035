package z80

// This file decodes the ED-prefixed page (spec §4.4.2): 16-bit
// ADC/SBC, LD (nn),dd / LD dd,(nn), IN r,(C) / OUT (C),r, the I/R
// transfer and rotate-through-memory forms, NEG, IM, RETI/RETN, and
// the sixteen block instructions. Undefined ED xx is an 8 T-state
// no-op (spec §4.5).

var imTable = [8]uint8{0, 0, 1, 2, 0, 0, 1, 2}

// execED decodes and executes one ED-prefixed instruction. The ED byte
// itself was already consumed by execOne's prefix loop; this function
// fetches the second opcode byte (also an M1 cycle) and returns the
// *total* T-states for the whole two-byte instruction.
func (c *CPU) execED() int {
	op := c.fetchOpcode()
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	switch x {
	case 1:
		return c.execED1(y, z, p, q)
	case 2:
		return c.execEDBlock(y, z)
	default:
		return 8 // undefined ED xx
	}
}

func (c *CPU) execED1(y, z, p, q uint8) int {
	switch z {
	case 0:
		v := c.Mem.In(c.Reg.BC())
		if y != 6 {
			c.storePlainR8(y, v)
		}
		c.Reg.SetF((c.Reg.F() & FlagC) | sz53pTable[v])
		return 12
	case 1:
		v := uint8(0)
		if y != 6 {
			v = c.loadR8(y, idxNone, 0, true)
		}
		c.Mem.Out(c.Reg.BC(), v)
		return 12
	case 2:
		hl := c.Reg.HL()
		ss := c.loadRP(p, idxNone)
		var result uint16
		var flags uint8
		if q == 0 {
			result, flags = SbcHL(hl, ss, c.Reg.F())
		} else {
			result, flags = AdcHL(hl, ss, c.Reg.F())
		}
		c.Reg.SetHL(result)
		c.Reg.SetF(flags)
		return 15
	case 3:
		nn := c.fetchWord()
		if q == 0 {
			c.Mem.Write16(nn, c.loadRP(p, idxNone))
		} else {
			c.storeRP(p, idxNone, c.Mem.Read16(nn))
		}
		return 20
	case 4:
		old := c.Reg.A()
		result, flags := Sub8(0, old, 0)
		c.Reg.SetA(result)
		c.Reg.SetF(flags)
		return 8
	case 5:
		c.Reg.SetPC(c.pop())
		c.Reg.SetIFF1(c.Reg.IFF2())
		return 14
	case 6:
		c.Reg.SetIM(imTable[y])
		return 8
	default:
		return c.execED1Z7(y)
	}
}

func (c *CPU) execED1Z7(y uint8) int {
	switch y {
	case 0:
		c.Reg.SetI(c.Reg.A())
		return 9
	case 1:
		c.Reg.SetR(c.Reg.A())
		return 9
	case 2:
		v := c.Reg.I()
		c.Reg.SetA(v)
		c.Reg.SetF((c.Reg.F() & FlagC) | sz53Table[v] | bsel(c.Reg.IFF2(), FlagP, 0))
		return 9
	case 3:
		v := c.Reg.R()
		c.Reg.SetA(v)
		c.Reg.SetF((c.Reg.F() & FlagC) | sz53Table[v] | bsel(c.Reg.IFF2(), FlagP, 0))
		return 9
	case 4:
		hl := c.Reg.HL()
		b := c.Mem.Read8(hl)
		a := c.Reg.A()
		c.Mem.Write8(hl, (a<<4)|(b>>4))
		newA := (a & 0xF0) | (b & 0x0F)
		c.Reg.SetA(newA)
		c.Reg.SetF(RrdRldFlags(newA, c.Reg.F()))
		return 18
	case 5:
		hl := c.Reg.HL()
		b := c.Mem.Read8(hl)
		a := c.Reg.A()
		c.Mem.Write8(hl, (b<<4)|(a&0x0F))
		newA := (a & 0xF0) | (b >> 4)
		c.Reg.SetA(newA)
		c.Reg.SetF(RrdRldFlags(newA, c.Reg.F()))
		return 18
	default:
		return 8 // undefined ED 77/7F NOP forms
	}
}

// execEDBlock dispatches the sixteen block instructions (spec §4.2,
// §4.4.3). z selects the family (0=LD, 1=CP, 2=IN, 3=OUT); y selects
// the variant (4=increment, 5=decrement, 6/7 their repeating forms).
func (c *CPU) execEDBlock(y, z uint8) int {
	if y < 4 || z > 3 {
		return 8 // undefined ED xx in the x==2 page
	}
	repeat := y >= 6
	switch z {
	case 0:
		return c.blockLD(y == 5 || y == 7, repeat)
	case 1:
		return c.blockCP(y == 5 || y == 7, repeat)
	case 2:
		return c.blockIn(y == 5 || y == 7, repeat)
	default:
		return c.blockOut(y == 5 || y == 7, repeat)
	}
}

func (c *CPU) blockLD(decrement, repeat bool) int {
	hl, de, bc := c.Reg.HL(), c.Reg.DE(), c.Reg.BC()
	v := c.Mem.Read8(hl)
	c.Mem.Write8(de, v)
	if decrement {
		hl--
		de--
	} else {
		hl++
		de++
	}
	bc--
	c.Reg.SetHL(hl)
	c.Reg.SetDE(de)
	c.Reg.SetBC(bc)
	c.Reg.SetF(LdBlockFlags(c.Reg.A(), v, bc, c.Reg.F()))
	if repeat && bc != 0 {
		c.Reg.IncPC(^uint16(1)) // PC -= 2
		return 21
	}
	return 16
}

func (c *CPU) blockCP(decrement, repeat bool) int {
	hl, bc := c.Reg.HL(), c.Reg.BC()
	v := c.Mem.Read8(hl)
	a := c.Reg.A()
	if decrement {
		hl--
	} else {
		hl++
	}
	bc--
	c.Reg.SetHL(hl)
	c.Reg.SetBC(bc)
	flags := CpBlockFlags(a, v, bc)
	c.Reg.SetF(flags)
	if repeat && bc != 0 && flags&FlagZ == 0 {
		c.Reg.IncPC(^uint16(1))
		return 21
	}
	return 16
}

func (c *CPU) blockIn(decrement, repeat bool) int {
	bc := c.Reg.BC()
	v := c.Mem.In(bc)
	hl := c.Reg.HL()
	c.Mem.Write8(hl, v)
	offset := 1
	if decrement {
		hl--
		offset = -1
	} else {
		hl++
	}
	c.Reg.SetHL(hl)
	b := c.Reg.B() - 1
	c.Reg.SetB(b)
	c.Reg.SetF(InBlockFlags(v, b, offset, c.Reg.C()))
	if repeat && b != 0 {
		c.Reg.IncPC(^uint16(1))
		return 21
	}
	return 16
}

func (c *CPU) blockOut(decrement, repeat bool) int {
	hl := c.Reg.HL()
	v := c.Mem.Read8(hl)
	if decrement {
		hl--
	} else {
		hl++
	}
	c.Reg.SetHL(hl)
	b := c.Reg.B() - 1
	c.Reg.SetB(b)
	c.Mem.Out(c.Reg.BC(), v)
	c.Reg.SetF(OutBlockFlags(v, b, c.Reg.L()))
	if repeat && b != 0 {
		c.Reg.IncPC(^uint16(1))
		return 21
	}
	return 16
}
