package z80

// This file decodes the unprefixed opcode page, including its DD/FD
// retargeted forms (the CB and ED pages live in cb.go and ed.go). Each
// opcode byte is split into the classic x/y/z/p/q bitfields
// (x=bits7-6, y=bits5-3, z=bits2-0, p=y>>1, q=y&1); that decomposition
// turns ~700 opcodes into a handful of tagged categories parameterized
// by addressing mode, instead of one flat per-opcode switch (spec §9).

// r8Slot is an index into the r[z]/r[y] register table: 0=B 1=C 2=D
// 3=E 4=H 5=L 6=(HL) 7=A.
type r8Slot = uint8

// rpSlot is an index into the rp[p] table: 0=BC 1=DE 2=HL(or IX/IY)
// 3=SP.
type rpSlot = uint8

// rp2Slot is an index into the rp2[p] table used by PUSH/POP: same as
// rp except slot 3 is AF.
type rp2Slot = uint8

// condTrue evaluates cc[y] against the current flags.
func condTrue(f uint8, y uint8) bool {
	switch y {
	case 0:
		return f&FlagZ == 0
	case 1:
		return f&FlagZ != 0
	case 2:
		return f&FlagC == 0
	case 3:
		return f&FlagC != 0
	case 4:
		return f&FlagP == 0
	case 5:
		return f&FlagP != 0
	case 6:
		return f&FlagS == 0
	default:
		return f&FlagS != 0
	}
}

// loadR8 reads register slot z/y, honoring an active index prefix.
// hlRedirect must be false whenever the sibling operand in the same
// instruction is the (HL)/(IX+d) memory form — on real hardware H and
// L only become IXH/IXL in pure register-register contexts (spec §9,
// resolved per the community undocumented-opcode reference).
func (c *CPU) loadR8(slot r8Slot, idx indexMode, effAddr uint16, hlRedirect bool) uint8 {
	switch slot {
	case 0:
		return c.Reg.B()
	case 1:
		return c.Reg.C()
	case 2:
		return c.Reg.D()
	case 3:
		return c.Reg.E()
	case 4:
		if idx != idxNone && hlRedirect {
			return indexHi(c.Reg, idx)
		}
		return c.Reg.H()
	case 5:
		if idx != idxNone && hlRedirect {
			return indexLo(c.Reg, idx)
		}
		return c.Reg.L()
	case 6:
		return c.Mem.Read8(effAddr)
	default:
		return c.Reg.A()
	}
}

func (c *CPU) storeR8(slot r8Slot, idx indexMode, effAddr uint16, hlRedirect bool, v uint8) {
	switch slot {
	case 0:
		c.Reg.SetB(v)
	case 1:
		c.Reg.SetC(v)
	case 2:
		c.Reg.SetD(v)
	case 3:
		c.Reg.SetE(v)
	case 4:
		if idx != idxNone && hlRedirect {
			setIndexHi(c.Reg, idx, v)
			return
		}
		c.Reg.SetH(v)
	case 5:
		if idx != idxNone && hlRedirect {
			setIndexLo(c.Reg, idx, v)
			return
		}
		c.Reg.SetL(v)
	case 6:
		c.Mem.Write8(effAddr, v)
	default:
		c.Reg.SetA(v)
	}
}

// storePlainR8 always targets the plain register, ignoring any index
// prefix — used for DDCB/FDCB's optional register write-back, which
// never touches IXH/IXL on real hardware.
func (c *CPU) storePlainR8(slot r8Slot, v uint8) {
	switch slot {
	case 0:
		c.Reg.SetB(v)
	case 1:
		c.Reg.SetC(v)
	case 2:
		c.Reg.SetD(v)
	case 3:
		c.Reg.SetE(v)
	case 4:
		c.Reg.SetH(v)
	case 5:
		c.Reg.SetL(v)
	case 7:
		c.Reg.SetA(v)
	}
}

func (c *CPU) loadRP(p rpSlot, idx indexMode) uint16 {
	switch p {
	case 0:
		return c.Reg.BC()
	case 1:
		return c.Reg.DE()
	case 2:
		if idx != idxNone {
			return indexReg(c.Reg, idx)
		}
		return c.Reg.HL()
	default:
		return c.Reg.SP()
	}
}

func (c *CPU) storeRP(p rpSlot, idx indexMode, v uint16) {
	switch p {
	case 0:
		c.Reg.SetBC(v)
	case 1:
		c.Reg.SetDE(v)
	case 2:
		if idx != idxNone {
			setIndexReg(c.Reg, idx, v)
			return
		}
		c.Reg.SetHL(v)
	default:
		c.Reg.SetSP(v)
	}
}

func (c *CPU) loadRP2(p rp2Slot, idx indexMode) uint16 {
	if p == 3 {
		return c.Reg.AF()
	}
	return c.loadRP(p, idx)
}

func (c *CPU) storeRP2(p rp2Slot, idx indexMode, v uint16) {
	if p == 3 {
		c.Reg.SetAF(v)
		return
	}
	c.storeRP(p, idx, v)
}

func rotOp(y uint8, v uint8, f uint8) (uint8, uint8) {
	switch y {
	case 0:
		return Rlc(v)
	case 1:
		return Rrc(v)
	case 2:
		return Rl(v, f)
	case 3:
		return Rr(v, f)
	case 4:
		return Sla(v)
	case 5:
		return Sra(v)
	case 6:
		return Sll(v)
	default:
		return Srl(v)
	}
}

func aluOp(y uint8, a, operand, f uint8) (uint8, uint8) {
	switch y {
	case 0:
		return Add8(a, operand, 0)
	case 1:
		return Add8(a, operand, f&FlagC)
	case 2:
		return Sub8(a, operand, 0)
	case 3:
		return Sub8(a, operand, f&FlagC)
	case 4:
		return And8(a, operand)
	case 5:
		return Xor8(a, operand)
	case 6:
		return Or8(a, operand)
	default:
		flags := Cp8(a, operand)
		return a, flags
	}
}

// needsDisplacement reports whether this main-page opcode references
// the (HL) slot as a memory operand (as opposed to JP (HL), EX (SP),HL
// or LD SP,HL, which reference HL as a register, not as an address).
func needsDisplacement(x, y, z uint8) bool {
	if x == 0 && z == 4 && y == 6 {
		return true // INC (HL)
	}
	if x == 0 && z == 5 && y == 6 {
		return true // DEC (HL)
	}
	if x == 0 && z == 6 && y == 6 {
		return true // LD (HL),n
	}
	if x == 1 && (y == 6 || z == 6) && !(y == 6 && z == 6) {
		return true // LD r,(HL) / LD (HL),r (excludes HALT)
	}
	if x == 2 && z == 6 {
		return true // ALU A,(HL)
	}
	return false
}

// execMain dispatches the unprefixed opcode page, retargeted to IX/IY
// when idx != idxNone.
func (c *CPU) execMain(op uint8, idx indexMode, wasEI *bool) int {
	x := op >> 6
	y := (op >> 3) & 7
	z := op & 7
	p := y >> 1
	q := y & 1

	effAddr := c.loadRP(2, idxNone) // plain HL, used when idx==idxNone
	if idx != idxNone {
		effAddr = indexReg(c.Reg, idx)
		if needsDisplacement(x, y, z) {
			d := c.fetchByte()
			effAddr = indexedAddr(c.Reg, idx, d)
		}
	}

	switch x {
	case 0:
		return c.execX0(op, y, z, p, q, idx, effAddr)
	case 1:
		return c.execX1(y, z, idx, effAddr)
	case 2:
		return c.execX2(y, z, idx, effAddr)
	default:
		return c.execX3(op, y, z, p, q, idx, wasEI)
	}
}

func (c *CPU) execX0(op, y, z, p, q uint8, idx indexMode, effAddr uint16) int {
	switch z {
	case 0:
		switch {
		case y == 0:
			return 4 // NOP
		case y == 1:
			c.Reg.ExAF()
			return 4
		case y == 2:
			c.Reg.SetB(c.Reg.B() - 1)
			d := c.fetchByte()
			if c.Reg.B() != 0 {
				c.Reg.IncPC(signExtend(d))
				return 13
			}
			return 8
		case y == 3:
			d := c.fetchByte()
			c.Reg.IncPC(signExtend(d))
			return 12
		default:
			d := c.fetchByte()
			if condTrue(c.Reg.F(), y-4) {
				c.Reg.IncPC(signExtend(d))
				return 12
			}
			return 7
		}
	case 1:
		if q == 0 {
			nn := c.fetchWord()
			c.storeRP(p, idx, nn)
			return tPlain(10, idx)
		}
		result, flags := AddHL(c.loadRP(2, idx), c.loadRP(p, idx), c.Reg.F())
		c.storeRP(2, idx, result)
		c.Reg.SetF(flags)
		return tPlain(11, idx)
	case 2:
		return c.execIndirectLoad(p, q, idx)
	case 3:
		v := c.loadRP(p, idx)
		if q == 0 {
			c.storeRP(p, idx, v+1)
		} else {
			c.storeRP(p, idx, v-1)
		}
		return tPlain(6, idx)
	case 4:
		v := c.loadR8(y, idx, effAddr, true)
		result, flags := Inc8(v, c.Reg.F())
		c.storeR8(y, idx, effAddr, true, result)
		c.Reg.SetF(flags)
		if y == 6 {
			return tIndexed(11, idx)
		}
		return tPlain(4, idx)
	case 5:
		v := c.loadR8(y, idx, effAddr, true)
		result, flags := Dec8(v, c.Reg.F())
		c.storeR8(y, idx, effAddr, true, result)
		c.Reg.SetF(flags)
		if y == 6 {
			return tIndexed(11, idx)
		}
		return tPlain(4, idx)
	case 6:
		n := c.fetchByte()
		c.storeR8(y, idx, effAddr, true, n)
		if y == 6 {
			return tIndexed(10, idx)
		}
		return tPlain(7, idx)
	default:
		return c.execX0Z7(y)
	}
}

func (c *CPU) execX0Z7(y uint8) int {
	a := c.Reg.A()
	f := c.Reg.F()
	switch y {
	case 0:
		r, fl := Rlca(a)
		c.Reg.SetA(r)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | fl)
	case 1:
		r, fl := Rrca(a)
		c.Reg.SetA(r)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | fl)
	case 2:
		r, fl := Rla(a, f)
		c.Reg.SetA(r)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | fl)
	case 3:
		r, fl := Rra(a, f)
		c.Reg.SetA(r)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | fl)
	case 4:
		r, fl := Daa(a, f)
		c.Reg.SetA(r)
		c.Reg.SetF(fl)
	case 5:
		c.Reg.SetA(^a)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP | FlagC)) | FlagH | FlagN | (^a & flagYX))
	case 6:
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | FlagC | (a & flagYX))
	default:
		carry := f&FlagC ^ FlagC
		h := bsel(f&FlagC != 0, FlagH, 0)
		c.Reg.SetF((f & (FlagS | FlagZ | FlagP)) | h | carry | (a & flagYX))
	}
	return 4
}

func (c *CPU) execIndirectLoad(p, q uint8, idx indexMode) int {
	switch {
	case q == 0 && p == 0:
		c.Mem.Write8(c.Reg.BC(), c.Reg.A())
		return 7
	case q == 0 && p == 1:
		c.Mem.Write8(c.Reg.DE(), c.Reg.A())
		return 7
	case q == 0 && p == 2:
		nn := c.fetchWord()
		c.Mem.Write16(nn, c.loadRP(2, idx))
		return tPlain(16, idx)
	case q == 0:
		nn := c.fetchWord()
		c.Mem.Write8(nn, c.Reg.A())
		return 13
	case q == 1 && p == 0:
		c.Reg.SetA(c.Mem.Read8(c.Reg.BC()))
		return 7
	case q == 1 && p == 1:
		c.Reg.SetA(c.Mem.Read8(c.Reg.DE()))
		return 7
	case q == 1 && p == 2:
		nn := c.fetchWord()
		c.storeRP(2, idx, c.Mem.Read16(nn))
		return tPlain(16, idx)
	default:
		nn := c.fetchWord()
		c.Reg.SetA(c.Mem.Read8(nn))
		return 13
	}
}

// execX1 is LD r[y],r[z], with the HALT exception at y=z=6.
func (c *CPU) execX1(y, z uint8, idx indexMode, effAddr uint16) int {
	if y == 6 && z == 6 {
		c.Reg.SetHalted(true)
		return 4
	}
	memSide := y == 6 || z == 6
	v := c.loadR8(z, idx, effAddr, !memSide)
	c.storeR8(y, idx, effAddr, !memSide, v)
	if memSide {
		return tIndexed(7, idx)
	}
	return tPlain(4, idx)
}

func (c *CPU) execX2(y, z uint8, idx indexMode, effAddr uint16) int {
	operand := c.loadR8(z, idx, effAddr, true)
	result, flags := aluOp(y, c.Reg.A(), operand, c.Reg.F())
	c.Reg.SetF(flags)
	if y != 7 {
		c.Reg.SetA(result)
	}
	if z == 6 {
		return tIndexed(7, idx)
	}
	return tPlain(4, idx)
}

func (c *CPU) execX3(op, y, z, p, q uint8, idx indexMode, wasEI *bool) int {
	switch z {
	case 0:
		if condTrue(c.Reg.F(), y) {
			c.Reg.SetPC(c.pop())
			return 11
		}
		return 5
	case 1:
		return c.execX3Z1(p, q, idx)
	case 2:
		nn := c.fetchWord()
		if condTrue(c.Reg.F(), y) {
			c.Reg.SetPC(nn)
		}
		return 10
	case 3:
		return c.execX3Z3(y, idx, wasEI)
	case 4:
		nn := c.fetchWord()
		if condTrue(c.Reg.F(), y) {
			c.push(c.Reg.PC())
			c.Reg.SetPC(nn)
			return 17
		}
		return 10
	case 5:
		return c.execX3Z5(p, q, idx)
	case 6:
		n := c.fetchByte()
		result, flags := aluOp(y, c.Reg.A(), n, c.Reg.F())
		c.Reg.SetF(flags)
		if y != 7 {
			c.Reg.SetA(result)
		}
		return 7
	default:
		c.push(c.Reg.PC())
		c.Reg.SetPC(uint16(y) * 8)
		return 11
	}
}

func (c *CPU) execX3Z1(p, q uint8, idx indexMode) int {
	if q == 0 {
		c.storeRP2(p, idx, c.pop())
		return tPlain(10, idx)
	}
	switch p {
	case 0:
		c.Reg.SetPC(c.pop())
		return 10
	case 1:
		c.Reg.Exx()
		return 4
	case 2:
		c.Reg.SetPC(c.loadRP(2, idx))
		return tPlain(4, idx)
	default:
		c.Reg.SetSP(c.loadRP(2, idx))
		return tPlain(6, idx)
	}
}

func (c *CPU) execX3Z3(y uint8, idx indexMode, wasEI *bool) int {
	switch y {
	case 0:
		nn := c.fetchWord()
		c.Reg.SetPC(nn)
		return 10
	case 2:
		n := c.fetchByte()
		c.Mem.Out(uint16(c.Reg.A())<<8|uint16(n), c.Reg.A())
		return 11
	case 3:
		n := c.fetchByte()
		c.Reg.SetA(c.Mem.In(uint16(c.Reg.A())<<8 | uint16(n)))
		return 11
	case 4:
		v := c.loadRP(2, idx)
		top := c.Mem.Read16(c.Reg.SP())
		c.Mem.Write16(c.Reg.SP(), v)
		c.storeRP(2, idx, top)
		return tPlain(19, idx)
	case 5:
		c.Reg.ExDEHL()
		return 4
	case 6:
		c.Reg.SetIFF1(false)
		c.Reg.SetIFF2(false)
		return 4
	default:
		c.Reg.SetIFF1(true)
		c.Reg.SetIFF2(true)
		*wasEI = true
		return 4
	}
}

func (c *CPU) execX3Z5(p, q uint8, idx indexMode) int {
	if q == 0 {
		c.push(c.loadRP2(p, idx))
		return tPlain(11, idx)
	}
	if p == 0 {
		nn := c.fetchWord()
		c.push(c.Reg.PC())
		c.Reg.SetPC(nn)
		return 17
	}
	// p==1 is the DD prefix, p==3 the FD prefix — both are consumed by
	// the prefix loop in cpu.go and never reach here. p==2 is ED,
	// likewise handled before execMain is called.
	return 4
}

// tPlain is the timing for ops where an index prefix only substitutes
// a register, never fetching a displacement byte: the published total
// is exactly the unprefixed base plus the 4 T-states the DD/FD byte
// itself already cost in the prefix loop (cpu.go execOne), so nothing
// further is added here.
func tPlain(base int, _ indexMode) int { return base }

// tIndexed is the timing for ops whose (HL) operand became (IX+d) or
// (IY+d): an extra displacement byte was fetched, adding 8 T-states
// beyond the unprefixed base (the loop already accounted for the
// DD/FD byte's own 4).
func tIndexed(base int, idx indexMode) int {
	if idx != idxNone {
		return base + 8
	}
	return base
}
