package z80

// CPU wires a Registers file to a Memory bus and drives the
// fetch/decode/execute loop plus the interrupt state machine (spec
// §4.4, §4.6, component C5).
type CPU struct {
	Reg *Registers
	Mem Memory

	nmiPending bool
	intPending bool
	intData    uint8 // device data-bus byte, low byte of the IM 2 vector address; defaults to 0xFF

	eiShadow bool // true for exactly the Step() call after EI executed
}

// New returns a CPU with a fresh register file wired to mem.
func New(mem Memory) *CPU {
	return &CPU{Reg: NewRegisters(), Mem: mem, intData: 0xFF}
}

// Reset restores the register file to its power-on state and clears
// any pending interrupt requests.
func (c *CPU) Reset() {
	c.Reg.Reset()
	c.nmiPending = false
	c.intPending = false
	c.eiShadow = false
}

// RequestNMI latches a non-maskable interrupt; it is serviced at the
// start of the next Step call regardless of IFF1.
func (c *CPU) RequestNMI() { c.nmiPending = true }

// RequestInt latches a maskable interrupt with the device-supplied
// data bus byte (used only in IM 2, to form the vector table address;
// IM 0 and IM 1 always vector to 0x0038). It is serviced
// at the start of the next Step call if IFF1 is set and EI's one
// instruction shadow has elapsed.
func (c *CPU) RequestInt(data uint8) {
	c.intPending = true
	c.intData = data
}

// Step executes exactly one instruction, or services one latched
// interrupt, and returns the number of T-states consumed.
func (c *CPU) Step() int {
	if c.nmiPending {
		c.nmiPending = false
		c.Reg.SetHalted(false)
		return c.acceptNMI()
	}
	if c.intPending && c.Reg.IFF1() && !c.eiShadow {
		c.intPending = false
		c.Reg.SetHalted(false)
		return c.acceptInt()
	}
	if c.Reg.Halted() {
		return 4
	}

	wasEI := false
	t := c.execOne(&wasEI)

	if c.eiShadow {
		c.eiShadow = false
	}
	if wasEI {
		c.eiShadow = true
	}
	return t
}

// FrameTStates is the number of T-states in one 48K ZX Spectrum
// display frame (spec §4.6, §6).
const FrameTStates = 69888

// RunForFrame steps the CPU until at least one frame's worth of
// T-states has elapsed, then raises the IM 1 frame interrupt for the
// next call to pick up, and returns the T-states actually consumed
// (>= FrameTStates, since the last instruction of the frame is always
// allowed to complete).
func (c *CPU) RunForFrame() int {
	total := 0
	for total < FrameTStates {
		total += c.Step()
	}
	c.RequestInt(0xFF)
	return total
}

func (c *CPU) acceptNMI() int {
	oldIFF1 := c.Reg.IFF1()
	c.Reg.SetIFF2(oldIFF1)
	c.Reg.SetIFF1(false)
	c.push(c.Reg.PC())
	c.Reg.SetPC(0x0066)
	return 11
}

func (c *CPU) acceptInt() int {
	c.Reg.SetIFF1(false)
	c.Reg.SetIFF2(false)
	c.push(c.Reg.PC())
	switch c.Reg.IM() {
	case 0, 1:
		c.Reg.SetPC(0x0038)
		return 13
	default:
		vector := uint16(c.Reg.I())<<8 | uint16(c.intData&0xFE)
		c.Reg.SetPC(c.Mem.Read16(vector))
		return 19
	}
}

func (c *CPU) push(v uint16) {
	sp := c.Reg.SP() - 2
	c.Reg.SetSP(sp)
	c.Mem.Write16(sp, v)
}

func (c *CPU) pop() uint16 {
	v := c.Mem.Read16(c.Reg.SP())
	c.Reg.SetSP(c.Reg.SP() + 2)
	return v
}

// fetchOpcode reads the byte at PC, advances PC, and bumps R's low 7
// bits — the M1 cycle's side effect (spec §4.4.1).
func (c *CPU) fetchOpcode() uint8 {
	v := c.Mem.Read8(c.Reg.PC())
	c.Reg.IncPC(1)
	c.Reg.IncR()
	return v
}

// fetchByte reads the byte at PC and advances PC, with no R side
// effect — used for immediates and displacements.
func (c *CPU) fetchByte() uint8 {
	v := c.Mem.Read8(c.Reg.PC())
	c.Reg.IncPC(1)
	return v
}

func (c *CPU) fetchWord() uint16 {
	v := c.Mem.Read16(c.Reg.PC())
	c.Reg.IncPC(2)
	return v
}

// indexMode selects which (if any) of IX/IY the current instruction's
// HL/H/L/(HL) references are retargeted to (spec §4.4.2).
type indexMode int

const (
	idxNone indexMode = iota
	idxIX
	idxIY
)

// execOne walks the DD/FD prefix chain, then dispatches to the CB, ED
// or main opcode table. Repeated DD/FD bytes each cost 4 T-states and
// re-arm R, matching the documented "prefix chases its own tail"
// behavior.
func (c *CPU) execOne(wasEI *bool) int {
	idx := idxNone
	t := 0
	for {
		op := c.fetchOpcode()
		switch op {
		case 0xDD:
			idx = idxIX
			t += 4
			continue
		case 0xFD:
			idx = idxIY
			t += 4
			continue
		case 0xCB:
			if idx != idxNone {
				return t + c.execIndexedCB(idx)
			}
			return t + c.execCB()
		case 0xED:
			return t + c.execED()
		default:
			return t + c.execMain(op, idx, wasEI)
		}
	}
}

func indexReg(reg *Registers, idx indexMode) uint16 {
	if idx == idxIX {
		return reg.IX()
	}
	return reg.IY()
}

func setIndexReg(reg *Registers, idx indexMode, v uint16) {
	if idx == idxIX {
		reg.SetIX(v)
	} else {
		reg.SetIY(v)
	}
}

func indexHi(reg *Registers, idx indexMode) uint8 {
	if idx == idxIX {
		return reg.IXH()
	}
	return reg.IYH()
}

func setIndexHi(reg *Registers, idx indexMode, v uint8) {
	if idx == idxIX {
		reg.SetIXH(v)
	} else {
		reg.SetIYH(v)
	}
}

func indexLo(reg *Registers, idx indexMode) uint8 {
	if idx == idxIX {
		return reg.IXL()
	}
	return reg.IYL()
}

func setIndexLo(reg *Registers, idx indexMode, v uint8) {
	if idx == idxIX {
		reg.SetIXL(v)
	} else {
		reg.SetIYL(v)
	}
}

func signExtend(d uint8) uint16 { return uint16(int16(int8(d))) }

func indexedAddr(reg *Registers, idx indexMode, d uint8) uint16 {
	return indexReg(reg, idx) + signExtend(d)
}
