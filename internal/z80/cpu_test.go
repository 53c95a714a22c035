package z80

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// flatMem is a minimal z80.Memory with no ROM protection, used to
// drive the CPU directly against the literal byte sequences from
// spec §8's end-to-end scenarios.
type flatMem struct {
	m [65536]byte
}

func (f *flatMem) Read8(addr uint16) uint8      { return f.m[addr] }
func (f *flatMem) Write8(addr uint16, v uint8)  { f.m[addr] = v }
func (f *flatMem) Read16(addr uint16) uint16    { return uint16(f.m[addr]) | uint16(f.m[addr+1])<<8 }
func (f *flatMem) Write16(addr uint16, v uint16) {
	f.m[addr] = uint8(v)
	f.m[addr+1] = uint8(v >> 8)
}
func (f *flatMem) In(port uint16) uint8    { return 0xFF }
func (f *flatMem) Out(port uint16, v uint8) {}

func load(mem *flatMem, addr uint16, bytes ...uint8) {
	for i, b := range bytes {
		mem.m[int(addr)+i] = b
	}
}

// S1: 8-bit add with carry and half-carry.
func TestScenarioS1AddHalfCarry(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0x3E, 0x0F, 0x06, 0x01, 0x80)
	c := New(mem)
	for i := 0; i < 3; i++ {
		c.Step()
	}
	require.Equal(t, uint8(0x10), c.Reg.A())
	f := c.Reg.F()
	require.Zero(t, f&FlagZ)
	require.Zero(t, f&FlagS)
	require.NotZero(t, f&FlagH)
	require.Zero(t, f&FlagN)
	require.Zero(t, f&FlagC)
	require.Zero(t, f&FlagV)
}

// S2: signed overflow.
func TestScenarioS2SignedOverflow(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0x3E, 0x7F, 0x06, 0x01, 0x80)
	c := New(mem)
	for i := 0; i < 3; i++ {
		c.Step()
	}
	require.Equal(t, uint8(0x80), c.Reg.A())
	f := c.Reg.F()
	require.NotZero(t, f&FlagS)
	require.Zero(t, f&FlagZ)
	require.NotZero(t, f&FlagH)
	require.Zero(t, f&FlagN)
	require.Zero(t, f&FlagC)
	require.NotZero(t, f&FlagV)
}

// S3: JR taken/not-taken.
func TestScenarioS3JRTaken(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0x3E, 0x00, 0xB7, 0x28, 0x02, 0x3E, 0xFF, 0x3E, 0xAA)
	c := New(mem)
	for c.Reg.PC() < 9 {
		c.Step()
	}
	require.Equal(t, uint8(0xAA), c.Reg.A())
}

// S4: CALL/RET round trip.
func TestScenarioS4CallRet(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0x8000, 0xCD, 0x00, 0x90, 0x76)
	load(mem, 0x9000, 0xC9)
	c := New(mem)
	c.Reg.SetPC(0x8000)
	c.Reg.SetSP(0xFFFE)

	c.Step() // CALL 0x9000
	require.Equal(t, uint16(0x9000), c.Reg.PC())
	require.Equal(t, uint8(0x03), mem.m[0xFFFC])
	require.Equal(t, uint8(0x80), mem.m[0xFFFD])

	c.Step() // RET
	require.Equal(t, uint16(0x8003), c.Reg.PC())
	require.Equal(t, uint16(0xFFFE), c.Reg.SP())
}

// JP nn must load PC from the operand word, not fall through to EI
// (spec §4.4.3 Control flow).
func TestJPnnLoadsPC(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xC3, 0x00, 0x90) // JP 0x9000
	c := New(mem)
	c.Reg.SetIFF1(false)

	t_ := c.Step()
	require.Equal(t, 10, t_)
	require.Equal(t, uint16(0x9000), c.Reg.PC())
	require.False(t, c.Reg.IFF1(), "JP nn must not enable interrupts")
}

// JP (HL) jumps to HL, not IY, when no index prefix is active (spec
// §4.4.3 Control flow).
func TestJPHLJumpsToHL(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xE9) // JP (HL)
	c := New(mem)
	c.Reg.SetHL(0x4000)
	c.Reg.SetIY(0x5000)

	c.Step()
	require.Equal(t, uint16(0x4000), c.Reg.PC())
}

// JP (IX) still jumps to IX under the DD prefix.
func TestJPIXJumpsToIX(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xDD, 0xE9) // JP (IX)
	c := New(mem)
	c.Reg.SetHL(0x4000)
	c.Reg.SetIX(0x6000)

	c.Step()
	require.Equal(t, uint16(0x6000), c.Reg.PC())
}

// S5: LDIR.
func TestScenarioS5Ldir(t *testing.T) {
	mem := &flatMem{}
	for i := 0; i < 0x10; i++ {
		mem.m[0x6000+i] = uint8(0x10 + i)
	}
	load(mem, 0, 0xED, 0xB0)
	c := New(mem)
	c.Reg.SetHL(0x6000)
	c.Reg.SetDE(0x7000)
	c.Reg.SetBC(0x0010)

	for c.Reg.BC() != 0 {
		c.Step()
	}

	for i := 0; i < 0x10; i++ {
		require.Equal(t, mem.m[0x6000+i], mem.m[0x7000+i])
	}
	require.Equal(t, uint16(0x6010), c.Reg.HL())
	require.Equal(t, uint16(0x7010), c.Reg.DE())
	require.Equal(t, uint16(0), c.Reg.BC())
	require.Equal(t, uint16(2), c.Reg.PC())
}

// PC monotonic modulo branches (spec §8 property 4).
func TestPCAdvancesByInstructionLength(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0x00) // NOP
	c := New(mem)
	c.Step()
	require.Equal(t, uint16(1), c.Reg.PC())
}

// IM-1 interrupt (spec §8 property 8).
func TestIM1InterruptPushesPC(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0x1000, 0x00) // NOP, never reached before the interrupt lands
	c := New(mem)
	c.Reg.SetPC(0x1000)
	c.Reg.SetSP(0xFFFE)
	c.Reg.SetIFF1(true)
	c.Reg.SetIM(1)

	c.RequestInt(0xFF)
	t_ := c.Step()
	require.Equal(t, 13, t_)
	require.Equal(t, uint16(0x0038), c.Reg.PC())
	require.Equal(t, uint16(0x1000), mem.Read16(0xFFFC))
	require.False(t, c.Reg.IFF1())
}

func TestIM1InterruptIgnoredWhenIFF1Clear(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0x1000, 0x00)
	c := New(mem)
	c.Reg.SetPC(0x1000)
	c.Reg.SetIFF1(false)

	c.RequestInt(0xFF)
	c.Step()
	require.Equal(t, uint16(0x1001), c.Reg.PC())
}

func TestEIDelaysInterruptByOneInstruction(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xFB, 0x00, 0x00) // EI; NOP; NOP
	c := New(mem)
	c.Reg.SetIFF1(false)
	c.RequestInt(0xFF)

	c.Step() // EI: IFF1 set, but this call's interrupt check already passed
	require.Equal(t, uint16(1), c.Reg.PC())

	c.Step() // the NOP immediately after EI must still execute uninterrupted
	require.Equal(t, uint16(2), c.Reg.PC())

	c.Step() // now the latched interrupt may be serviced
	require.Equal(t, uint16(0x0038), c.Reg.PC())
}

func TestHaltThenInterrupt(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0x76) // HALT
	c := New(mem)
	c.Reg.SetIFF1(true)
	c.Reg.SetSP(0xFFFE)

	c.Step()
	require.True(t, c.Reg.Halted())
	require.Equal(t, uint16(1), c.Reg.PC())

	t_ := c.Step() // still halted, no interrupt pending
	require.Equal(t, 4, t_)
	require.True(t, c.Reg.Halted())

	c.RequestInt(0xFF)
	c.Step()
	require.False(t, c.Reg.Halted())
	require.Equal(t, uint16(0x0038), c.Reg.PC())
	require.Equal(t, uint16(1), mem.Read16(0xFFFC))
}

func TestCBBitOnMemory(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xCB, 0x7E) // BIT 7,(HL)
	c := New(mem)
	c.Reg.SetHL(0x8000)
	mem.m[0x8000] = 0x80
	c.Step()
	require.Zero(t, c.Reg.F()&FlagZ)
	require.NotZero(t, c.Reg.F()&FlagS)
}

// BIT n,(HL) takes its Y/X flags from MEMPTR (HL+1)'s high byte, not
// from the tested byte itself (spec §4.2).
func TestCBBitOnMemoryUsesMemptrForYX(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xCB, 0x46) // BIT 0,(HL)
	c := New(mem)
	c.Reg.SetHL(0x81FF) // HL+1 = 0x8200: high byte 0x82 has bits 3,5 clear
	mem.m[0x81FF] = 0x28 // operand itself has bits 3 and 5 set
	c.Step()
	require.Zero(t, c.Reg.F()&flagYX, "Y/X must come from MEMPTR high byte, not the operand")
}

func TestDDCBRotateHLSlotWritesMemoryOnly(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xDD, 0xCB, 0x02, 0x06) // RLC (IX+2), (HL)-slot form: memory only, no register write-back
	c := New(mem)
	c.Reg.SetIX(0x9000)
	mem.m[0x9002] = 0x81
	c.Step()
	require.Equal(t, uint8(0x03), mem.m[0x9002])
}

func TestDDCBRegisterWriteBack(t *testing.T) {
	mem := &flatMem{}
	load(mem, 0, 0xDD, 0xCB, 0x02, 0x00) // RLC (IX+2),B
	c := New(mem)
	c.Reg.SetIX(0x9000)
	mem.m[0x9002] = 0x81
	c.Step()
	require.Equal(t, uint8(0x03), mem.m[0x9002])
	require.Equal(t, uint8(0x03), c.Reg.B())
}
