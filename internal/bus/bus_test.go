package bus

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func romImage() []byte {
	rom := make([]byte, RomSize)
	for i := range rom {
		rom[i] = 0xAA
	}
	return rom
}

// ROM protection invariant (spec §8 property 2).
func TestRomWriteProtected(t *testing.T) {
	b := New()
	require.NoError(t, b.LoadROM(romImage()))

	for _, addr := range []uint16{0x0000, 0x1234, 0x3FFF} {
		before := b.Read8(addr)
		b.Write8(addr, before^0xFF)
		require.Equal(t, before, b.Read8(addr))
	}
}

func TestLoadROMRejectsWrongSize(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.LoadROM(make([]byte, 100)), ErrInvalidRomSize)
}

// Address wrap invariant (spec §8 property 3).
func TestRead16WrapsAt64K(t *testing.T) {
	b := New()
	b.Write8(0xFFFF, 0x12)
	b.Write8(0x0000, 0x34)
	require.Equal(t, uint16(0x3412), b.Read16(0xFFFF))
}

func TestWriteAboveRomIsNotProtected(t *testing.T) {
	b := New()
	require.NoError(t, b.LoadROM(romImage()))
	b.Write8(0x4000, 0x99)
	require.Equal(t, uint8(0x99), b.Read8(0x4000))
}

func TestOutPortSetsBorder(t *testing.T) {
	b := New()
	b.Out(0x00FE, 0x05)
	require.Equal(t, uint8(5), b.Border())
}

func TestSetKeyboardStateRejectsWrongLength(t *testing.T) {
	b := New()
	require.ErrorIs(t, b.SetKeyboardState(make([]byte, 3)), ErrBadKeyboardMatrix)
}

func TestInReflectsKeyboardRowAndReleasedEAR(t *testing.T) {
	b := New()
	require.Equal(t, uint8(0xFF), b.In(0xFEFE), "no key held, all rows released")

	matrix := [8]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	matrix[0] = 0xFE // bit 0 clear: the first key on half-row 0 is held
	require.NoError(t, b.SetKeyboardState(matrix[:]))

	require.Equal(t, uint8(0xFE), b.In(0xFEFE), "half-row 0 selected, key held")
	require.Equal(t, uint8(0xFF), b.In(0xFDFE), "half-row 1 selected, unaffected")
}

func TestInOddPortIsFloatingBus(t *testing.T) {
	b := New()
	require.Equal(t, uint8(0xFF), b.In(0x00FF))
}
