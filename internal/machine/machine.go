// Package machine wires the CPU, bus and video decoder into the core
// API a host collaborator drives (spec §6): New, LoadROM,
// LoadSnapshot, SetKeyboardState, Step, RunForFrame and Render.
package machine

import (
	"github.com/oisee/gozxcore/internal/bus"
	"github.com/oisee/gozxcore/internal/snapshot"
	"github.com/oisee/gozxcore/internal/video"
	"github.com/oisee/gozxcore/internal/z80"
)

// Machine is a complete 48K ZX Spectrum core: CPU, address/IO bus and
// the screen decoder, bundled behind the host-facing API of spec §6.
type Machine struct {
	CPU     *z80.CPU
	Bus     *bus.Bus
	decoder video.Decoder
}

// New returns a Machine in its power-on state: zeroed RAM, register
// file per spec §3's Lifecycle, no ROM loaded yet.
func New() *Machine {
	b := bus.New()
	return &Machine{
		CPU: z80.New(b),
		Bus: b,
	}
}

// LoadROM installs the 16 KiB Spectrum ROM image at [0x0000, 0x4000)
// and write-protects it.
func (m *Machine) LoadROM(data []byte) error {
	return m.Bus.LoadROM(data)
}

// LoadSnapshot replaces the register file and all 48 KiB of RAM from a
// .sna or .z80 image, auto-detecting the format by length/header shape.
func (m *Machine) LoadSnapshot(data []byte) error {
	if len(data) == snapshot.SnaSize {
		return snapshot.LoadSNA(data, m.CPU.Reg, m.Bus)
	}
	return snapshot.LoadZ80(data, m.CPU.Reg, m.Bus)
}

// SetKeyboardState replaces the 8-byte keyboard-matrix snapshot.
func (m *Machine) SetKeyboardState(matrix []byte) error {
	return m.Bus.SetKeyboardState(matrix)
}

// Step executes exactly one instruction (or services one latched
// interrupt, or idles through HALT) and returns the T-states consumed.
func (m *Machine) Step() int {
	return m.CPU.Step()
}

// RunForFrame steps the CPU for one 48K display frame, raises the IM 1
// frame interrupt for the host's next Step/RunForFrame to pick up, and
// advances the FLASH counter. Returns the T-states actually consumed.
func (m *Machine) RunForFrame() int {
	t := m.CPU.RunForFrame()
	m.decoder.Tick()
	return t
}

// Render decodes the current screen/attribute RAM into dst, a buffer
// of exactly video.Width*video.Height ARGB8888 pixels.
func (m *Machine) Render(dst []uint32) {
	m.decoder.Decode(m.Bus.RAM(), dst)
}
