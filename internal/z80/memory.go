package z80

// Memory is the bus contract the CPU drives (spec §4.1, component C1).
// internal/bus.Bus implements this; tests may substitute a bare array.
type Memory interface {
	Read8(addr uint16) uint8
	Write8(addr uint16, v uint8)
	Read16(addr uint16) uint16
	Write16(addr uint16, v uint16)
	In(port uint16) uint8
	Out(port uint16, v uint8)
}
