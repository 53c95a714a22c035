// Package snapshot decodes the .sna and .z80 ZX Spectrum snapshot
// formats (spec §6) into a register file and 48 KiB of RAM. Decoding
// happens into a scratch buffer first and is committed to the live
// register file and bus only once the whole snapshot has been parsed
// successfully (spec §7: the core must never be left half-restored).
package snapshot

import (
	"encoding/binary"
	"errors"

	"github.com/oisee/gozxcore/internal/z80"
)

// ErrInvalidSnapshot covers every malformed-input case: wrong length,
// bad version byte, a compressed block that would overrun its
// destination, or a RAM payload whose size doesn't match the format.
var ErrInvalidSnapshot = errors.New("snapshot: invalid or corrupt snapshot data")

// RAM48K is the number of bytes of RAM a 48K snapshot carries.
const RAM48K = 0xC000

// state is the scratch register/flag set decoded before committing.
type state struct {
	af, bc, de, hl     uint16
	af2, bc2, de2, hl2 uint16
	ix, iy             uint16
	pc, sp             uint16
	i, r               uint8
	iff1, iff2         bool
	im                 uint8
	border             uint8
}

func (s *state) commit(reg *z80.Registers) {
	reg.SetAF(s.af)
	reg.SetBC(s.bc)
	reg.SetDE(s.de)
	reg.SetHL(s.hl)
	reg.SetShadow(s.af2, s.bc2, s.de2, s.hl2)
	reg.SetIX(s.ix)
	reg.SetIY(s.iy)
	reg.SetPC(s.pc)
	reg.SetSP(s.sp)
	reg.SetI(s.i)
	reg.SetR(s.r)
	reg.SetIFF1(s.iff1)
	reg.SetIFF2(s.iff2)
	reg.SetIM(s.im)
	reg.SetHalted(false)
}

func le16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }

// decompressRLE expands the "ED ED n v" run-length encoding shared by
// every .z80 variant: n repeats of byte v, n==0 meaning 256. A lone ED
// not followed by another ED is a literal byte (spec §6). stopAtV1Term,
// when true, additionally recognizes the v1-only 00 ED ED 00 block
// terminator and stops before consuming it.
func decompressRLE(data []byte, want int, stopAtV1Term bool) []byte {
	out := make([]byte, 0, want)
	i := 0
	for i < len(data) && len(out) < want {
		if stopAtV1Term && i+3 < len(data) &&
			data[i] == 0x00 && data[i+1] == 0xED && data[i+2] == 0xED && data[i+3] == 0x00 {
			break
		}
		if data[i] == 0xED && i+3 < len(data) && data[i+1] == 0xED {
			n := int(data[i+2])
			if n == 0 {
				n = 256
			}
			v := data[i+3]
			for k := 0; k < n && len(out) < want; k++ {
				out = append(out, v)
			}
			i += 4
			continue
		}
		out = append(out, data[i])
		i++
	}
	return out
}
