package snapshot

import "github.com/oisee/gozxcore/internal/z80"

// SnaSize is the exact byte length of a 48K .sna file: a 27-byte
// header plus 48 KiB of RAM (spec §6).
const SnaSize = 27 + RAM48K

// ram is the narrow bus contract snapshot loading needs: bulk RAM
// access plus the Memory interface for the post-load PC pop.
type ram interface {
	RAM() []byte
	z80.Memory
}

// LoadSNA decodes a 48K .sna image into reg and ram. PC is not stored
// in the header — it is recovered by popping the word at the restored
// SP, exactly as the original RST-based snapshotting trick left it on
// the stack (spec §6).
func LoadSNA(data []byte, reg *z80.Registers, mem ram) error {
	if len(data) != SnaSize {
		return ErrInvalidSnapshot
	}

	var s state
	s.i = data[0]
	s.hl2 = le16(data[1:3])
	s.de2 = le16(data[3:5])
	s.bc2 = le16(data[5:7])
	s.af2 = le16(data[7:9])
	s.hl = le16(data[9:11])
	s.de = le16(data[11:13])
	s.bc = le16(data[13:15])
	s.iy = le16(data[15:17])
	s.ix = le16(data[17:19])
	iff2 := data[19]&0x04 != 0
	s.iff1, s.iff2 = iff2, iff2
	s.r = data[20]
	s.af = le16(data[21:23])
	s.sp = le16(data[23:25])
	s.im = data[25]
	s.border = data[26]
	if s.im > 2 {
		return ErrInvalidSnapshot
	}

	ramImage := make([]byte, RAM48K)
	copy(ramImage, data[27:27+RAM48K])

	copy(mem.RAM()[0x4000:], ramImage)
	s.commit(reg)

	reg.SetPC(mem.Read16(s.sp))
	reg.SetSP(s.sp + 2)
	return nil
}
