package snapshot

import "github.com/oisee/gozxcore/internal/z80"

// .z80 v2/v3 48K page numbers, mapping a page id to its base address
// in the flat 64 KiB address space.
var z80PageBase = map[uint8]uint16{
	4: 0x8000,
	5: 0xC000,
	8: 0x4000,
}

// LoadZ80 decodes a .z80 snapshot (v1, v2 or v3) into reg and mem. Only
// 48K machines are supported (spec §6, Non-goals: no 128K banking); a
// v2/v3 file whose hardware-mode byte indicates anything but 48K/16K
// is rejected.
func LoadZ80(data []byte, reg *z80.Registers, mem ram) error {
	if len(data) < 30 {
		return ErrInvalidSnapshot
	}

	var s state
	s.af = uint16(data[0])<<8 | uint16(data[1])
	s.bc = le16(data[2:4])
	s.hl = le16(data[4:6])
	pcV1 := le16(data[6:8])
	s.sp = le16(data[8:10])
	s.i = data[10]
	rLow := data[11]
	flags1 := data[12]
	if flags1 == 0xFF {
		flags1 = 1
	}
	s.r = (rLow & 0x7F) | ((flags1 & 0x01) << 7)
	s.border = (flags1 >> 1) & 0x07
	compressedV1 := flags1&0x20 != 0

	s.de = le16(data[13:15])
	s.bc2 = le16(data[15:17])
	s.de2 = le16(data[17:19])
	s.hl2 = le16(data[19:21])
	aPrime, fPrime := data[21], data[22]
	s.af2 = uint16(aPrime)<<8 | uint16(fPrime)
	s.iy = le16(data[23:25])
	s.ix = le16(data[25:27])
	s.iff1 = data[27] != 0
	s.iff2 = data[28] != 0
	s.im = data[29] & 0x03

	ramImage := make([]byte, RAM48K)

	if pcV1 != 0 {
		// Version 1: PC lives in the base header; the remainder of the
		// file is one contiguous 48K RAM image, optionally
		// RLE-compressed and terminated by 00 ED ED 00.
		s.pc = pcV1
		payload := data[30:]
		if compressedV1 {
			// Ask for one byte more than fits so an overrunning block
			// is detected rather than silently truncated.
			expanded := decompressRLE(payload, RAM48K+1, true)
			if len(expanded) != RAM48K {
				return ErrInvalidSnapshot
			}
			copy(ramImage, expanded)
		} else {
			if len(payload) != RAM48K {
				return ErrInvalidSnapshot
			}
			copy(ramImage, payload)
		}
	} else {
		if len(data) < 32 {
			return ErrInvalidSnapshot
		}
		extraLen := int(le16(data[30:32]))
		if extraLen != 23 && extraLen != 54 && extraLen != 55 {
			return ErrInvalidSnapshot
		}
		extra := data[32:]
		if len(extra) < extraLen {
			return ErrInvalidSnapshot
		}
		s.pc = le16(extra[0:2])
		hwMode := extra[2]
		if !is48KMode(hwMode, extraLen) {
			return ErrInvalidSnapshot
		}

		blocks := extra[extraLen:]
		filled := map[uint8]bool{}
		for len(blocks) >= 3 {
			blockLen := int(le16(blocks[0:2]))
			page := blocks[2]
			blocks = blocks[3:]
			base, ok := z80PageBase[page]
			if !ok {
				if blockLen > len(blocks) {
					return ErrInvalidSnapshot
				}
				blocks = blocks[blockLen:]
				continue
			}
			var page14k []byte
			if blockLen == 0xFFFF {
				if len(blocks) < 16384 {
					return ErrInvalidSnapshot
				}
				page14k = blocks[:16384]
				blocks = blocks[16384:]
			} else {
				if blockLen > len(blocks) {
					return ErrInvalidSnapshot
				}
				page14k = decompressRLE(blocks[:blockLen], 16384+1, false)
				if len(page14k) != 16384 {
					return ErrInvalidSnapshot
				}
				blocks = blocks[blockLen:]
			}
			copy(ramImage[base-0x4000:], page14k)
			filled[page] = true
		}
		if len(filled) != 3 {
			return ErrInvalidSnapshot
		}
	}

	copy(mem.RAM()[0x4000:], ramImage)
	s.commit(reg)
	reg.SetSP(s.sp)
	return nil
}

// is48KMode reports whether the hardware-mode byte selects a plain 48K
// (or 16K) machine for the given extra-header length (the encoding
// differs slightly between v2's 23-byte header and v3's 54/55-byte
// header).
func is48KMode(hwMode uint8, extraLen int) bool {
	if extraLen == 23 {
		return hwMode == 0 || hwMode == 1
	}
	return hwMode == 0 || hwMode == 1 || hwMode == 3
}
