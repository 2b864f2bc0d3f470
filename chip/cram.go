// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chip

import (
	"github.com/nexusbits/tiledb"
)

// CRAM is a dense configuration-RAM bitset addressed by (frame, bit),
// backed by a flat []uint64 rather than the teacher's popcount-compressed
// sparse array: a programmed tile's CRAM is dense by construction (every
// frame/bit coordinate within the tile's footprint exists), so there is
// nothing for a sparse representation to save.
type CRAM struct {
	frames       int
	bitsPerFrame int
	words        []uint64
}

// NewCRAM returns a zeroed CRAM sized for frames frames of bitsPerFrame
// bits each.
func NewCRAM(frames, bitsPerFrame int) *CRAM {
	total := frames * bitsPerFrame
	return &CRAM{
		frames:       frames,
		bitsPerFrame: bitsPerFrame,
		words:        make([]uint64, (total+63)/64),
	}
}

// Frames returns the number of frames this CRAM spans.
func (c *CRAM) Frames() int { return c.frames }

// BitsPerFrame returns the number of bits per frame this CRAM spans.
func (c *CRAM) BitsPerFrame() int { return c.bitsPerFrame }

func (c *CRAM) index(frame, bit int) (word int, mask uint64, ok bool) {
	if frame < 0 || frame >= c.frames || bit < 0 || bit >= c.bitsPerFrame {
		return 0, 0, false
	}
	idx := frame*c.bitsPerFrame + bit
	return idx / 64, uint64(1) << uint(idx%64), true
}

// Get reports the bit at (frame, bit), or false if out of range.
func (c *CRAM) Get(frame, bit int) bool {
	word, mask, ok := c.index(frame, bit)
	if !ok {
		return false
	}
	return c.words[word]&mask != 0
}

// Set writes the bit at (frame, bit). Out-of-range coordinates are a
// silent no-op, matching a tile footprint that simply has no such bit.
func (c *CRAM) Set(frame, bit int, val bool) {
	word, mask, ok := c.index(frame, bit)
	if !ok {
		return
	}
	if val {
		c.words[word] |= mask
	} else {
		c.words[word] &^= mask
	}
}

// SetBits sets every (frame, bit) named in bits to val, honoring each
// ConfigBit's Invert flag (an inverted bit is set to val XOR true).
func (c *CRAM) SetBits(bits tiledb.ConfigBitSet, val bool) {
	for _, b := range bits {
		c.Set(b.Frame, b.Bit, val != b.Invert)
	}
}

// Clone deep-copies c.
func (c *CRAM) Clone() *CRAM {
	out := &CRAM{frames: c.frames, bitsPerFrame: c.bitsPerFrame}
	out.words = append([]uint64(nil), c.words...)
	return out
}
