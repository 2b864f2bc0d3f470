// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nexusbits/tiledb"
)

func TestCRAMGetSet(t *testing.T) {
	c := NewCRAM(2, 4)
	assert.False(t, c.Get(0, 0))
	c.Set(0, 0, true)
	assert.True(t, c.Get(0, 0))
	c.Set(0, 0, false)
	assert.False(t, c.Get(0, 0))
}

func TestCRAMOutOfRangeIsNoOp(t *testing.T) {
	c := NewCRAM(1, 1)
	assert.False(t, c.Get(5, 5))
	c.Set(5, 5, true)
	assert.False(t, c.Get(5, 5))
}

func TestCRAMSetBitsHonorsInvert(t *testing.T) {
	c := NewCRAM(1, 2)
	bits := tiledb.ConfigBitSet{
		{Frame: 0, Bit: 0, Invert: false},
		{Frame: 0, Bit: 1, Invert: true},
	}
	c.SetBits(bits, true)
	assert.True(t, c.Get(0, 0))
	assert.False(t, c.Get(0, 1))
}

func TestCRAMClone(t *testing.T) {
	c := NewCRAM(1, 1)
	c.Set(0, 0, true)
	clone := c.Clone()
	clone.Set(0, 0, false)
	assert.True(t, c.Get(0, 0))
	assert.False(t, clone.Get(0, 0))
}
