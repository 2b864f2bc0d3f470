// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigBitSetNormalizeSortsAndDedups(t *testing.T) {
	s := ConfigBitSet{
		{Frame: 2, Bit: 1},
		{Frame: 1, Bit: 5},
		{Frame: 1, Bit: 5},
		{Frame: 1, Bit: 2},
	}
	got := s.Normalize()
	want := ConfigBitSet{
		{Frame: 1, Bit: 2},
		{Frame: 1, Bit: 5},
		{Frame: 2, Bit: 1},
	}
	assert.Equal(t, want, got)
}

func TestConfigBitSetEqual(t *testing.T) {
	a := NewConfigBitSet(ConfigBit{Frame: 0, Bit: 0}, ConfigBit{Frame: 0, Bit: 1})
	b := NewConfigBitSet(ConfigBit{Frame: 0, Bit: 1}, ConfigBit{Frame: 0, Bit: 0})
	assert.True(t, a.Equal(b))

	c := NewConfigBitSet(ConfigBit{Frame: 0, Bit: 1, Invert: true}, ConfigBit{Frame: 0, Bit: 0})
	assert.False(t, a.Equal(c))
}

func TestConfigBitSetContains(t *testing.T) {
	s := NewConfigBitSet(ConfigBit{Frame: 3, Bit: 4, Invert: true})
	assert.True(t, s.Contains(3, 4))
	assert.False(t, s.Contains(3, 5))
}

func TestConfigBitString(t *testing.T) {
	assert.Equal(t, "F3B12", ConfigBit{Frame: 3, Bit: 12}.String())
	assert.Equal(t, "!F3B12", ConfigBit{Frame: 3, Bit: 12, Invert: true}.String())
}
