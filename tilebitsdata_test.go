// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTileBitsData(opts Options) *TileBitsData {
	return NewTileBitsData("T0", NewTileBitsDatabase(), opts, nil)
}

func TestAddPipConflictDetection(t *testing.T) {
	td := newTestTileBitsData(Options{})

	require.NoError(t, td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 1})))
	err := td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 2}))

	require.Error(t, err)
	assert.True(t, IsBitConflict(err))
	assert.Contains(t, err.Error(), "a")
	assert.Contains(t, err.Error(), "b")
}

func TestAddPipSameBitsIsNoOp(t *testing.T) {
	td := newTestTileBitsData(Options{})
	require.NoError(t, td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 1})))
	td.ClearDirty()
	require.NoError(t, td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 1})))
	assert.False(t, td.Dirty())
}

func TestAddPipAllowBitChangeOverwrites(t *testing.T) {
	td := newTestTileBitsData(Options{AllowBitChange: true})

	require.NoError(t, td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 1})))
	require.NoError(t, td.AddPip("a", "b", NewConfigBitSet(ConfigBit{Frame: 1, Bit: 2})))

	pip, ok := td.FindPip("a", "b")
	require.True(t, ok)
	assert.True(t, pip.Bits.Contains(1, 2))
}

func TestAddWordWidthConflict(t *testing.T) {
	td := newTestTileBitsData(Options{})
	require.NoError(t, td.AddWord("W", "", []ConfigBitSet{NewConfigBitSet(ConfigBit{Frame: 0, Bit: 0})}))

	err := td.AddWord("W", "", []ConfigBitSet{
		NewConfigBitSet(ConfigBit{Frame: 0, Bit: 0}),
		NewConfigBitSet(ConfigBit{Frame: 0, Bit: 1}),
	})
	require.Error(t, err)
	assert.True(t, IsBitConflict(err))
}

func TestAddEnumOptionConflict(t *testing.T) {
	td := newTestTileBitsData(Options{})
	require.NoError(t, td.AddEnumOption("M", "ON", "", NewConfigBitSet(ConfigBit{Frame: 5, Bit: 5})))
	err := td.AddEnumOption("M", "ON", "", NewConfigBitSet(ConfigBit{Frame: 5, Bit: 6}))
	require.Error(t, err)
	assert.True(t, IsBitConflict(err))
}

func TestMergeIsIdempotent(t *testing.T) {
	src := NewTileBitsDatabase()
	src.Pips["B"] = []ConfigPipData{{FromWire: "A", Bits: NewConfigBitSet(ConfigBit{Frame: 1, Bit: 1})}}
	src.Words["W"] = ConfigWordData{Bits: []ConfigBitSet{NewConfigBitSet(ConfigBit{Frame: 2, Bit: 0})}}

	td := newTestTileBitsData(Options{})
	require.NoError(t, td.Merge(&src))
	before := td.DB().Clone()

	require.NoError(t, td.Merge(&src))
	after := td.DB()

	assert.True(t, before.Pips["B"][0].Bits.Equal(after.Pips["B"][0].Bits))
	assert.Equal(t, before.Words, after.Words)
}

func TestMergeAlwaysMarksDirty(t *testing.T) {
	td := newTestTileBitsData(Options{})
	td.ClearDirty()
	empty := NewTileBitsDatabase()
	require.NoError(t, td.Merge(&empty))
	assert.True(t, td.Dirty())
}

func TestMergeExpandsBidirConns(t *testing.T) {
	other := NewTileBitsDatabase()
	other.Conns["B"] = []FixedConnectionData{{FromWire: "A", Bidir: true}}

	td := newTestTileBitsData(Options{})
	require.NoError(t, td.Merge(&other))

	_, aToB := td.DB().Conns["B"]
	_, bToA := td.DB().Conns["A"]
	assert.True(t, aToB)
	assert.True(t, bToA)
}

func TestSetBelOffsetConflict(t *testing.T) {
	td := newTestTileBitsData(Options{})
	require.NoError(t, td.SetBelOffset(FrameBitOffset{DX: 1, DY: 0}))
	err := td.SetBelOffset(FrameBitOffset{DX: 2, DY: 0})
	require.Error(t, err)
	assert.True(t, IsBitConflict(err))
}
