// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusbits/tiledb"
	"github.com/nexusbits/tiledb/chip"
)

func newIPFuzzTestDatabase(t *testing.T) *tiledb.Database {
	t.Helper()
	return newFuzzTestDatabase(t)
}

func TestIPWordFuzzerSolve(t *testing.T) {
	db := newIPFuzzTestDatabase(t)

	f := NewIPWordFuzzer(db, "fam", "IP0", "T0", "CTRL", 2, false, "", nil)
	f.AddSample(0, chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{
		"T0": {{Frame: 2, Bit: 0, Value: true}},
	}})
	f.AddSample(1, chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{
		"T0": {{Frame: 2, Bit: 1, Value: true}},
	}})

	require.NoError(t, f.Solve())

	tbd, err := db.IPBitdb("fam", "IP0")
	require.NoError(t, err)
	word := tbd.DB().Words["CTRL"]
	require.Len(t, word.Bits, 2)
	assert.True(t, word.Bits[0].Contains(2, 0))
	assert.True(t, word.Bits[1].Contains(2, 1))
}

func TestIPWordFuzzerInvertedMode(t *testing.T) {
	db := newIPFuzzTestDatabase(t)

	f := NewIPWordFuzzer(db, "fam", "IP0", "T0", "CTRL", 1, true, "", nil)
	f.AddSample(0, chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{
		"T0": {{Frame: 0, Bit: 0, Value: true}},
	}})

	require.NoError(t, f.Solve())

	tbd, err := db.IPBitdb("fam", "IP0")
	require.NoError(t, err)
	bits := tbd.DB().Words["CTRL"].Bits[0]
	require.Len(t, bits, 1)
	assert.True(t, bits[0].Invert)
}

func TestIPEnumFuzzerSolve(t *testing.T) {
	db := newIPFuzzTestDatabase(t)

	f := NewIPEnumFuzzer(db, "fam", "IP0", "T0", "MODE", false, true, "", nil)
	f.AddSample("OFF", chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{}})
	f.AddSample("ON", chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{
		"T0": {{Frame: 3, Bit: 3, Value: true}},
	}})

	require.NoError(t, f.Solve())

	tbd, err := db.IPBitdb("fam", "IP0")
	require.NoError(t, err)
	enum := tbd.DB().Enums["MODE"]
	assert.Empty(t, enum.Options["OFF"])
	assert.True(t, enum.Options["ON"].Contains(3, 3))
}

func TestIPEnumFuzzerUnderdeterminedSkips(t *testing.T) {
	db := newIPFuzzTestDatabase(t)

	f := NewIPEnumFuzzer(db, "fam", "IP0", "T0", "MODE", false, true, "", nil)
	f.AddSample("ONLY", chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{
		"T0": {{Frame: 0, Bit: 0, Value: true}},
	}})

	require.NoError(t, f.Solve())

	tbd, err := db.IPBitdb("fam", "IP0")
	require.NoError(t, err)
	_, ok := tbd.DB().Enums["MODE"]
	assert.False(t, ok)
}
