// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChipDeltaTracksChangedBits(t *testing.T) {
	base := NewChip("fam")
	base.AddTile(&Tile{Name: "T0", TileType: "PLC", CRAM: NewCRAM(1, 4)})
	base.IPConfig[0x10] = 0

	sample := NewChip("fam")
	sampleCRAM := NewCRAM(1, 4)
	sampleCRAM.Set(0, 2, true)
	sample.AddTile(&Tile{Name: "T0", TileType: "PLC", CRAM: sampleCRAM})
	sample.IPConfig[0x10] = 7

	d := sample.Delta(base)
	require := assert.New(t)
	require.Len(d.Tiles["T0"], 1)
	require.Equal(DeltaBit{Frame: 0, Bit: 2, Value: true}, d.Tiles["T0"][0])
	require.Equal(uint8(7), d.IPConfig[0x10])
}

func TestChipDeltaSkipsTilesAbsentFromBase(t *testing.T) {
	base := NewChip("fam")
	sample := NewChip("fam")
	sample.AddTile(&Tile{Name: "Orphan", TileType: "PLC", CRAM: NewCRAM(1, 1)})

	d := sample.Delta(base)
	assert.Empty(t, d.Tiles)
}

func TestIdentityNormalizer(t *testing.T) {
	var n WireNormalizer = IdentityNormalizer{}
	assert.Equal(t, "W", n.Normalize("PLC", "W"))
}
