// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusbits/tiledb"
	"github.com/nexusbits/tiledb/chip"
)

func newBulkTestDatabase(t *testing.T) (*tiledb.Database, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "devices.json"), []byte(fuzzTestDevicesJSON), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "fam", "tiletypes"), 0o755))
	db, err := tiledb.Open(tiledb.NewFSSource(root), tiledb.Options{}, nil)
	require.NoError(t, err)
	return db, root
}

func TestAddAlwaysOnBitsComputesResidual(t *testing.T) {
	db, _ := newBulkTestDatabase(t)

	tbd, err := db.TileBitdb("fam", "TT0")
	require.NoError(t, err)
	require.NoError(t, tbd.AddPip("A", "W", tiledb.NewConfigBitSet(tiledb.ConfigBit{Frame: 0, Bit: 0})))

	baseline := chip.NewChip("fam")
	for _, name := range []string{"T0", "T1"} {
		c := chip.NewCRAM(1, 4)
		c.Set(0, 0, true) // claimed by the pip above, excluded from residual
		c.Set(0, 1, true) // unclaimed, part of the residual
		baseline.AddTile(&chip.Tile{Name: name, TileType: "TT0", CRAM: c})
	}

	require.NoError(t, AddAlwaysOnBits(db, "fam", baseline))

	assert.True(t, tbd.DB().AlwaysOn.Contains(0, 1))
	assert.False(t, tbd.DB().AlwaysOn.Contains(0, 0))
}

func TestAddAlwaysOnBitsDisagreementErrors(t *testing.T) {
	db, _ := newBulkTestDatabase(t)

	baseline := chip.NewChip("fam")
	c0 := chip.NewCRAM(1, 4)
	c0.Set(0, 1, true)
	baseline.AddTile(&chip.Tile{Name: "T0", TileType: "TT0", CRAM: c0})

	c1 := chip.NewCRAM(1, 4)
	c1.Set(0, 2, true)
	baseline.AddTile(&chip.Tile{Name: "T1", TileType: "TT0", CRAM: c1})

	err := AddAlwaysOnBits(db, "fam", baseline)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "always-on disagreement")
}

func TestCopyDBCopiesMatchingPips(t *testing.T) {
	db, _ := newBulkTestDatabase(t)

	src, err := db.TileBitdb("fam", "SRC")
	require.NoError(t, err)
	require.NoError(t, src.AddPip("A", "WIRE_OUT", tiledb.NewConfigBitSet(tiledb.ConfigBit{Frame: 0, Bit: 0})))
	require.NoError(t, src.AddPip("B", "OTHER", tiledb.NewConfigBitSet(tiledb.ConfigBit{Frame: 0, Bit: 1})))

	require.NoError(t, CopyDB(db, "fam", "SRC", []string{"DST"}, "P", "WIRE"))

	dst, err := db.TileBitdb("fam", "DST")
	require.NoError(t, err)
	_, ok := dst.FindPip("A", "WIRE_OUT")
	assert.True(t, ok)
	_, ok = dst.FindPip("B", "OTHER")
	assert.False(t, ok)
}
