// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/nexusbits/tiledb"
	"github.com/nexusbits/tiledb/chip"
)

// CopyMode selects which entry kinds CopyDB considers: 'P'ips, 'W'ords,
// 'E'nums, 'C'onns.
type CopyMode string

// HasPips, HasWords, HasEnums, and HasConns report whether m selects that
// entry kind.
func (m CopyMode) HasPips() bool  { return strings.ContainsRune(string(m), 'P') }
func (m CopyMode) HasWords() bool { return strings.ContainsRune(string(m), 'W') }
func (m CopyMode) HasEnums() bool { return strings.ContainsRune(string(m), 'E') }
func (m CopyMode) HasConns() bool { return strings.ContainsRune(string(m), 'C') }

// CopyDB copies, from family/fromTT's tile-bit database into each of
// toTTs, the entries selected by mode whose wire or feature name
// contains pattern (an empty pattern matches everything). A pip or conn
// is selected when either its destination or its source wire contains
// pattern.
func CopyDB(db *tiledb.Database, family, fromTT string, toTTs []string, mode CopyMode, pattern string) error {
	src, err := db.TileBitdb(family, fromTT)
	if err != nil {
		return errors.Wrapf(err, "loading source tile type %s/%s", family, fromTT)
	}
	srcDB := src.DB()

	for _, toTT := range toTTs {
		dst, err := db.TileBitdb(family, toTT)
		if err != nil {
			return errors.Wrapf(err, "loading destination tile type %s/%s", family, toTT)
		}

		if mode.HasPips() {
			for to, pips := range srcDB.Pips {
				for _, p := range pips {
					if !strings.Contains(to, pattern) && !strings.Contains(p.FromWire, pattern) {
						continue
					}
					if err := dst.AddPip(p.FromWire, to, p.Bits); err != nil {
						return err
					}
				}
			}
		}

		if mode.HasWords() {
			for name, w := range srcDB.Words {
				if !strings.Contains(name, pattern) {
					continue
				}
				if err := dst.AddWord(name, w.Desc, w.Bits); err != nil {
					return err
				}
			}
		}

		if mode.HasEnums() {
			for name, e := range srcDB.Enums {
				if !strings.Contains(name, pattern) {
					continue
				}
				for opt, bits := range e.Options {
					if err := dst.AddEnumOption(name, opt, e.Desc, bits); err != nil {
						return err
					}
				}
			}
		}

		if mode.HasConns() {
			for to, conns := range srcDB.Conns {
				for _, c := range conns {
					if !strings.Contains(to, pattern) && !strings.Contains(c.FromWire, pattern) {
						continue
					}
					dst.AddConn(c.FromWire, to)
					if c.Bidir {
						dst.AddConn(to, c.FromWire)
					}
				}
			}
		}
	}

	return nil
}

// AddAlwaysOnBits computes, for every tile type present in the baseline
// chip, the residual set of CRAM coordinates that are set in every
// instance's baseline image but claimed by no recorded pip, word, or
// enum bit, and records that residual as the tile type's always-on
// baseline. A tile type's residual must agree across every instance; a
// disagreement means the baseline bitstream is self-contradictory and is
// reported as an error rather than silently picking one instance's
// answer.
func AddAlwaysOnBits(db *tiledb.Database, family string, baseline *chip.Chip) error {
	seen := map[string]bool{}
	residuals := map[string]map[[2]int]struct{}{}

	for _, tile := range baseline.Tiles {
		tbd, err := db.TileBitdb(family, tile.TileType)
		if err != nil {
			return err
		}
		if !seen[tile.TileType] {
			tbd.SetAlwaysOn(nil)
			seen[tile.TileType] = true
		}

		claimed := claimedCoords(tbd.DB())

		residual := map[[2]int]struct{}{}
		if tile.CRAM != nil {
			for frame := 0; frame < tile.CRAM.Frames(); frame++ {
				for bit := 0; bit < tile.CRAM.BitsPerFrame(); bit++ {
					if !tile.CRAM.Get(frame, bit) {
						continue
					}
					if _, claimedHere := claimed[[2]int{frame, bit}]; claimedHere {
						continue
					}
					residual[[2]int{frame, bit}] = struct{}{}
				}
			}
		}

		if prev, ok := residuals[tile.TileType]; ok {
			if !sameCoordSet(prev, residual) {
				return errors.Errorf("always-on disagreement for tile type %s at instance %s", tile.TileType, tile.Name)
			}
			continue
		}
		residuals[tile.TileType] = residual

		bits := make(tiledb.ConfigBitSet, 0, len(residual))
		for c := range residual {
			bits = append(bits, tiledb.ConfigBit{Frame: c[0], Bit: c[1]})
		}
		tbd.SetAlwaysOn(bits.Normalize())
	}

	return db.Flush()
}

func claimedCoords(tbd *tiledb.TileBitsDatabase) map[[2]int]struct{} {
	out := map[[2]int]struct{}{}
	add := func(bits tiledb.ConfigBitSet) {
		for _, b := range bits {
			out[[2]int{b.Frame, b.Bit}] = struct{}{}
		}
	}
	for _, pips := range tbd.Pips {
		for _, p := range pips {
			add(p.Bits)
		}
	}
	for _, w := range tbd.Words {
		for _, b := range w.Bits {
			add(b)
		}
	}
	for _, e := range tbd.Enums {
		for _, b := range e.Options {
			add(b)
		}
	}
	return out
}

func sameCoordSet(a, b map[[2]int]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for c := range a {
		if _, ok := b[c]; !ok {
			return false
		}
	}
	return true
}
