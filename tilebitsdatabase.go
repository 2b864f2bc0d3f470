// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import "sort"

// FrameBitOffset is a relative BEL placement: the (dx, dy) offset from a
// logical reference tile to the tile whose bits actually encode a
// feature described as belonging to the reference tile.
type FrameBitOffset struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// TileBitsDatabase is the pure, serializable bit schema for one tile
// type: which pips, words, enums, and fixed connections it has, plus its
// always-on baseline bits and any external-tile BEL offset.
//
// TileBitsDatabase carries no behavior beyond structural queries and
// canonicalization; all conflict-detecting mutation goes through
// TileBitsData.
type TileBitsDatabase struct {
	Pips  map[string][]ConfigPipData        `json:"pips"`
	Words map[string]ConfigWordData         `json:"words"`
	Enums map[string]ConfigEnumData         `json:"enums"`
	Conns map[string][]FixedConnectionData  `json:"conns"`

	AlwaysOn ConfigBitSet `json:"always_on,omitempty"`

	// TileConfiguresExternalTiles is conceptually a single optional
	// value, but retains set semantics (spec.md §4.2, set_bel_offset) so
	// that the on-disk shape matches a database that has never had more
	// than one element recorded.
	TileConfiguresExternalTiles []FrameBitOffset `json:"tile_configures_external_tiles,omitempty"`
}

// NewTileBitsDatabase returns an empty, ready-to-use database.
func NewTileBitsDatabase() TileBitsDatabase {
	return TileBitsDatabase{
		Pips:  map[string][]ConfigPipData{},
		Words: map[string]ConfigWordData{},
		Enums: map[string]ConfigEnumData{},
		Conns: map[string][]FixedConnectionData{},
	}
}

// SourceWires returns the union of every pip.FromWire and conn.FromWire
// recorded in the database.
func (d *TileBitsDatabase) SourceWires() []string {
	seen := map[string]struct{}{}
	for _, pips := range d.Pips {
		for _, p := range pips {
			seen[p.FromWire] = struct{}{}
		}
	}
	for _, conns := range d.Conns {
		for _, c := range conns {
			seen[c.FromWire] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// SinkWires returns the union of the Pips and Conns destination-wire
// keys.
func (d *TileBitsDatabase) SinkWires() []string {
	seen := map[string]struct{}{}
	for to := range d.Pips {
		seen[to] = struct{}{}
	}
	for to := range d.Conns {
		seen[to] = struct{}{}
	}
	return sortedKeys(seen)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Sort canonicalizes the ordering of every Pips[to] and Conns[to] list by
// FromWire, as required before serialization.
func (d *TileBitsDatabase) Sort() {
	for to, pips := range d.Pips {
		sort.Slice(pips, func(i, j int) bool { return pips[i].FromWire < pips[j].FromWire })
		d.Pips[to] = pips
	}
	for to, conns := range d.Conns {
		sort.Slice(conns, func(i, j int) bool { return conns[i].FromWire < conns[j].FromWire })
		d.Conns[to] = conns
	}
}

// Clone deep-copies d. Used whenever a cached TileBitsData must be merged
// into an accumulator without mutating the cached copy (overlay
// composition in particular).
func (d *TileBitsDatabase) Clone() TileBitsDatabase {
	out := NewTileBitsDatabase()

	for to, pips := range d.Pips {
		cp := make([]ConfigPipData, len(pips))
		for i, p := range pips {
			cp[i] = ConfigPipData{FromWire: p.FromWire, Bits: append(ConfigBitSet(nil), p.Bits...)}
		}
		out.Pips[to] = cp
	}
	for name, w := range d.Words {
		cp := ConfigWordData{Desc: w.Desc, Bits: make([]ConfigBitSet, len(w.Bits))}
		for i, b := range w.Bits {
			cp.Bits[i] = append(ConfigBitSet(nil), b...)
		}
		out.Words[name] = cp
	}
	for name, e := range d.Enums {
		cp := ConfigEnumData{Desc: e.Desc, Options: map[string]ConfigBitSet{}}
		for opt, bits := range e.Options {
			cp.Options[opt] = append(ConfigBitSet(nil), bits...)
		}
		out.Enums[name] = cp
	}
	for to, conns := range d.Conns {
		out.Conns[to] = append([]FixedConnectionData(nil), conns...)
	}
	out.AlwaysOn = append(ConfigBitSet(nil), d.AlwaysOn...)
	out.TileConfiguresExternalTiles = append([]FrameBitOffset(nil), d.TileConfiguresExternalTiles...)

	return out
}
