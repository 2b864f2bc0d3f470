// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

import (
	"sort"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/nexusbits/tiledb"
	"github.com/nexusbits/tiledb/chip"
)

// Fuzzer accumulates keyed deltas against a baseline Chip and, on Solve,
// derives ConfigBit sets and commits them into db.
type Fuzzer struct {
	db     *tiledb.Database
	family string
	mode   Mode
	tiles  map[string]struct{}
	base   *chip.Chip
	norm   chip.WireNormalizer
	desc   string
	runID  uuid.UUID
	log    *zap.SugaredLogger

	deltas map[Key]chip.ChipDelta
}

// New returns a Fuzzer over the given baseline, fuzzing mode across
// tiles. norm may be nil, in which case chip.IdentityNormalizer is used.
// Each run is tagged with a fresh correlation id carried on every log
// line it emits, so concurrent fuzzing jobs are distinguishable in logs.
func New(db *tiledb.Database, family string, mode Mode, tiles []string, base *chip.Chip, desc string, norm chip.WireNormalizer, log *zap.Logger) *Fuzzer {
	if norm == nil {
		norm = chip.IdentityNormalizer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	set := make(map[string]struct{}, len(tiles))
	for _, t := range tiles {
		set[t] = struct{}{}
	}
	runID := uuid.New()
	return &Fuzzer{
		db:     db,
		family: family,
		mode:   mode,
		tiles:  set,
		base:   base,
		norm:   norm,
		desc:   desc,
		runID:  runID,
		log:    log.Sugar().With("run_id", runID.String()),
		deltas: map[Key]chip.ChipDelta{},
	}
}

// RunID returns the correlation id this Fuzzer run logs under.
func (f *Fuzzer) RunID() uuid.UUID {
	return f.runID
}

// AddSample records delta under key. A second sample under an
// already-seen key is folded in by per-tile intersection: a tile
// survives only if present in both, and within a surviving tile only the
// (frame, bit, value) triples common to both samples are kept. This is
// how repeated, slightly noisy samples converge on the bits that are
// truly significant to the fuzzed setting.
func (f *Fuzzer) AddSample(key Key, delta chip.ChipDelta) {
	existing, ok := f.deltas[key]
	if !ok {
		f.deltas[key] = delta
		return
	}
	f.deltas[key] = intersectDelta(existing, delta)
}

func intersectDelta(a, b chip.ChipDelta) chip.ChipDelta {
	out := chip.ChipDelta{Tiles: map[string][]chip.DeltaBit{}}
	for tile, aBits := range a.Tiles {
		bBits, ok := b.Tiles[tile]
		if !ok {
			continue
		}
		var common []chip.DeltaBit
		for _, x := range aBits {
			for _, y := range bBits {
				if x == y {
					common = append(common, x)
					break
				}
			}
		}
		if len(common) > 0 {
			out.Tiles[tile] = common
		}
	}
	return out
}

func (f *Fuzzer) tileType(name string) (string, bool) {
	t, ok := f.base.TileByName(name)
	if !ok {
		return "", false
	}
	return t.TileType, true
}

// Solve dispatches to the solver for f's mode, then flushes db.
func (f *Fuzzer) Solve() error {
	var err error
	switch f.mode.Kind {
	case ModePip:
		err = f.solvePip()
	case ModeWord:
		err = f.solveWord()
	case ModeEnum:
		err = f.solveEnum()
	default:
		err = errors.Errorf("unknown fuzz mode kind %d", f.mode.Kind)
	}
	if err != nil {
		return err
	}
	return f.db.Flush()
}

func hasTriple(bits []chip.DeltaBit, b chip.DeltaBit) bool {
	for _, x := range bits {
		if x == b {
			return true
		}
	}
	return false
}

type coord struct{ frame, bit int }

func sortedCoords(set map[coord]struct{}) []coord {
	out := make([]coord, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].frame != out[j].frame {
			return out[i].frame < out[j].frame
		}
		return out[i].bit < out[j].bit
	})
	return out
}

func sortedTileNames(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (f *Fuzzer) solvePip() error {
	p := f.mode.Pip

	coverage := map[string]map[coord]struct{}{}
	if p.FullMux {
		for key, delta := range f.deltas {
			if key.Kind != KeyPip {
				continue
			}
			for tile, bits := range delta.Tiles {
				set, ok := coverage[tile]
				if !ok {
					set = map[coord]struct{}{}
					coverage[tile] = set
				}
				for _, b := range bits {
					set[coord{b.Frame, b.Bit}] = struct{}{}
				}
			}
		}
	}

	changedTiles := map[string]struct{}{}
	for key, delta := range f.deltas {
		if key.Kind != KeyPip {
			continue
		}
		for tile := range delta.Tiles {
			if _, inSelf := f.tiles[tile]; inSelf {
				changedTiles[tile] = struct{}{}
			}
		}
	}

	for key, delta := range f.deltas {
		if key.Kind != KeyPip {
			continue
		}

		relevant := map[string][]chip.DeltaBit{}
		for tile, bits := range delta.Tiles {
			_, inSelf := f.tiles[tile]
			if inSelf || !key.AllowPartialDeltas {
				relevant[tile] = bits
			}
		}

		contaminated := false
		for tile := range relevant {
			_, inSelf := f.tiles[tile]
			_, ignored := p.IgnoreTiles[tile]
			if !inSelf && !ignored {
				f.log.Warnw("cross-tile contamination, skipping arc",
					"to_wire", p.ToWire, "from_wire", key.FromWire, "tile", tile)
				contaminated = true
				break
			}
		}
		if contaminated {
			continue
		}

		if len(changedTiles) == 0 {
			if p.SkipFixed {
				continue
			}
			tt, ok := f.tileType(p.FixedConnTile)
			if !ok {
				return errors.Errorf("fixed_conn_tile %q not found in baseline chip", p.FixedConnTile)
			}
			tbd, err := f.db.TileBitdb(f.family, tt)
			if err != nil {
				return err
			}
			tbd.AddConn(f.norm.Normalize(tt, key.FromWire), f.norm.Normalize(tt, p.ToWire))
			continue
		}

		for _, tile := range sortedTileNames(changedTiles) {
			bits := relevant[tile]
			var cbits tiledb.ConfigBitSet

			if !p.FullMux {
				for _, b := range bits {
					cbits = append(cbits, tiledb.ConfigBit{Frame: b.Frame, Bit: b.Bit, Invert: !b.Value})
				}
			} else {
				tileInst, ok := f.base.TileByName(tile)
				if !ok {
					return errors.Errorf("tile %q not found in baseline chip", tile)
				}
				for _, c := range sortedCoords(coverage[tile]) {
					baseVal := tileInst.CRAM.Get(c.frame, c.bit)
					present := hasTriple(bits, chip.DeltaBit{Frame: c.frame, Bit: c.bit, Value: !baseVal})
					invert := present == baseVal
					cbits = append(cbits, tiledb.ConfigBit{Frame: c.frame, Bit: c.bit, Invert: invert})
				}
			}

			if len(cbits) == 0 && p.SkipFixed {
				continue
			}

			tt, ok := f.tileType(tile)
			if !ok {
				return errors.Errorf("tile %q not found in baseline chip", tile)
			}
			tbd, err := f.db.TileBitdb(f.family, tt)
			if err != nil {
				return err
			}
			from := f.norm.Normalize(tt, key.FromWire)
			to := f.norm.Normalize(tt, p.ToWire)
			if err := tbd.AddPip(from, to, cbits.Normalize()); err != nil {
				return err
			}
		}
	}

	return nil
}

func (f *Fuzzer) solveWord() error {
	w := f.mode.Word

	changedTiles := map[string]struct{}{}
	for key, delta := range f.deltas {
		if key.Kind != KeyWord {
			continue
		}
		for tile := range delta.Tiles {
			if _, inSelf := f.tiles[tile]; inSelf {
				changedTiles[tile] = struct{}{}
			}
		}
	}

	for tile := range changedTiles {
		cbits := make([]tiledb.ConfigBitSet, w.Width)
		for i := 0; i < w.Width; i++ {
			delta, ok := f.deltas[WordKey(i)]
			var bits tiledb.ConfigBitSet
			if ok {
				for _, b := range delta.Tiles[tile] {
					bits = append(bits, tiledb.ConfigBit{Frame: b.Frame, Bit: b.Bit, Invert: !b.Value})
				}
			}
			cbits[i] = bits.Normalize()
		}

		tt, ok := f.tileType(tile)
		if !ok {
			return errors.Errorf("tile %q not found in baseline chip", tile)
		}
		tbd, err := f.db.TileBitdb(f.family, tt)
		if err != nil {
			return err
		}
		if err := tbd.AddWord(w.Name, f.desc, cbits); err != nil {
			return err
		}
	}

	return nil
}

func (f *Fuzzer) solveEnum() error {
	e := f.mode.Enum

	enumKeyCount := 0
	for key := range f.deltas {
		if key.Kind == KeyEnum {
			enumKeyCount++
		}
	}
	if enumKeyCount < 2 {
		f.log.Warnw("underdetermined enum, skipping", "name", e.Name, "samples", enumKeyCount)
		return nil
	}

	tilesSeen := map[string]struct{}{}
	for key, delta := range f.deltas {
		if key.Kind != KeyEnum {
			continue
		}
		for tile := range delta.Tiles {
			tilesSeen[tile] = struct{}{}
		}
	}

	for tile := range tilesSeen {
		var perOption []struct {
			key Key
			td  []chip.DeltaBit
			has bool
		}
		unchanged := map[chip.DeltaBit]int{}
		all := map[chip.DeltaBit]struct{}{}
		total := 0

		for key, delta := range f.deltas {
			if key.Kind != KeyEnum {
				continue
			}
			td, has := delta.Tiles[tile]
			perOption = append(perOption, struct {
				key Key
				td  []chip.DeltaBit
				has bool
			}{key, td, has})
			total++
			seenHere := map[chip.DeltaBit]struct{}{}
			for _, b := range td {
				all[b] = struct{}{}
				seenHere[b] = struct{}{}
			}
			for b := range seenHere {
				unchanged[b]++
			}
		}

		changedBits := make([]chip.DeltaBit, 0, len(all))
		for b := range all {
			if unchanged[b] != total {
				changedBits = append(changedBits, b)
			}
		}
		sort.Slice(changedBits, func(i, j int) bool {
			if changedBits[i].Frame != changedBits[j].Frame {
				return changedBits[i].Frame < changedBits[j].Frame
			}
			return changedBits[i].Bit < changedBits[j].Bit
		})
		if len(changedBits) == 0 {
			continue
		}

		tt, ok := f.tileType(tile)
		if !ok {
			return errors.Errorf("tile %q not found in baseline chip", tile)
		}
		tbd, err := f.db.TileBitdb(f.family, tt)
		if err != nil {
			return err
		}

		for _, entry := range perOption {
			var bits tiledb.ConfigBitSet
			for _, cb := range changedBits {
				switch {
				case entry.has && hasTriple(entry.td, cb):
					bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: !cb.Value})
				case entry.has && e.IncludeZeros:
					bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: cb.Value})
				case entry.has && e.AssumeZeroBase && !cb.Value:
					bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: false})
				case !entry.has && e.IncludeZeros:
					bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: cb.Value})
				case !entry.has && e.AssumeZeroBase && !cb.Value:
					bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: false})
				}
			}

			if err := tbd.AddEnumOption(e.Name, entry.key.Option, f.desc, bits.Normalize()); err != nil {
				return err
			}

			if e.MarkRelativeTo != "" {
				ref, ok := f.base.TileByName(e.MarkRelativeTo)
				tileInst, ok2 := f.base.TileByName(tile)
				if ok && ok2 {
					offset := tiledb.FrameBitOffset{DX: ref.X - tileInst.X, DY: ref.Y - tileInst.Y}
					if err := tbd.SetBelOffset(offset); err != nil {
						return err
					}
				}
			}
		}
	}

	return nil
}
