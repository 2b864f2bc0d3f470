// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nexusbits/tiledb"
	"github.com/nexusbits/tiledb/chip"
)

// IPWordFuzzer fuzzes one configuration word of an IP core instance,
// analogous to Fuzzer's ModeWord but targeting a Database's IP-bit
// database (keyed by iptype, never composed from overlays) instead of a
// tile type, and addressed by a single backing tile instance rather than
// a tile set.
type IPWordFuzzer struct {
	db     *tiledb.Database
	family string
	iptype string
	tile   string
	name   string
	width  int

	// invertedMode flips the sense of every inferred bit, for registers
	// whose CRAM encoding is active-low relative to the logical value.
	invertedMode bool
	desc         string
	runID        uuid.UUID
	log          *zap.SugaredLogger

	deltas map[int]chip.ChipDelta
}

// NewIPWordFuzzer returns an IPWordFuzzer for a width-bit word named name
// belonging to iptype, backed by the CRAM of chip tile instance tile.
// Each run is tagged with a fresh correlation id carried on every log line.
func NewIPWordFuzzer(db *tiledb.Database, family, iptype, tile, name string, width int, invertedMode bool, desc string, log *zap.Logger) *IPWordFuzzer {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.New()
	return &IPWordFuzzer{
		db:           db,
		family:       family,
		iptype:       iptype,
		tile:         tile,
		name:         name,
		width:        width,
		invertedMode: invertedMode,
		desc:         desc,
		runID:        runID,
		log:          log.Sugar().With("run_id", runID.String()),
		deltas:       map[int]chip.ChipDelta{},
	}
}

// RunID returns the correlation id this run logs under.
func (f *IPWordFuzzer) RunID() uuid.UUID {
	return f.runID
}

// AddSample records delta as an observation of bit index i of the word,
// intersecting with any prior sample at the same index.
func (f *IPWordFuzzer) AddSample(i int, delta chip.ChipDelta) {
	existing, ok := f.deltas[i]
	if !ok {
		f.deltas[i] = delta
		return
	}
	f.deltas[i] = intersectDelta(existing, delta)
}

// Solve derives the bit set for each word index and commits the result,
// then flushes db.
func (f *IPWordFuzzer) Solve() error {
	cbits := make([]tiledb.ConfigBitSet, f.width)
	for i := 0; i < f.width; i++ {
		delta, ok := f.deltas[i]
		var bits tiledb.ConfigBitSet
		if ok {
			for _, b := range delta.Tiles[f.tile] {
				invert := !b.Value
				if f.invertedMode {
					invert = !invert
				}
				bits = append(bits, tiledb.ConfigBit{Frame: b.Frame, Bit: b.Bit, Invert: invert})
			}
		}
		cbits[i] = bits.Normalize()
	}

	tbd, err := f.db.IPBitdb(f.family, f.iptype)
	if err != nil {
		return err
	}
	if err := tbd.AddWord(f.name, f.desc, cbits); err != nil {
		return err
	}
	return f.db.Flush()
}

// IPEnumFuzzer fuzzes a named enumerated setting of an IP core instance,
// analogous to Fuzzer's ModeEnum but scoped to a single backing tile
// instance and an IP-bit database.
type IPEnumFuzzer struct {
	db     *tiledb.Database
	family string
	iptype string
	tile   string
	name   string

	includeZeros   bool
	assumeZeroBase bool
	desc           string
	runID          uuid.UUID
	log            *zap.SugaredLogger

	deltas map[string]chip.ChipDelta
}

// NewIPEnumFuzzer returns an IPEnumFuzzer for an enum named name
// belonging to iptype, backed by the CRAM of chip tile instance tile.
// Each run is tagged with a fresh correlation id carried on every log line.
func NewIPEnumFuzzer(db *tiledb.Database, family, iptype, tile, name string, includeZeros, assumeZeroBase bool, desc string, log *zap.Logger) *IPEnumFuzzer {
	if log == nil {
		log = zap.NewNop()
	}
	runID := uuid.New()
	return &IPEnumFuzzer{
		db:             db,
		family:         family,
		iptype:         iptype,
		tile:           tile,
		name:           name,
		includeZeros:   includeZeros,
		assumeZeroBase: assumeZeroBase,
		desc:           desc,
		runID:          runID,
		log:            log.Sugar().With("run_id", runID.String()),
		deltas:         map[string]chip.ChipDelta{},
	}
}

// RunID returns the correlation id this run logs under.
func (f *IPEnumFuzzer) RunID() uuid.UUID {
	return f.runID
}

// AddSample records delta as an observation of option, intersecting with
// any prior sample for the same option.
func (f *IPEnumFuzzer) AddSample(option string, delta chip.ChipDelta) {
	existing, ok := f.deltas[option]
	if !ok {
		f.deltas[option] = delta
		return
	}
	f.deltas[option] = intersectDelta(existing, delta)
}

// Solve derives the bit set for each recorded option and commits the
// result, then flushes db. Requires at least two samples; otherwise logs
// a warning and returns without error.
func (f *IPEnumFuzzer) Solve() error {
	if len(f.deltas) < 2 {
		f.log.Warnw("underdetermined ip enum, skipping", "name", f.name, "samples", len(f.deltas))
		return nil
	}

	unchanged := map[chip.DeltaBit]int{}
	all := map[chip.DeltaBit]struct{}{}
	type optionSample struct {
		option string
		td     []chip.DeltaBit
		has    bool
	}
	var options []optionSample

	for option, delta := range f.deltas {
		td, has := delta.Tiles[f.tile]
		options = append(options, optionSample{option, td, has})
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
		if unchanged[b] != len(options) {
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
		return nil
	}

	tbd, err := f.db.IPBitdb(f.family, f.iptype)
	if err != nil {
		return err
	}

	for _, opt := range options {
		var bits tiledb.ConfigBitSet
		for _, cb := range changedBits {
			switch {
			case opt.has && hasTriple(opt.td, cb):
				bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: !cb.Value})
			case opt.has && f.includeZeros:
				bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: cb.Value})
			case opt.has && f.assumeZeroBase && !cb.Value:
				bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: false})
			case !opt.has && f.includeZeros:
				bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: cb.Value})
			case !opt.has && f.assumeZeroBase && !cb.Value:
				bits = append(bits, tiledb.ConfigBit{Frame: cb.Frame, Bit: cb.Bit, Invert: false})
			}
		}
		if err := tbd.AddEnumOption(f.name, opt.option, f.desc, bits.Normalize()); err != nil {
			return err
		}
	}

	return f.db.Flush()
}
