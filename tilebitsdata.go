// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"fmt"

	"go.uber.org/zap"
)

// TileBitsData wraps a TileBitsDatabase with the conflict-detecting
// mutators that grow it, plus dirty tracking and per-kind counters used
// to summarize a flush.
type TileBitsData struct {
	tiletype string
	db       TileBitsDatabase

	dirty bool

	newPips  uint32
	newWords uint32
	newEnums uint32

	opts Options
	log  *zap.SugaredLogger
}

// NewTileBitsData wraps db for the named tile type. The wrapper starts
// clean (dirty == false) regardless of db's contents, matching the
// contract that loading from disk never itself dirties an entry.
func NewTileBitsData(tiletype string, db TileBitsDatabase, opts Options, log *zap.SugaredLogger) *TileBitsData {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &TileBitsData{tiletype: tiletype, db: db, opts: opts, log: log}
}

// DB returns the wrapped database. Callers must not mutate pips/words/
// enums/conns directly through the returned value; use the TileBitsData
// methods so dirty tracking stays correct.
func (t *TileBitsData) DB() *TileBitsDatabase { return &t.db }

// TileType returns the owning tile type name.
func (t *TileBitsData) TileType() string { return t.tiletype }

// Dirty reports whether t has unflushed changes.
func (t *TileBitsData) Dirty() bool { return t.dirty }

// ClearDirty clears the dirty flag; called by Database.Flush after a
// successful write.
func (t *TileBitsData) ClearDirty() { t.dirty = false }

// Sort canonicalizes list ordering ahead of serialization.
func (t *TileBitsData) Sort() { t.db.Sort() }

func (t *TileBitsData) conflict(detail string) error {
	t.log.Warnw("bit conflict", "tiletype", t.tiletype, "detail", detail)
	if !t.opts.AllowBitChange {
		return newBitConflict(t.tiletype, detail)
	}
	t.log.Warnw("ALLOW_BIT_CHANGE set, overwriting", "tiletype", t.tiletype, "detail", detail)
	return nil
}

// FindPip returns the pip entry selecting from into to, if any.
func (t *TileBitsData) FindPip(from, to string) (ConfigPipData, bool) {
	for _, p := range t.db.Pips[to] {
		if p.FromWire == from {
			return p, true
		}
	}
	return ConfigPipData{}, false
}

// AddPip records that selecting `from` as the source of `to` is encoded
// by bits. A from/to pair that already exists with identical bits is a
// no-op; with different bits it is a bit conflict (see Options.AllowBitChange).
func (t *TileBitsData) AddPip(from, to string, bits ConfigBitSet) error {
	bits = bits.Normalize()

	list := t.db.Pips[to]
	for i, p := range list {
		if p.FromWire != from {
			continue
		}
		if p.Bits.Equal(bits) {
			return nil
		}
		if err := t.conflict(fmt.Sprintf("%s<-%s existing: %v new: %v", to, from, p.Bits, bits)); err != nil {
			return err
		}
		list[i].Bits = bits
		t.dirty = true
		t.newPips++
		return nil
	}

	t.db.Pips[to] = append(list, ConfigPipData{FromWire: from, Bits: bits})
	t.dirty = true
	t.newPips++
	return nil
}

// AddWord records (or extends the description of) a multi-bit
// configuration word. Once a word exists its width (len(bits)) is
// immutable; a differing width, or a differing bit set at an existing
// index, is a bit conflict.
func (t *TileBitsData) AddWord(name, desc string, bits []ConfigBitSet) error {
	normalized := make([]ConfigBitSet, len(bits))
	for i, b := range bits {
		normalized[i] = b.Normalize()
	}

	existing, ok := t.db.Words[name]
	if !ok {
		t.db.Words[name] = ConfigWordData{Desc: desc, Bits: normalized}
		t.newWords++
		t.dirty = true
		return nil
	}

	if desc != "" && desc != existing.Desc {
		existing.Desc = desc
		t.db.Words[name] = existing
		t.dirty = true
	}

	if len(normalized) != len(existing.Bits) {
		if err := t.conflict(fmt.Sprintf("width %s existing: %d new: %d", name, len(existing.Bits), len(normalized))); err != nil {
			return err
		}
		existing.Bits = normalized
		t.db.Words[name] = existing
		t.dirty = true
		t.newWords++
		return nil
	}

	changed := false
	for i := range existing.Bits {
		if existing.Bits[i].Equal(normalized[i]) {
			continue
		}
		if err := t.conflict(fmt.Sprintf("%s[%d] existing: %v new: %v", name, i, existing.Bits[i], normalized[i])); err != nil {
			return err
		}
		existing.Bits[i] = normalized[i]
		changed = true
	}
	if changed {
		t.db.Words[name] = existing
		t.dirty = true
		t.newWords++
	}
	return nil
}

// AddEnumOption records one option of a named enumerated setting.
func (t *TileBitsData) AddEnumOption(name, option, desc string, bits ConfigBitSet) error {
	bits = bits.Normalize()

	enum, ok := t.db.Enums[name]
	if !ok {
		enum = ConfigEnumData{Desc: desc, Options: map[string]ConfigBitSet{}}
	}

	if desc != "" && desc != enum.Desc {
		enum.Desc = desc
		t.newEnums++
		t.dirty = true
	}

	old, exists := enum.Options[option]
	switch {
	case !exists:
		enum.Options[option] = bits
		t.newEnums++
		t.dirty = true
	case !old.Equal(bits):
		if err := t.conflict(fmt.Sprintf("%s=%s existing: %v new: %v", name, option, old, bits)); err != nil {
			return err
		}
		enum.Options[option] = bits
		t.newEnums++
		t.dirty = true
	}

	t.db.Enums[name] = enum
	return nil
}

// AddConn idempotently records a fixed (bit-less) connection from->to.
func (t *TileBitsData) AddConn(from, to string) {
	for _, c := range t.db.Conns[to] {
		if c.FromWire == from {
			return
		}
	}
	t.db.Conns[to] = append(t.db.Conns[to], FixedConnectionData{FromWire: from})
	t.dirty = true
}

// SetAlwaysOn replaces the always-on baseline bit set if it differs from
// what is currently stored.
func (t *TileBitsData) SetAlwaysOn(bits ConfigBitSet) {
	bits = bits.Normalize()
	if bits.Equal(t.db.AlwaysOn) {
		return
	}
	t.db.AlwaysOn = bits
	t.dirty = true
}

// SetBelOffset records the (dx, dy) offset to the tile this tile type's
// bits actually configure. A second, differing offset is a bit conflict;
// an identical offset, or setting it for the first time, is a no-op/insert.
func (t *TileBitsData) SetBelOffset(offset FrameBitOffset) error {
	if len(t.db.TileConfiguresExternalTiles) > 0 && t.db.TileConfiguresExternalTiles[0] != offset {
		if err := t.conflict(fmt.Sprintf("bel offset existing: %v new: %v", t.db.TileConfiguresExternalTiles[0], offset)); err != nil {
			return err
		}
		t.db.TileConfiguresExternalTiles[0] = offset
		t.dirty = true
		return nil
	}
	for _, o := range t.db.TileConfiguresExternalTiles {
		if o == offset {
			return nil
		}
	}
	t.db.TileConfiguresExternalTiles = append(t.db.TileConfiguresExternalTiles, offset)
	t.dirty = true
	return nil
}

// MergeConfigs applies only the non-pip, non-conn parts of other: words,
// enum options, and bel offsets. Merge calls it before adding pips and
// conns.
func (t *TileBitsData) MergeConfigs(other *TileBitsDatabase) error {
	for name, w := range other.Words {
		if err := t.AddWord(name, w.Desc, w.Bits); err != nil {
			return err
		}
	}
	for name, e := range other.Enums {
		for opt, bits := range e.Options {
			if err := t.AddEnumOption(name, opt, e.Desc, bits); err != nil {
				return err
			}
		}
	}
	for _, offset := range other.TileConfiguresExternalTiles {
		if err := t.SetBelOffset(offset); err != nil {
			return err
		}
	}
	return nil
}

// Merge folds other's pips, conns, words, enums, and bel offsets into t.
// Bidirectional fixed connections are expanded into both directions.
// Merge always leaves t dirty, even when every individual add was a
// no-op, matching the source semantics (merging is itself an event worth
// persisting).
func (t *TileBitsData) Merge(other *TileBitsDatabase) error {
	t.log.Debugw("merging", "tiletype", t.tiletype)

	if err := t.MergeConfigs(other); err != nil {
		return err
	}

	for to, pips := range other.Pips {
		for _, p := range pips {
			if err := t.AddPip(p.FromWire, to, p.Bits); err != nil {
				return err
			}
		}
	}

	for to, conns := range other.Conns {
		for _, c := range conns {
			t.AddConn(c.FromWire, to)
			if c.Bidir {
				t.AddConn(to, c.FromWire)
			}
		}
	}

	t.dirty = true
	return nil
}
