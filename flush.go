// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// DeviceTiletypes enumerates every tile type known for family by listing
// the .ron files under <family>/tiletypes/ and <family>/overlays/ (the
// latter prefixed with "overlays/"). This is filesystem-only: it requires
// an FSSource and returns an error against any other AssetSource, since
// an embedded asset tree cannot be listed without baking the file list in
// separately.
func (db *Database) DeviceTiletypes(family string) ([]string, error) {
	fs, ok := db.source.(*FSSource)
	if !ok {
		return nil, errors.New("DeviceTiletypes requires a filesystem-backed AssetSource")
	}

	var out []string

	tiletypesDir := filepath.Join(fs.Root, family, "tiletypes")
	entries, err := os.ReadDir(tiletypesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "listing %s", tiletypesDir)
	}
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".ron"); ok {
			out = append(out, name)
		}
	}

	overlaysDirPath := filepath.Join(fs.Root, family, "overlays")
	entries, err = os.ReadDir(overlaysDirPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "listing %s", overlaysDirPath)
	}
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".ron"); ok {
			out = append(out, "overlays/"+name)
		}
	}

	return out, nil
}

// Merge folds, for every family in db's device list, every tile type that
// other's DeviceTiletypes lists into the corresponding entry of db, and
// adopts other's physical-tile overlay
// lookups. Per the original's own (commented-out) behavior, IP bit
// databases are not part of a merge.
func (db *Database) Merge(other *Database) error {
	for family := range db.devices.Families {
		tiletypes, err := other.DeviceTiletypes(family)
		if err != nil {
			return errors.Wrapf(err, "enumerating tile types for %s", family)
		}
		for _, tiletype := range tiletypes {
			src, err := other.TileBitdb(family, tiletype)
			if err != nil {
				return err
			}
			dst, err := db.TileBitdb(family, tiletype)
			if err != nil {
				return err
			}
			if err := dst.Merge(src.DB()); err != nil {
				return errors.Wrapf(err, "merging %s/%s", family, tiletype)
			}
		}
	}

	for key, lookup := range other.overlayTiletypes {
		merged := make(map[string]string, len(lookup))
		for k, v := range lookup {
			merged[k] = v
		}
		db.overlayTiletypes[key] = merged
	}

	return nil
}

// Reformat marks every currently loaded tile-bit database dirty and
// re-sorts it, so a subsequent Flush rewrites it in canonical order even
// if no content actually changed.
func (db *Database) Reformat() {
	for _, t := range db.tilebits {
		t.Sort()
		t.dirty = true
	}
	for _, t := range db.ipbits {
		t.Sort()
		t.dirty = true
	}
}

// Flush writes every dirty tile-bit and IP-bit database back to disk as
// pretty-printed JSON under its .ron path, then clears the dirty flags.
// It requires a writable AssetSource. An IP-bit database with any pips or
// fixed connections recorded is a programming error (IP cores are
// word/enum only) and aborts the flush before anything is written.
func (db *Database) Flush() error {
	if !db.source.Writable() {
		return errors.New("Flush requires a writable AssetSource")
	}
	fs, ok := db.source.(*FSSource)
	if !ok {
		return errors.New("Flush requires a filesystem-backed AssetSource")
	}

	for key, t := range db.ipbits {
		if len(t.DB().Pips) != 0 || len(t.DB().Conns) != 0 {
			return errors.Errorf("ip bit database %s/%s must not define pips or conns", key.family, key.tiletype)
		}
	}

	var newPips, newWords, newEnums uint32

	for key, t := range db.tilebits {
		if !t.Dirty() {
			continue
		}
		t.Sort()
		if err := writeRon(fs, tiletypeFilePath(key.family, key.tiletype), t.DB()); err != nil {
			return err
		}
		newPips += t.newPips
		newWords += t.newWords
		newEnums += t.newEnums
		t.ClearDirty()
	}

	for key, t := range db.ipbits {
		if !t.Dirty() {
			continue
		}
		t.Sort()
		path := key.family + "/iptypes/" + key.tiletype + ".ron"
		if err := writeRon(fs, path, t.DB()); err != nil {
			return err
		}
		newWords += t.newWords
		newEnums += t.newEnums
		t.ClearDirty()
	}

	db.log.Infow("flush complete", "new_pips", newPips, "new_words", newWords, "new_enums", newEnums)
	return nil
}

func writeRon(fs *FSSource, relPath string, tbd *TileBitsDatabase) error {
	full := filepath.Join(fs.Root, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", relPath)
	}
	buf, err := json.MarshalIndent(tbd, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "encoding %s", relPath)
	}
	buf = append(buf, '\n')
	if err := os.WriteFile(full, buf, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", relPath)
	}
	return nil
}
