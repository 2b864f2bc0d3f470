// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

const overlaysDir = "overlays/"

// loadOverlays lazily reads every device's overlays.json "overlays"
// section (the synthesized-tiletype recipes, as opposed to the
// "tiletypes" physical-tile lookup consumed by overlayTiletypesFor) and
// caches the result for the life of the Database.
func (db *Database) loadOverlays() error {
	if db.overlaysLoaded {
		return nil
	}
	db.overlays = map[familyDevice]map[string]OverlayTiletype{}

	for family, fd := range db.devices.Families {
		for device := range fd.Devices {
			path := fmt.Sprintf("%s/%s/overlays.json", family, device)
			if !db.source.Exists(path) {
				continue
			}
			raw, err := db.source.Read(path)
			if err != nil {
				return errors.Wrapf(err, "loading overlays.json for %s/%s", family, device)
			}
			var of overlaysFile
			if err := json.Unmarshal(raw, &of); err != nil {
				return errors.Wrapf(err, "parsing overlays.json for %s/%s", family, device)
			}
			recipes := make(map[string]OverlayTiletype, len(of.Overlays))
			for name, members := range of.Overlays {
				recipes[name] = OverlayTiletype{Overlays: members}
			}
			db.overlays[familyDevice{family, device}] = recipes
		}
	}

	db.overlaysLoaded = true
	return nil
}

// overlayRecipe returns the first overlay recipe found, across any device
// of family, for a synthesized tile type named tiletype.
func (db *Database) overlayRecipe(family, tiletype string) (OverlayTiletype, bool, error) {
	if db.opts.DisableOverlays {
		return OverlayTiletype{}, false, nil
	}
	if err := db.loadOverlays(); err != nil {
		return OverlayTiletype{}, false, err
	}
	for fd, recipes := range db.overlays {
		if fd.family != family {
			continue
		}
		if recipe, ok := recipes[tiletype]; ok {
			return recipe, true, nil
		}
	}
	return OverlayTiletype{}, false, nil
}

// moreOverlayPriority reports whether a should be composed before b when
// resolving an overlay recipe's member list. Members whose name starts
// with "overlay" are composed first; within a group, names sort in
// reverse lexical order. This is the Go transliteration of the original
// comparator `(y.starts_with("overlay"), y).cmp(&(x.starts_with("overlay"), x))`
// passed to itertools::sorted_by, which sorts descending by
// (starts_with_overlay, name).
func moreOverlayPriority(a, b string) bool {
	aOverlay := strings.HasPrefix(a, "overlay")
	bOverlay := strings.HasPrefix(b, "overlay")
	if aOverlay != bOverlay {
		return aOverlay
	}
	return a > b
}

// tileBitdbFromOverlays synthesizes the bit database for an overlay tile
// type by merging its member layers in moreOverlayPriority order:
// overlay-prefixed layers are merged first. A bit conflict between layers
// fails the composition unless Options.AllowBitChange is set, in which
// case the later layer's bits replace the earlier ones.
func (db *Database) tileBitdbFromOverlays(family, tiletype string, recipe OverlayTiletype) (*TileBitsData, error) {
	members := append([]string(nil), recipe.Overlays...)
	sort.Slice(members, func(i, j int) bool { return moreOverlayPriority(members[i], members[j]) })

	acc := NewTileBitsData(tiletype, NewTileBitsDatabase(), db.opts, db.log)
	for _, member := range members {
		layer, err := db.TileBitdb(family, member)
		if err != nil {
			return nil, errors.Wrapf(err, "composing overlay %s/%s from %s", family, tiletype, member)
		}
		cloned := layer.DB().Clone()
		if err := acc.Merge(&cloned); err != nil {
			return nil, errors.Wrapf(err, "merging overlay layer %s into %s/%s", member, family, tiletype)
		}
	}
	acc.ClearDirty()
	return acc, nil
}

func tiletypeFilePath(family, tiletype string) string {
	if rest, ok := strings.CutPrefix(tiletype, overlaysDir); ok {
		return fmt.Sprintf("%s/overlays/%s.ron", family, rest)
	}
	return fmt.Sprintf("%s/tiletypes/%s.ron", family, tiletype)
}

// TileBitdb returns the (lazily loaded, and possibly overlay-synthesized)
// tile-bit database for (family, tiletype). The result is cached; repeat
// calls return the same *TileBitsData so mutations accumulate.
func (db *Database) TileBitdb(family, tiletype string) (*TileBitsData, error) {
	key := familyTiletype{family, tiletype}
	if existing, ok := db.tilebits[key]; ok {
		return existing, nil
	}

	if recipe, found, err := db.overlayRecipe(family, tiletype); err != nil {
		return nil, err
	} else if found {
		composed, err := db.tileBitdbFromOverlays(family, tiletype, recipe)
		if err != nil {
			return nil, err
		}
		db.tilebits[key] = composed
		return composed, nil
	}

	path := tiletypeFilePath(family, tiletype)
	tbd := NewTileBitsDatabase()
	if db.source.Exists(path) {
		raw, err := db.source.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading tile bits for %s/%s", family, tiletype)
		}
		if err := json.Unmarshal(raw, &tbd); err != nil {
			return nil, errors.Wrapf(err, "parsing tile bits for %s/%s", family, tiletype)
		}
	}

	data := NewTileBitsData(tiletype, tbd, db.opts, db.log)
	db.tilebits[key] = data
	return data, nil
}

// IPBitdb returns the (lazily loaded) IP-core-configuration bit database
// for (family, iptype). Unlike TileBitdb, this never participates in
// overlay composition.
func (db *Database) IPBitdb(family, iptype string) (*TileBitsData, error) {
	key := familyTiletype{family, iptype}
	if existing, ok := db.ipbits[key]; ok {
		return existing, nil
	}

	path := fmt.Sprintf("%s/iptypes/%s.ron", family, iptype)
	tbd := NewTileBitsDatabase()
	if db.source.Exists(path) {
		raw, err := db.source.Read(path)
		if err != nil {
			return nil, errors.Wrapf(err, "loading ip bits for %s/%s", family, iptype)
		}
		if err := json.Unmarshal(raw, &tbd); err != nil {
			return nil, errors.Wrapf(err, "parsing ip bits for %s/%s", family, iptype)
		}
	}

	data := NewTileBitsData(iptype, tbd, db.opts, db.log)
	db.ipbits[key] = data
	return data, nil
}
