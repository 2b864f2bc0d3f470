// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type familyDevice struct{ family, device string }
type familyTiletype struct{ family, tiletype string }
type familyGrade struct{ family, grade string }

// Database is the process-wide registry of tile-bit knowledge and chip
// metadata for one or more chip families. It lazily loads everything it
// serves and owns the single live TileBitsData for each (family,
// tile-type) it has touched.
//
// Database is not safe for concurrent use; see the package doc.
type Database struct {
	source AssetSource
	opts   Options
	log    *zap.SugaredLogger

	devices DevicesDatabase

	tilegrids    map[familyDevice]*DeviceTilegrid
	baseaddrs    map[familyDevice]*DeviceBaseAddrs
	globals      map[familyDevice]*DeviceGlobalsData
	iodbs        map[familyDevice]*DeviceIOData
	interconnTmg map[familyGrade]*InterconnectTimingData
	cellTmg      map[familyGrade]*CellTimingData

	tilebits map[familyTiletype]*TileBitsData
	ipbits   map[familyTiletype]*TileBitsData

	overlayBasedDevices map[familyDevice]struct{}
	overlaysLoaded      bool
	overlays            map[familyDevice]map[string]OverlayTiletype
	overlayTiletypes    map[familyDevice]map[string]string
}

// Open constructs a Database over source, eagerly loading devices.json
// and (unless opts.DisableOverlays) detecting which devices carry an
// overlays.json.
func Open(source AssetSource, opts Options, log *zap.Logger) (*Database, error) {
	if log == nil {
		log = zap.NewNop()
	}
	sugar := log.Sugar()

	raw, err := source.Read("devices.json")
	if err != nil {
		return nil, errors.Wrap(err, "loading devices.json")
	}
	var devices DevicesDatabase
	if err := json.Unmarshal(raw, &devices); err != nil {
		return nil, errors.Wrap(err, "parsing devices.json")
	}

	db := &Database{
		source:              source,
		opts:                opts,
		log:                 sugar,
		devices:             devices,
		tilegrids:           map[familyDevice]*DeviceTilegrid{},
		baseaddrs:           map[familyDevice]*DeviceBaseAddrs{},
		globals:             map[familyDevice]*DeviceGlobalsData{},
		iodbs:               map[familyDevice]*DeviceIOData{},
		interconnTmg:        map[familyGrade]*InterconnectTimingData{},
		cellTmg:             map[familyGrade]*CellTimingData{},
		tilebits:            map[familyTiletype]*TileBitsData{},
		ipbits:              map[familyTiletype]*TileBitsData{},
		overlayBasedDevices: map[familyDevice]struct{}{},
		overlayTiletypes:    map[familyDevice]map[string]string{},
	}

	if !opts.DisableOverlays {
		for family, fd := range devices.Families {
			for device := range fd.Devices {
				if source.Exists(fmt.Sprintf("%s/%s/overlays.json", family, device)) {
					db.overlayBasedDevices[familyDevice{family, device}] = struct{}{}
				}
			}
		}
	}

	return db, nil
}

// DeviceByName returns the family and data of the first device matching
// name across all families.
func (db *Database) DeviceByName(name string) (family string, data DeviceData, ok bool) {
	for f, fd := range db.devices.Families {
		if d, present := fd.Devices[name]; present {
			return f, d, true
		}
	}
	return "", DeviceData{}, false
}

// DeviceByIdcode returns the family, device, and variant name of the
// first device/variant whose idcode matches.
func (db *Database) DeviceByIdcode(idcode uint32) (family, device, variant string, data DeviceData, ok bool) {
	for f, fd := range db.devices.Families {
		for d, data := range fd.Devices {
			for v, vd := range data.Variants {
				if vd.IDCode == idcode {
					return f, d, v, data, true
				}
			}
		}
	}
	return "", "", "", DeviceData{}, false
}

func (db *Database) load(cachePath string) ([]byte, error) {
	buf, err := db.source.Read(cachePath)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// DeviceTilegrid returns the (lazily loaded) tilegrid for (family,
// device). On an overlay-based device, each tile's TileType is rewritten
// to the synthesized overlay tile type covering its physical tile name,
// when one is recorded; tiles with no recipe are left unchanged and a
// warning is logged.
func (db *Database) DeviceTilegrid(family, device string) (*DeviceTilegrid, error) {
	key := familyDevice{family, device}
	if tg, ok := db.tilegrids[key]; ok {
		return tg, nil
	}

	raw, err := db.load(fmt.Sprintf("%s/%s/tilegrid.json", family, device))
	if err != nil {
		return nil, errors.Wrapf(err, "loading tilegrid for %s/%s", family, device)
	}
	var tg DeviceTilegrid
	if err := json.Unmarshal(raw, &tg); err != nil {
		return nil, errors.Wrapf(err, "parsing tilegrid for %s/%s", family, device)
	}

	if _, overlayBased := db.overlayBasedDevices[key]; overlayBased {
		lookup, err := db.overlayTiletypesFor(family, device)
		if err != nil {
			return nil, err
		}
		for name, tile := range tg.Tiles {
			if tt, ok := lookup[name]; ok {
				tile.TileType = tt
				tg.Tiles[name] = tile
			} else {
				db.log.Warnw("tile not found in overlays listing", "tile", name, "device", device)
			}
		}
	}

	db.tilegrids[key] = &tg
	return &tg, nil
}

// overlayTiletypesFor returns, lazily loaded and cached, the physical
// tile name -> synthesized tile type map recorded in device's
// overlays.json "tiletypes" section.
func (db *Database) overlayTiletypesFor(family, device string) (map[string]string, error) {
	key := familyDevice{family, device}
	if m, ok := db.overlayTiletypes[key]; ok {
		return m, nil
	}

	raw, err := db.load(fmt.Sprintf("%s/%s/overlays.json", family, device))
	if err != nil {
		return nil, errors.Wrapf(err, "loading overlays.json for %s/%s", family, device)
	}
	var of overlaysFile
	if err := json.Unmarshal(raw, &of); err != nil {
		return nil, errors.Wrapf(err, "parsing overlays.json for %s/%s", family, device)
	}

	lookup := map[string]string{}
	for synth, members := range of.Tiletypes {
		for _, physical := range members {
			if prev, collision := lookup[physical]; collision {
				return nil, errors.Errorf("collision: %q belongs to both %q and %q", physical, prev, synth)
			}
			lookup[physical] = synth
		}
	}

	db.overlayTiletypes[key] = lookup
	return lookup, nil
}

// DeviceBaseAddrs returns the (lazily loaded) IP-core base-address
// regions for (family, device).
func (db *Database) DeviceBaseAddrs(family, device string) (*DeviceBaseAddrs, error) {
	key := familyDevice{family, device}
	if v, ok := db.baseaddrs[key]; ok {
		return v, nil
	}
	raw, err := db.load(fmt.Sprintf("%s/%s/baseaddr.json", family, device))
	if err != nil {
		return nil, errors.Wrapf(err, "loading baseaddr for %s/%s", family, device)
	}
	var v DeviceBaseAddrs
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "parsing baseaddr for %s/%s", family, device)
	}
	db.baseaddrs[key] = &v
	return &v, nil
}

// DeviceGlobals returns the (lazily loaded) clock-distribution geometry
// for (family, device).
func (db *Database) DeviceGlobals(family, device string) (*DeviceGlobalsData, error) {
	key := familyDevice{family, device}
	if v, ok := db.globals[key]; ok {
		return v, nil
	}
	raw, err := db.load(fmt.Sprintf("%s/%s/globals.json", family, device))
	if err != nil {
		return nil, errors.Wrapf(err, "loading globals for %s/%s", family, device)
	}
	var v DeviceGlobalsData
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "parsing globals for %s/%s", family, device)
	}
	db.globals[key] = &v
	return &v, nil
}

// DeviceIODB returns the (lazily loaded) package pin table for (family,
// device).
func (db *Database) DeviceIODB(family, device string) (*DeviceIOData, error) {
	key := familyDevice{family, device}
	if v, ok := db.iodbs[key]; ok {
		return v, nil
	}
	raw, err := db.load(fmt.Sprintf("%s/%s/iodb.json", family, device))
	if err != nil {
		return nil, errors.Wrapf(err, "loading iodb for %s/%s", family, device)
	}
	var v DeviceIOData
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "parsing iodb for %s/%s", family, device)
	}
	db.iodbs[key] = &v
	return &v, nil
}

// InterconnTimingDB returns the (lazily loaded) interconnect timing
// table for (family, grade).
func (db *Database) InterconnTimingDB(family, grade string) (*InterconnectTimingData, error) {
	key := familyGrade{family, grade}
	if v, ok := db.interconnTmg[key]; ok {
		return v, nil
	}
	raw, err := db.load(fmt.Sprintf("%s/timing/interconnect_%s.json", family, grade))
	if err != nil {
		return nil, errors.Wrapf(err, "loading interconnect timing for %s/%s", family, grade)
	}
	var v InterconnectTimingData
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "parsing interconnect timing for %s/%s", family, grade)
	}
	db.interconnTmg[key] = &v
	return &v, nil
}

// CellTimingDB returns the (lazily loaded) cell timing table for
// (family, grade).
func (db *Database) CellTimingDB(family, grade string) (*CellTimingData, error) {
	key := familyGrade{family, grade}
	if v, ok := db.cellTmg[key]; ok {
		return v, nil
	}
	raw, err := db.load(fmt.Sprintf("%s/timing/cells_%s.json", family, grade))
	if err != nil {
		return nil, errors.Wrapf(err, "loading cell timing for %s/%s", family, grade)
	}
	var v CellTimingData
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, errors.Wrapf(err, "parsing cell timing for %s/%s", family, grade)
	}
	db.cellTmg[key] = &v
	return &v, nil
}
