// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

// The types below deserialize the chip-metadata files named in spec.md
// §6 (devices.json, tilegrid.json, baseaddr.json, globals.json, iodb.json,
// the per-grade timing files). Loading and geometry interpretation of
// these files (device list lookups, tile coordinates, global-routing
// geometry, pad tables, timing tables) is explicitly out of scope for
// this module; Database only needs to deserialize them far enough to
// hand back an opaque view and, for tilegrid.json, to rewrite a tile's
// type name when the device is overlay-based.

// DevicesDatabase is the root of devices.json.
type DevicesDatabase struct {
	Families map[string]FamilyData `json:"families"`
}

// FamilyData lists the devices of one chip family.
type FamilyData struct {
	Devices map[string]DeviceData `json:"devices"`
}

// DeviceVariantData names one silicon variant of a device (package/speed
// grade combination sharing a die) by its JTAG idcode.
type DeviceVariantData struct {
	IDCode uint32 `json:"idcode"`
}

// DeviceData is one device's entry in devices.json.
type DeviceData struct {
	Packages           []string                     `json:"packages"`
	Frames             int                           `json:"frames"`
	BitsPerFrame       int                           `json:"bits_per_frame"`
	PadBitsAfterFrame  int                           `json:"pad_bits_after_frame"`
	PadBitsBeforeFrame int                           `json:"pad_bits_before_frame"`
	FrameECCBits       int                           `json:"frame_ecc_bits"`
	MaxRow             uint32                        `json:"max_row"`
	MaxCol             uint32                        `json:"max_col"`
	ColBias            uint32                        `json:"col_bias"`
	Fuzz               bool                          `json:"fuzz"`
	Variants           map[string]DeviceVariantData  `json:"variants"`
	TapFrameCount      int                           `json:"tap_frame_count"`
}

// TileData is one tile's entry in a device's tilegrid.json.
type TileData struct {
	TileType   string `json:"tiletype"`
	X          uint32 `json:"x"`
	Y          uint32 `json:"y"`
	StartBit   int    `json:"start_bit"`
	StartFrame int    `json:"start_frame"`
	Bits       int    `json:"bits"`
	Frames     int    `json:"frames"`
}

// DeviceTilegrid is the root of tilegrid.json.
type DeviceTilegrid struct {
	Tiles map[string]TileData `json:"tiles"`
}

// DeviceAddrRegion is one named IP-core address region.
type DeviceAddrRegion struct {
	Addr  uint32 `json:"addr"`
	ABits uint32 `json:"abits"`
}

// DeviceBaseAddrs is the root of baseaddr.json.
type DeviceBaseAddrs struct {
	Regions map[string]DeviceAddrRegion `json:"regions"`
}

// GlobalBranchData, GlobalSpineData, and GlobalHrowData describe one
// device's clock-distribution geometry (globals.json); consumed
// opaquely, no query helpers are implemented here.
type GlobalBranchData struct {
	BranchCol     int    `json:"branch_col"`
	FromCol       int    `json:"from_col"`
	TapDriverCol  int    `json:"tap_driver_col"`
	TapSide       string `json:"tap_side"`
	ToCol         int    `json:"to_col"`
}

type GlobalSpineData struct {
	FromRow  int `json:"from_row"`
	SpineRow int `json:"spine_row"`
	ToRow    int `json:"to_row"`
}

type GlobalHrowData struct {
	HrowCol   int   `json:"hrow_col"`
	SpineCols []int `json:"spine_cols"`
}

// DeviceGlobalsData is the root of globals.json.
type DeviceGlobalsData struct {
	Branches []GlobalBranchData `json:"branches"`
	Spines   []GlobalSpineData  `json:"spines"`
	Hrows    []GlobalHrowData   `json:"hrows"`
}

// PadData is one package pin's entry in iodb.json.
type PadData struct {
	Bank   int32    `json:"bank"`
	DQS    []int32  `json:"dqs"`
	Func   []string `json:"func"`
	Offset int32    `json:"offset"`
	Pins   []string `json:"pins"`
	PIO    int32    `json:"pio"`
	Side   string   `json:"side"`
	VRef   int32    `json:"vref"`
}

// DeviceIOData is the root of iodb.json.
type DeviceIOData struct {
	Packages []string  `json:"packages"`
	Pads     []PadData `json:"pads"`
}

// PipClassDelay is one pip-class timing entry.
type PipClassDelay struct {
	Base [2]int32 `json:"base"`
}

// InterconnectTimingData is the root of timing/interconnect_<grade>.json.
type InterconnectTimingData struct {
	PipClasses map[string]PipClassDelay `json:"pip_classes"`
}

// CellPropDelay is one combinational IO-path delay.
type CellPropDelay struct {
	FromPin string `json:"from_pin"`
	ToPin   string `json:"to_pin"`
	MinV    int32  `json:"minv"`
	MaxV    int32  `json:"maxv"`
}

// CellSetupHold is one setup/hold timing check.
type CellSetupHold struct {
	Clock    string `json:"clock"`
	Pin      string `json:"pin"`
	MinSetup int32  `json:"min_setup"`
	MaxSetup int32  `json:"max_setup"`
	MinHold  int32  `json:"min_hold"`
	MaxHold  int32  `json:"max_hold"`
}

// CellTypeTiming is one cell type's timing entries.
type CellTypeTiming struct {
	IOPaths    []CellPropDelay `json:"iopaths"`
	SetupHolds []CellSetupHold `json:"setupholds"`
}

// CellTimingData is the root of timing/cells_<grade>.json.
type CellTimingData struct {
	CellTypes map[string]CellTypeTiming `json:"celltypes"`
}

// OverlayTiletype lists the base tile types merged to form a synthesized
// overlay tile type, as recorded in overlays.json's "overlays" map.
type OverlayTiletype struct {
	Overlays []string `json:"overlays"`
}

// overlaysFile is the deserialized shape of a device's overlays.json.
type overlaysFile struct {
	Tiletypes map[string][]string `json:"tiletypes"`
	Overlays  map[string][]string `json:"overlays"`
}
