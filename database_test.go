// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDevicesJSON = `{
  "families": {
    "fam": {
      "devices": {
        "dev1": {
          "packages": ["pkg1"],
          "frames": 1,
          "bits_per_frame": 1,
          "pad_bits_after_frame": 0,
          "pad_bits_before_frame": 0,
          "frame_ecc_bits": 0,
          "max_row": 1,
          "max_col": 1,
          "col_bias": 0,
          "fuzz": true,
          "variants": {"v1": {"idcode": 305419896}},
          "tap_frame_count": 0
        }
      }
    }
  }
}`

func newTestDatabase(t *testing.T, extra map[string][]byte) *Database {
	t.Helper()
	files := map[string][]byte{"devices.json": []byte(testDevicesJSON)}
	for k, v := range extra {
		files[k] = v
	}
	db, err := Open(newMemSource(files), Options{}, nil)
	require.NoError(t, err)
	return db
}

func TestDeviceByName(t *testing.T) {
	db := newTestDatabase(t, nil)
	family, data, ok := db.DeviceByName("dev1")
	require.True(t, ok)
	assert.Equal(t, "fam", family)
	assert.Equal(t, 1, data.Frames)
}

func TestDeviceByIdcode(t *testing.T) {
	db := newTestDatabase(t, nil)
	family, device, variant, _, ok := db.DeviceByIdcode(0x12345678)
	require.True(t, ok)
	assert.Equal(t, "fam", family)
	assert.Equal(t, "dev1", device)
	assert.Equal(t, "v1", variant)
}

func TestDeviceTilegridOverlayRewrite(t *testing.T) {
	extra := map[string][]byte{
		"fam/dev1/tilegrid.json": []byte(`{"tiles": {"T0": {"tiletype": "PLC", "x": 0, "y": 0, "start_bit": 0, "start_frame": 0, "bits": 0, "frames": 0}}}`),
		"fam/dev1/overlays.json": []byte(`{"tiletypes": {"SYN": ["T0"]}, "overlays": {"SYN": ["BASE1"]}}`),
	}
	db := newTestDatabase(t, extra)

	tg, err := db.DeviceTilegrid("fam", "dev1")
	require.NoError(t, err)
	assert.Equal(t, "SYN", tg.Tiles["T0"].TileType)
}

func TestDeviceTilegridNoOverlaysLeavesTypeAlone(t *testing.T) {
	extra := map[string][]byte{
		"fam/dev1/tilegrid.json": []byte(`{"tiles": {"T0": {"tiletype": "PLC", "x": 0, "y": 0, "start_bit": 0, "start_frame": 0, "bits": 0, "frames": 0}}}`),
	}
	db := newTestDatabase(t, extra)

	tg, err := db.DeviceTilegrid("fam", "dev1")
	require.NoError(t, err)
	assert.Equal(t, "PLC", tg.Tiles["T0"].TileType)
}

func TestOverlayTiletypesCollision(t *testing.T) {
	extra := map[string][]byte{
		"fam/dev1/overlays.json": []byte(`{"tiletypes": {"SYN1": ["T0"], "SYN2": ["T0"]}, "overlays": {}}`),
	}
	db := newTestDatabase(t, extra)
	_, err := db.overlayTiletypesFor("fam", "dev1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collision")
}
