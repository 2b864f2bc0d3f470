// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chip

// DeltaBit is one changed configuration-RAM coordinate: its (frame, bit)
// address and the value it holds in the sample chip (as opposed to
// tiledb.ConfigBit, which names a bit's role in a solved feature, a
// DeltaBit names a bit's observed state in one differential sample).
type DeltaBit struct {
	Frame int
	Bit   int
	Value bool
}

// ChipDelta is the set of CRAM bits and IP-config bytes that differ
// between two Chips of the same device, grouped per tile. It is the raw
// material a Fuzzer sample is built from.
type ChipDelta struct {
	Tiles    map[string][]DeltaBit
	IPConfig map[uint32]uint8
}

// Delta compares c against base (assumed to be the same device) and
// returns every CRAM bit that differs, grouped by tile name, plus every
// IP-config byte that differs or is newly present. Tiles present in c but
// absent from base are skipped: a delta only makes sense between two
// images of the same chip.
func (c *Chip) Delta(base *Chip) ChipDelta {
	out := ChipDelta{
		Tiles:    map[string][]DeltaBit{},
		IPConfig: map[uint32]uint8{},
	}

	for name, tile := range c.Tiles {
		baseTile, ok := base.Tiles[name]
		if !ok || tile.CRAM == nil || baseTile.CRAM == nil {
			continue
		}
		var changed []DeltaBit
		for frame := 0; frame < tile.CRAM.Frames(); frame++ {
			for bit := 0; bit < tile.CRAM.BitsPerFrame(); bit++ {
				v := tile.CRAM.Get(frame, bit)
				if v != baseTile.CRAM.Get(frame, bit) {
					changed = append(changed, DeltaBit{Frame: frame, Bit: bit, Value: v})
				}
			}
		}
		if len(changed) > 0 {
			out.Tiles[name] = changed
		}
	}

	for addr, val := range c.IPConfig {
		if baseVal, ok := base.IPConfig[addr]; !ok || baseVal != val {
			out.IPConfig[addr] = val
		}
	}

	return out
}
