// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package chip

// Tile is one physical tile instance of a programmed chip: its logical
// name, tile type, grid coordinates, and backing CRAM.
type Tile struct {
	Name     string
	TileType string
	X, Y     int
	CRAM     *CRAM
}

// Chip is one fully addressed bitstream image: every tile of a device,
// keyed by name, plus any IP-core configuration bytes (addressed
// independently of tile CRAM, per spec.md's IP-core fuzzing path).
type Chip struct {
	Family   string
	Tiles    map[string]*Tile
	IPConfig map[uint32]uint8
}

// NewChip returns an empty Chip for family.
func NewChip(family string) *Chip {
	return &Chip{
		Family:   family,
		Tiles:    map[string]*Tile{},
		IPConfig: map[uint32]uint8{},
	}
}

// AddTile registers t, keyed by its Name.
func (c *Chip) AddTile(t *Tile) { c.Tiles[t.Name] = t }

// TileByName looks up a tile by its logical name.
func (c *Chip) TileByName(name string) (*Tile, bool) {
	t, ok := c.Tiles[name]
	return t, ok
}

// WireNormalizer canonicalizes a wire name before it is recorded in a
// tile-bit database, so that electrically-equivalent wire aliases (for
// example a tile-type-specific prefix the fuzz harness strips before
// naming a pip) collapse to one name. The zero-value default is the
// identity function; a family with aliasing wire names supplies its own.
type WireNormalizer interface {
	Normalize(tiletype, wire string) string
}

// IdentityNormalizer is a WireNormalizer that returns wire unchanged.
type IdentityNormalizer struct{}

// Normalize implements WireNormalizer.
func (IdentityNormalizer) Normalize(_, wire string) string { return wire }
