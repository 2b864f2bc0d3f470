// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package fuzz

// ModeKind discriminates the three FuzzMode variants.
type ModeKind int

const (
	// ModePip fuzzes the source-selecting bits of a mux feeding to_wire.
	ModePip ModeKind = iota
	// ModeWord fuzzes a multi-bit configuration word one bit at a time.
	ModeWord
	// ModeEnum fuzzes a named enumerated setting option by option.
	ModeEnum
)

// PipParams parameterizes ModePip.
type PipParams struct {
	ToWire  string
	FullMux bool

	// SkipFixed discards an arc that turns out to carry no selecting
	// bits (a fixed connection) instead of recording it as a conn.
	SkipFixed bool

	// FixedConnTile names the tile instance whose database receives a
	// fixed connection when an arc has no selecting bits.
	FixedConnTile string

	// IgnoreTiles are tiles that may legitimately change alongside the
	// fuzz region without being flagged as contamination.
	IgnoreTiles map[string]struct{}
}

// WordParams parameterizes ModeWord.
type WordParams struct {
	Name  string
	Width int
}

// EnumParams parameterizes ModeEnum.
type EnumParams struct {
	Name string

	IncludeZeros bool

	// Disambiguate is carried for schema fidelity but never consulted,
	// matching the source's own "// fixme" status for this field.
	Disambiguate []string

	AssumeZeroBase bool

	// MarkRelativeTo, when non-empty, names a reference tile instance;
	// solveEnum records this tile's offset from it as a bel offset.
	MarkRelativeTo string
}

// Mode is the tagged union of the three ways a Fuzzer can be
// parameterized. Exactly the field matching Kind is meaningful.
type Mode struct {
	Kind ModeKind
	Pip  PipParams
	Word WordParams
	Enum EnumParams
}

// NewPipMode returns a Mode fuzzing pip selection bits for to_wire.
func NewPipMode(toWire string, fullMux, skipFixed bool, fixedConnTile string, ignoreTiles ...string) Mode {
	ignore := make(map[string]struct{}, len(ignoreTiles))
	for _, t := range ignoreTiles {
		ignore[t] = struct{}{}
	}
	return Mode{
		Kind: ModePip,
		Pip: PipParams{
			ToWire:        toWire,
			FullMux:       fullMux,
			SkipFixed:     skipFixed,
			FixedConnTile: fixedConnTile,
			IgnoreTiles:   ignore,
		},
	}
}

// NewWordMode returns a Mode fuzzing a width-bit word named name.
func NewWordMode(name string, width int) Mode {
	return Mode{Kind: ModeWord, Word: WordParams{Name: name, Width: width}}
}

// NewEnumMode returns a Mode fuzzing an enumerated setting named name.
func NewEnumMode(name string, includeZeros, assumeZeroBase bool, markRelativeTo string) Mode {
	return Mode{
		Kind: ModeEnum,
		Enum: EnumParams{
			Name:           name,
			IncludeZeros:   includeZeros,
			AssumeZeroBase: assumeZeroBase,
			MarkRelativeTo: markRelativeTo,
		},
	}
}
