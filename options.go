// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import "os"

// Options holds the process-wide environment overrides read once at
// Database construction time (DESIGN NOTES: "read once at startup ...
// rather than on every call, to avoid repeated syscalls").
type Options struct {
	// AllowBitChange downgrades bit conflicts (pip/word/enum/bel-offset
	// disagreement) from a returned error to an overwrite-with-warning.
	// Corresponds to the ALLOW_BIT_CHANGE environment variable.
	AllowBitChange bool

	// DisableOverlays skips overlay-recipe detection entirely, so every
	// tile type resolves to its own .ron file even on an overlay-based
	// device. Corresponds to the DISABLE_OVERLAYS environment variable.
	DisableOverlays bool
}

// OptionsFromEnv resolves Options from the process environment. Callers
// that want deterministic behavior regardless of the ambient environment
// should build an Options value directly instead.
func OptionsFromEnv() Options {
	_, allowBitChange := os.LookupEnv("ALLOW_BIT_CHANGE")
	_, disableOverlays := os.LookupEnv("DISABLE_OVERLAYS")
	return Options{
		AllowBitChange:  allowBitChange,
		DisableOverlays: disableOverlays,
	}
}
