// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import "github.com/pkg/errors"

// BitConflictError is returned by TileBitsData mutators when a new
// observation disagrees with one already recorded, and Options.AllowBitChange
// is not set.
type BitConflictError struct {
	TileType string
	Detail   string
}

func (e *BitConflictError) Error() string {
	return "bit conflict for " + e.TileType + ": " + e.Detail
}

func newBitConflict(tiletype, detail string) error {
	return errors.WithStack(&BitConflictError{TileType: tiletype, Detail: detail})
}

// IsBitConflict reports whether err is (or wraps) a *BitConflictError.
func IsBitConflict(err error) bool {
	var bc *BitConflictError
	return errors.As(err, &bc)
}
