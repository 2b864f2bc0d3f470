// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"encoding/json"

	"github.com/pkg/errors"
)

func marshalForTest(v any) ([]byte, error) {
	return json.Marshal(v)
}

// memSource is an in-memory AssetSource used by tests that need a
// Database without touching a filesystem.
type memSource struct {
	files    map[string][]byte
	writable bool
}

func newMemSource(files map[string][]byte) *memSource {
	return &memSource{files: files, writable: true}
}

func (m *memSource) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memSource) Read(path string) ([]byte, error) {
	buf, ok := m.files[path]
	if !ok {
		return nil, errors.Errorf("no such file: %s", path)
	}
	return buf, nil
}

func (m *memSource) Writable() bool { return m.writable }
