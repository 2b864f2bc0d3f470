// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

package tiledb

import (
	"embed"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// AssetSource is the capability a Database needs from its backing store:
// read individual files by relative path, check existence, and report
// whether it can be written back to. Two implementations are provided:
// FSSource for a filesystem root, EmbedSource for a read-only embedded
// asset tree built with go:embed.
type AssetSource interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
	Writable() bool
}

// FSSource is an AssetSource rooted at a directory on disk.
type FSSource struct {
	Root string
}

// NewFSSource returns a writable AssetSource rooted at root.
func NewFSSource(root string) *FSSource { return &FSSource{Root: root} }

func (s *FSSource) path(rel string) string { return filepath.Join(s.Root, rel) }

// Exists implements AssetSource.
func (s *FSSource) Exists(rel string) bool {
	_, err := os.Stat(s.path(rel))
	return err == nil
}

// Read implements AssetSource.
func (s *FSSource) Read(rel string) ([]byte, error) {
	buf, err := os.ReadFile(s.path(rel))
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", rel)
	}
	return buf, nil
}

// Writable implements AssetSource.
func (s *FSSource) Writable() bool { return true }

// EmbedSource is a read-only AssetSource backed by an embed.FS, used to
// ship a frozen snapshot of a database inside a binary.
type EmbedSource struct {
	FS   embed.FS
	Root string
}

// NewEmbedSource returns a read-only AssetSource over fs, rooted at root
// within that filesystem (root may be "" to use fs's own root).
func NewEmbedSource(fs embed.FS, root string) *EmbedSource {
	return &EmbedSource{FS: fs, Root: root}
}

func (s *EmbedSource) path(rel string) string {
	if s.Root == "" {
		return rel
	}
	return filepath.Join(s.Root, rel)
}

// Exists implements AssetSource.
func (s *EmbedSource) Exists(rel string) bool {
	_, err := s.FS.Open(s.path(rel))
	return err == nil
}

// Read implements AssetSource.
func (s *EmbedSource) Read(rel string) ([]byte, error) {
	buf, err := s.FS.ReadFile(s.path(rel))
	if err != nil {
		return nil, errors.Wrapf(err, "reading embedded %s", rel)
	}
	return buf, nil
}

// Writable implements AssetSource.
func (s *EmbedSource) Writable() bool { return false }
