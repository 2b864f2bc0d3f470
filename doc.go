// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package tiledb provides a persistent, per-tile-type bit database for
// reverse-engineered FPGA configuration memory (CRAM).
//
// The database records, for each tile type of a chip family, which CRAM
// bits correspond to which routing multiplexers (pips), configuration
// words, enumerated settings, fixed connections, and always-on baseline
// bits. Entries are grown by differentially analyzing bitstreams produced
// by a vendor toolchain (see the fuzz subpackage) and are merged with
// conflict detection so that repeated or contradictory observations are
// caught rather than silently overwritten.
//
// A synthesized "overlay" tile type can be built by ordered merge of
// several base tile types, letting one physical tile's bits be described
// as the union of its constituent logical layers.
//
// tiledb is single-threaded and cooperative: no exported type here may be
// used concurrently by more than one goroutine without external
// synchronization. Host code that wants to fuzz several families or
// devices in parallel should shard by Database instance.
package tiledb
