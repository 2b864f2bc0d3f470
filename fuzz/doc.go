// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package fuzz implements differential bit inference: given a baseline
// Chip and a family of perturbed Chips each tagged with a logical
// FuzzKey (a pip arc, a word-bit index, an enum option), it discovers the
// minimal CRAM bit pattern that encodes each setting and commits the
// result into a tiledb.Database.
//
// Usage is add-then-solve: construct a Fuzzer for one FuzzMode, call
// AddSample once per observed (key, delta) pair — repeat calls under the
// same key intersect rather than overwrite, which is what makes the
// inference converge across noisy samples — then call Solve once.
package fuzz
