// Copyright (c) 2024 Karl Gaissmaier
// SPDX-License-Identifier: MIT

// Package fuzzjob loads declarative fuzz-job descriptors: a YAML file
// naming one FuzzMode, its tiles, and a description, so a fuzzing run's
// parameters can be described as data instead of a Go program. Sample
// deltas are not part of a descriptor; they are fed to the Fuzzer
// separately. This
// supplements the original pyprjoxide binding's role of letting a fuzz
// harness construct a Fuzzer from a scripting language, without carrying
// over pyo3 or any other CPython-specific machinery.
package fuzzjob

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nexusbits/tiledb/fuzz"
)

// PipSpec is the YAML shape of a pip fuzz job.
type PipSpec struct {
	ToWire        string   `yaml:"to_wire"`
	FullMux       bool     `yaml:"full_mux"`
	SkipFixed     bool     `yaml:"skip_fixed"`
	FixedConnTile string   `yaml:"fixed_conn_tile"`
	IgnoreTiles   []string `yaml:"ignore_tiles"`
}

// WordSpec is the YAML shape of a word fuzz job.
type WordSpec struct {
	Name  string `yaml:"name"`
	Width int    `yaml:"width"`
}

// EnumSpec is the YAML shape of an enum fuzz job.
type EnumSpec struct {
	Name           string   `yaml:"name"`
	IncludeZeros   bool     `yaml:"include_zeros"`
	Disambiguate   []string `yaml:"disambiguate"`
	AssumeZeroBase bool     `yaml:"assume_zero_base"`
	MarkRelativeTo string   `yaml:"mark_relative_to"`
}

// Spec is one fuzz job: which mode to run, over which tiles, with what
// description. Load requires the one of Pip, Word, Enum that matches
// Kind; the other two sections are not checked and Mode ignores them.
type Spec struct {
	Kind  string    `yaml:"kind"`
	Desc  string    `yaml:"desc"`
	Tiles []string  `yaml:"tiles"`
	Pip   *PipSpec  `yaml:"pip,omitempty"`
	Word  *WordSpec `yaml:"word,omitempty"`
	Enum  *EnumSpec `yaml:"enum,omitempty"`
}

// LoadFile reads and parses a fuzz-job YAML document from path.
func LoadFile(path string) (Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, errors.Wrapf(err, "reading fuzz job %s", path)
	}
	return Load(raw)
}

// Load parses a fuzz-job YAML document.
func Load(raw []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return Spec{}, errors.Wrap(err, "parsing fuzz job")
	}
	if err := s.validate(); err != nil {
		return Spec{}, err
	}
	return s, nil
}

func (s Spec) validate() error {
	switch s.Kind {
	case "pip":
		if s.Pip == nil {
			return errors.New("fuzz job kind \"pip\" requires a pip section")
		}
	case "word":
		if s.Word == nil {
			return errors.New("fuzz job kind \"word\" requires a word section")
		}
	case "enum":
		if s.Enum == nil {
			return errors.New("fuzz job kind \"enum\" requires an enum section")
		}
	default:
		return errors.Errorf("unknown fuzz job kind %q", s.Kind)
	}
	return nil
}

// Mode builds the fuzz.Mode described by s.
func (s Spec) Mode() (fuzz.Mode, error) {
	switch s.Kind {
	case "pip":
		return fuzz.NewPipMode(s.Pip.ToWire, s.Pip.FullMux, s.Pip.SkipFixed, s.Pip.FixedConnTile, s.Pip.IgnoreTiles...), nil
	case "word":
		return fuzz.NewWordMode(s.Word.Name, s.Word.Width), nil
	case "enum":
		return fuzz.NewEnumMode(s.Enum.Name, s.Enum.IncludeZeros, s.Enum.AssumeZeroBase, s.Enum.MarkRelativeTo), nil
	default:
		return fuzz.Mode{}, errors.Errorf("unknown fuzz job kind %q", s.Kind)
	}
}
