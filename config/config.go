// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the TOML configuration file that parameterizes
// an Engine and exposes a reflective Display/Set surface, so the
// driver's "set" command can walk an arbitrary field by name without
// a long hand-written switch.
package config

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/beevik/prefixtree/v2"
)

// Config bundles every tunable value an Engine and its driver need.
type Config struct {
	MemoryRows int `toml:"memory_rows" doc:"memory grid row count"`
	MemoryCols int `toml:"memory_cols" doc:"memory grid column count"`

	InfoDisplaySize int `toml:"info_display_size" doc:"UI-only: lines reserved for the info panel"`
	ScrollStep      int `toml:"scroll_step" doc:"UI-only: cells scrolled per viewport-move command"`

	RandomRate         int     `toml:"random_rate" doc:"cycles between cosmic-ray mutations"`
	CycleGap           int     `toml:"cycle_gap" doc:"cycles between population-pressure checks"`
	MemoryFullRatio    float64 `toml:"memory_full_ratio" doc:"allocated/free ratio that triggers culling"`
	KillOrganismsRatio float64 `toml:"kill_organisms_ratio" doc:"fraction of the population culled at once"`
	StackLength        int     `toml:"stack_length" doc:"per-organism stack capacity"`
	RandomSeed         int64   `toml:"random_seed" doc:"seed for the cosmic-ray generator"`

	OrganismDeathRate int    `toml:"organism_death_rate" doc:"errors beyond which an organism self-kills"`
	KillIfNoChild     int    `toml:"kill_if_no_child" doc:"cycles without reproducing beyond which an organism self-kills"`
	AutosaveRate      int    `toml:"autosave_rate" doc:"cycles between driver-initiated autosaves, 0 disables"`
	SimulationName    string `toml:"simulation_name" doc:"used to name autosave snapshot files"`
	SnapshotToLoad    string `toml:"snapshot_to_load" doc:"snapshot file to resume from at startup, empty for none"`
}

// Default returns a configuration sized for a real run on a
// 1000x1000 grid; Load layers a TOML file over this base, so a config
// file only needs to mention the fields it changes. KillIfNoChild
// leaves room for the stock ancestor, which takes tens of thousands
// of cycles per generation.
func Default() Config {
	return Config{
		MemoryRows: 1000,
		MemoryCols: 1000,

		InfoDisplaySize: 10,
		ScrollStep:      4,

		RandomRate:         100,
		CycleGap:           1000,
		MemoryFullRatio:    0.75,
		KillOrganismsRatio: 0.5,
		StackLength:        8,
		RandomSeed:         1,

		OrganismDeathRate: 50,
		KillIfNoChild:     100000,
		AutosaveRate:      0,
		SimulationName:    "fungera",
		SnapshotToLoad:    "",
	}
}

// Load reads a TOML file at path over Default(), so an incomplete
// config file only overrides the fields it mentions.
func Load(path string) (Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

type field struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	tree   = prefixtree.New[*field]()
	fields []field
)

func init() {
	t := reflect.TypeOf(Config{})
	fields = make([]field, t.NumField())
	for i := range fields {
		f := t.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		fields[i] = field{name: f.Name, index: i, kind: f.Type.Kind(), typ: f.Type, doc: doc}
		// Fields are addressed by their snake_case TOML name, the same
		// spelling the config file uses.
		tree.Add(f.Tag.Get("toml"), &fields[i])
	}
}

// Display writes every field and its documentation to w.
func (c *Config) Display(w io.Writer) {
	v := reflect.ValueOf(c).Elem()
	for i, f := range fields {
		fmt.Fprintf(w, "%-28s %-16v (%s)\n", f.name, v.Field(i), f.doc)
	}
}

// Kind reports the reflect.Kind of the named field, or reflect.Invalid
// if name does not match any field. The driver's "set" command uses
// this to decide how to parse its string argument before calling Set.
func (c *Config) Kind(name string) reflect.Kind {
	f, err := tree.FindValue(strings.ToLower(name))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

// Set looks up a field by name (case-insensitive, unique prefix
// allowed) and assigns value to it. A string value may only be
// assigned to a string field and vice versa; callers parse numeric
// arguments themselves first (see Kind).
func (c *Config) Set(name string, value any) error {
	f, err := tree.FindValue(strings.ToLower(name))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	vIn := reflect.ValueOf(value)
	isStr := vIn.Type().Kind() == reflect.String
	if (f.kind == reflect.String) != isStr || !vIn.Type().ConvertibleTo(f.typ) {
		return fmt.Errorf("config: %s: cannot assign %T", name, value)
	}
	reflect.ValueOf(c).Elem().Field(f.index).Set(vIn.Convert(f.typ))
	return nil
}
