// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command fungera runs the two-dimensional artificial-life simulator:
// it loads a config file and an ancestor genome (or a saved
// snapshot), constructs an Engine, and drives it through a text REPL
// (package driver).
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/beevik/term"

	"github.com/fungera/fungera/config"
	"github.com/fungera/fungera/driver"
	"github.com/fungera/fungera/engine"
	"github.com/fungera/fungera/genome"
)

var (
	configPath = flag.String("config", "", "path to a TOML configuration file")
	genomePath = flag.String("genome", "initial.gen", "path to the ancestor genome file")
	headless   = flag.Bool("headless", false, "start in headless (minimal) mode")
)

func init() {
	flag.CommandLine.Usage = func() {
		fmt.Println("Usage: fungera [options]\nOptions:")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			exitOnError(err)
		}
	}

	eng := engine.New(engine.Config{
		MemoryRows:         cfg.MemoryRows,
		MemoryCols:         cfg.MemoryCols,
		RandomRate:         cfg.RandomRate,
		CycleGap:           cfg.CycleGap,
		MemoryFullRatio:    cfg.MemoryFullRatio,
		KillOrganismsRatio: cfg.KillOrganismsRatio,
		StackLength:        cfg.StackLength,
		RandomSeed:         cfg.RandomSeed,
		OrganismDeathRate:  cfg.OrganismDeathRate,
		KillIfNoChild:      cfg.KillIfNoChild,
	})
	eng.SetMinimal(*headless)

	if cfg.SnapshotToLoad != "" {
		f, err := os.Open(cfg.SnapshotToLoad)
		if err != nil {
			exitOnError(err)
		}
		err = eng.Load(f)
		f.Close()
		if err != nil {
			exitOnError(err)
		}
	} else {
		grid, err := genome.Load(*genomePath)
		if err != nil {
			exitOnError(err)
		}
		if _, err := eng.LoadGenome(grid); err != nil {
			exitOnError(err)
		}
	}

	d := driver.New(eng, &cfg)

	// Ctrl-C pauses the engine rather than killing the process; the
	// run loop notices the dropped flag between ticks.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		for range sig {
			eng.SetRunning(false)
		}
	}()

	// Only print a prompt when stdin is an interactive terminal; piped
	// input runs silently.
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	d.RunCommands(os.Stdin, os.Stdout, interactive)
}

func exitOnError(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
