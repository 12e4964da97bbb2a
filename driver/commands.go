// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import "github.com/beevik/cmd"

var commands *cmd.Tree

func init() {
	commands = cmd.NewTree("fungera")

	commands.AddCommand(cmd.Command{
		Name:        "step",
		Shortcuts:   []string{"s"},
		Brief:       "Advance the simulation by one tick, or N ticks",
		Description: "Advance the simulation by exactly one tick, or by the count given as an argument.",
		Usage:       "step [<count>]",
		Data:        cmdStep,
	})
	commands.AddCommand(cmd.Command{
		Name:        "run",
		Brief:       "Run continuously until the population dies out or a cycle limit is reached",
		Description: "Step the engine repeatedly until the queue empties or the given cycle count is reached.",
		Usage:       "run [<until-cycle>]",
		Data:        cmdRun,
	})
	commands.AddCommand(cmd.Command{
		Name:  "pause",
		Brief: "Mark the engine as not running",
		Usage: "pause",
		Data:  cmdPause,
	})
	commands.AddCommand(cmd.Command{
		Name:  "resume",
		Brief: "Mark the engine as running",
		Usage: "resume",
		Data:  cmdResume,
	})
	commands.AddCommand(cmd.Command{
		Name:        "save",
		Brief:       "Save a snapshot to a file",
		Description: "Serialize the current Memory, Queue and cycle counter to the given file.",
		Usage:       "save <path>",
		Data:        cmdSave,
	})
	commands.AddCommand(cmd.Command{
		Name:        "load",
		Brief:       "Load a snapshot from a file",
		Description: "Replace the current simulation state with the snapshot stored at the given path.",
		Usage:       "load <path>",
		Data:        cmdLoad,
	})
	commands.AddCommand(cmd.Command{
		Name:      "select-next",
		Shortcuts: []string{"sn"},
		Brief:     "Select the next organism in queue order",
		Usage:     "select-next",
		Data:      cmdSelectNext,
	})
	commands.AddCommand(cmd.Command{
		Name:      "select-previous",
		Shortcuts: []string{"sp"},
		Brief:     "Select the previous organism in queue order",
		Usage:     "select-previous",
		Data:      cmdSelectPrevious,
	})
	commands.AddCommand(cmd.Command{
		Name:        "kill-worst",
		Brief:       "Force a population-pressure cull",
		Description: "Cull the highest-error fraction of the population immediately, bypassing the memory-fullness check.",
		Usage:       "kill-worst",
		Data:        cmdKillWorst,
	})
	commands.AddCommand(cmd.Command{
		Name:        "headless",
		Brief:       "Toggle the engine's headless (minimal) flag",
		Description: "Flip the observational headless flag an attached UI consults; the simulation itself is unaffected.",
		Usage:       "headless",
		Data:        cmdHeadless,
	})
	commands.AddCommand(cmd.Command{
		Name:  "info",
		Brief: "Display the selected organism's state",
		Usage: "info",
		Data:  cmdInfo,
	})
	commands.AddCommand(cmd.Command{
		Name:        "dump",
		Brief:       "Dump a window of the memory grid as text",
		Description: "Print a rectangular window of the memory grid centered on the selected organism.",
		Usage:       "dump",
		Data:        cmdDump,
	})
	commands.AddCommand(cmd.Command{
		Name:  "set",
		Brief: "Display or change a configuration value",
		Usage: "set [<field> <value>]",
		Data:  cmdSet,
	})
	commands.AddCommand(cmd.Command{
		Name:      "quit",
		Shortcuts: []string{"q"},
		Brief:     "Exit the driver",
		Usage:     "quit",
		Data:      cmdQuit,
	})
}
