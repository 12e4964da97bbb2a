// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package driver implements the text REPL that drives an Engine:
// step, run, pause/resume, save, load, select-next, select-previous,
// kill-worst, headless, info, dump, set, and quit. It is deliberately
// a flat text surface rather than a full-screen UI; anything fancier
// can be layered on top of the same Engine observation methods this
// package uses. The command tree is a github.com/beevik/cmd tree with
// prefix-matched command names.
package driver

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"

	"github.com/fungera/fungera/config"
	"github.com/fungera/fungera/engine"
	"github.com/fungera/fungera/vec"
)

// Driver wraps an Engine with a line-oriented command processor.
type Driver struct {
	eng         *engine.Engine
	cfg         *config.Config
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	lastCmd     *cmd.Selection
}

// New creates a Driver over eng, whose commands may also read and
// mutate cfg (e.g. "set random_rate 50").
func New(eng *engine.Engine, cfg *config.Config) *Driver {
	return &Driver{eng: eng, cfg: cfg}
}

// RunCommands reads commands from r and writes output to w; when
// interactive is true a prompt is printed before each line is read.
// An empty line repeats the last command.
func (d *Driver) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	d.input = bufio.NewScanner(r)
	d.output = bufio.NewWriter(w)
	d.interactive = interactive

	for {
		d.prompt()

		line, err := d.getLine()
		if err != nil {
			break
		}

		if err := d.processCommand(line); err != nil {
			if err == errQuit {
				break
			}
			d.printf("ERROR: %v.\n", err)
		}
	}
	d.flush()
}

var errQuit = fmt.Errorf("quit")

func (d *Driver) processCommand(line string) error {
	var c cmd.Selection
	if line != "" {
		var err error
		c, err = commands.Lookup(line)
		switch {
		case err == cmd.ErrNotFound:
			d.println("Command not found.")
			return nil
		case err == cmd.ErrAmbiguous:
			d.println("Command is ambiguous.")
			return nil
		case err != nil:
			return err
		}
	} else if d.lastCmd != nil {
		c = *d.lastCmd
	}

	if c.Command == nil {
		return nil
	}
	if c.Command.Data == nil && c.Command.Subtree != nil {
		d.displayCommands(c.Command.Subtree)
		return nil
	}

	d.lastCmd = &c
	handler := c.Command.Data.(func(*Driver, cmd.Selection) error)
	return handler(d, c)
}

func (d *Driver) displayCommands(tree *cmd.Tree) {
	d.printf("%s commands:\n", tree.Title)
	for _, e := range tree.Commands {
		if e.Brief != "" {
			d.printf("    %-16s %s\n", e.Name, e.Brief)
		}
	}
}

func (d *Driver) printf(format string, args ...any) {
	fmt.Fprintf(d.output, format, args...)
	d.output.Flush()
}

func (d *Driver) println(args ...any) {
	fmt.Fprintln(d.output, args...)
	d.output.Flush()
}

func (d *Driver) flush() {
	d.output.Flush()
}

func (d *Driver) getLine() (string, error) {
	if d.input.Scan() {
		return d.input.Text(), nil
	}
	if d.input.Err() != nil {
		return "", d.input.Err()
	}
	return "", io.EOF
}

func (d *Driver) prompt() {
	if !d.interactive {
		return
	}
	d.printf("fungera[%d]> ", d.eng.Cycle())
	d.flush()
}

func parseUint(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}

// cmdStep advances the engine by one tick, or by the count given as
// an argument.
func cmdStep(d *Driver, c cmd.Selection) error {
	n := 1
	if len(c.Args) > 0 {
		n = parseUint(c.Args[0], 1)
	}
	for i := 0; i < n; i++ {
		d.eng.Step()
	}
	d.printf("cycle %d, %d organisms\n", d.eng.Cycle(), d.eng.Queue().Len())
	return nil
}

// cmdRun steps the engine continuously until the queue empties or a
// requested cycle count elapses. Step itself never pauses; pausing is
// enforced here by not calling it once the Running flag drops. The
// autosave cadence, when configured, is honored between ticks.
func cmdRun(d *Driver, c cmd.Selection) error {
	limit := -1
	if len(c.Args) > 0 {
		limit = parseUint(c.Args[0], -1)
	}
	d.eng.SetRunning(true)
	for d.eng.Running() && d.eng.Queue().Len() > 0 {
		d.eng.Step()
		if err := d.autosave(); err != nil {
			return err
		}
		if limit >= 0 && int(d.eng.Cycle()) >= limit {
			break
		}
	}
	d.printf("stopped at cycle %d, %d organisms\n", d.eng.Cycle(), d.eng.Queue().Len())
	return nil
}

// autosave writes a snapshot named after the simulation and the
// current cycle whenever the configured autosave cadence comes due.
// With no cadence configured it does nothing.
func (d *Driver) autosave() error {
	if d.cfg.AutosaveRate <= 0 || d.eng.Cycle()%uint64(d.cfg.AutosaveRate) != 0 {
		return nil
	}
	if err := os.MkdirAll("snapshots", 0o755); err != nil {
		return err
	}
	path := filepath.Join("snapshots",
		fmt.Sprintf("%s_cycle_%d.snapshot", d.cfg.SimulationName, d.eng.Cycle()))
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.eng.Save(f); err != nil {
		return err
	}
	d.printf("autosaved to %s\n", path)
	return nil
}

func cmdPause(d *Driver, c cmd.Selection) error {
	d.eng.SetRunning(false)
	d.println("paused")
	return nil
}

func cmdResume(d *Driver, c cmd.Selection) error {
	d.eng.SetRunning(true)
	d.println("resumed")
	return nil
}

func cmdSave(d *Driver, c cmd.Selection) error {
	if len(c.Args) < 1 {
		return fmt.Errorf("usage: save <path>")
	}
	f, err := os.Create(c.Args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.eng.Save(f); err != nil {
		return err
	}
	d.printf("saved to %s\n", c.Args[0])
	return nil
}

func cmdLoad(d *Driver, c cmd.Selection) error {
	if len(c.Args) < 1 {
		return fmt.Errorf("usage: load <path>")
	}
	f, err := os.Open(c.Args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	if err := d.eng.Load(f); err != nil {
		return err
	}
	d.printf("loaded %s at cycle %d\n", c.Args[0], d.eng.Cycle())
	return nil
}

func cmdSelectNext(d *Driver, c cmd.Selection) error {
	d.eng.SelectNext()
	return cmdInfo(d, c)
}

func cmdSelectPrevious(d *Driver, c cmd.Selection) error {
	d.eng.SelectPrevious()
	return cmdInfo(d, c)
}

func cmdKillWorst(d *Driver, c cmd.Selection) error {
	before := d.eng.Queue().Len()
	d.eng.KillAllWorst()
	d.printf("culled %d organisms\n", before-d.eng.Queue().Len())
	return nil
}

// cmdHeadless toggles the engine's minimal flag. The flag carries no
// simulation semantics; an attached UI reads it to decide whether to
// render.
func cmdHeadless(d *Driver, c cmd.Selection) error {
	d.eng.SetMinimal(!d.eng.Minimal())
	d.printf("headless = %v\n", d.eng.Minimal())
	return nil
}

// cmdInfo prints the selected organism's observable state: IP, delta,
// body/child regions, registers, stack and error count.
func cmdInfo(d *Driver, c cmd.Selection) error {
	o := d.eng.Queue().GetSelected()
	if o == nil {
		d.println("no organisms")
		return nil
	}
	d.printf("id=%d parent=%d ip=%v delta=%v start=%v size=%v child_start=%v child_size=%v errors=%d\n",
		o.ID, o.ParentID, o.IP, o.Delta, o.Start, o.Size, o.ChildStart, o.ChildSize, o.Errors)
	d.printf("regs a=%v b=%v c=%v d=%v\n", o.Regs[0], o.Regs[1], o.Regs[2], o.Regs[3])
	d.printf("stack %v\n", o.Stack)
	return nil
}

// cmdDump prints a rectangular window of the memory grid as text,
// centered on the selected organism's body.
func cmdDump(d *Driver, c cmd.Selection) error {
	origin := vec.Zero
	size := vec.Vec2{X: 20, Y: 60}
	if sel := d.eng.Queue().GetSelected(); sel != nil {
		origin = vec.Vec2{X: sel.Start.X - size.X/2, Y: sel.Start.Y - size.Y/2}
	}
	mem := d.eng.Memory()
	for r := 0; r < size.X; r++ {
		row := origin.X + r
		if row < 0 || row >= mem.Rows() {
			continue
		}
		var sb strings.Builder
		for col := origin.Y; col < origin.Y+size.Y; col++ {
			if col < 0 || col >= mem.Cols() {
				continue
			}
			sb.WriteByte(mem.Cell(vec.Vec2{X: row, Y: col}))
		}
		d.println(sb.String())
	}
	return nil
}

// cmdSet parses its value argument according to the named field's
// kind before assigning it; a plain string argument cannot satisfy
// config.Config.Set's type check on its own. With no arguments it
// prints the whole configuration.
func cmdSet(d *Driver, c cmd.Selection) error {
	if len(c.Args) < 2 {
		var sb strings.Builder
		d.cfg.Display(&sb)
		d.println(sb.String())
		return nil
	}

	name := c.Args[0]
	raw := strings.Join(c.Args[1:], " ")

	var err error
	switch d.cfg.Kind(name) {
	case reflect.Invalid:
		err = fmt.Errorf("setting %q not found", name)
	case reflect.String:
		err = d.cfg.Set(name, raw)
	case reflect.Float64:
		var v float64
		if v, err = strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			err = d.cfg.Set(name, v)
		}
	case reflect.Int64:
		var v int64
		if v, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64); err == nil {
			err = d.cfg.Set(name, v)
		}
	default: // reflect.Int and the other plain integer kinds
		var v int
		if v, err = strconv.Atoi(strings.TrimSpace(raw)); err == nil {
			err = d.cfg.Set(name, v)
		}
	}
	if err != nil {
		return err
	}
	d.printf("%s set\n", name)
	return nil
}

func cmdQuit(d *Driver, c cmd.Selection) error {
	return errQuit
}
