package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"taskboard/assignment"
	"taskboard/status"
)

type cliCtx struct {
	context.Context
	Logger *slog.Logger
	Out    io.Writer
}

type cli struct {
	Debug bool `help:"Enable debug logging"`

	Status    StatusCmd    `cmd:"" help:"Print the aggregated status of every task"`
	Normalize NormalizeCmd `cmd:"" help:"Print the normalized assignment set of every task"`
	Toggle    ToggleCmd    `cmd:"" help:"Apply team and employee toggles to a selection"`
	Display   DisplayCmd   `cmd:"" help:"Print the compact assignment display of every task"`
}

type StatusCmd struct {
	File string `arg:"" help:"Snapshot file (YAML or JSON)" type:"existingfile"`
	Now  string `help:"Evaluate deadlines at this RFC 3339 time instead of now"`
}

func (c *StatusCmd) Run(ctx *cliCtx) error {
	snap, err := loadSnapshot(c.File)
	if err != nil {
		return err
	}
	now := time.Now()
	if c.Now != "" {
		now, err = time.Parse(time.RFC3339, c.Now)
		if err != nil {
			return fmt.Errorf("parse --now %q: %w", c.Now, err)
		}
	}

	for _, t := range snap.Tasks {
		p := status.Present(t.Task, now)
		stats := status.Stats(t.Checklist)
		line := fmt.Sprintf("%s\t%s\t%s\t%d%%", t.label(), p.Status, p.Title, stats.Percent)
		if p.Overdue {
			line += "\toverdue"
		}
		fmt.Fprintln(ctx.Out, line)
		ctx.Logger.Debug("aggregated", "task", t.label(), "stored", t.Status, "derived", p.Status)
	}
	return nil
}

type NormalizeCmd struct {
	File string `arg:"" help:"Snapshot file (YAML or JSON)" type:"existingfile"`
}

type normalizedTask struct {
	Task    string             `yaml:"task"`
	Entries []assignment.Entry `yaml:"entries"`
}

func (c *NormalizeCmd) Run(ctx *cliCtx) error {
	snap, err := loadSnapshot(c.File)
	if err != nil {
		return err
	}
	idx := snap.index()

	out := make([]normalizedTask, 0, len(snap.Tasks))
	for _, t := range snap.Tasks {
		out = append(out, normalizedTask{Task: t.label(), Entries: t.entries(idx)})
	}
	return writeYAML(ctx.Out, out)
}

type ToggleCmd struct {
	File      string   `arg:"" help:"Snapshot file (YAML or JSON)" type:"existingfile"`
	Task      string   `help:"Start from this task's assignments instead of an empty selection"`
	Teams     []string `name:"team" help:"Team to toggle; repeatable, applied before employees"`
	Employees []string `name:"employee" help:"Employee to toggle; repeatable"`
}

func (c *ToggleCmd) Run(ctx *cliCtx) error {
	snap, err := loadSnapshot(c.File)
	if err != nil {
		return err
	}
	idx := snap.index()

	sel := assignment.Selection{Entries: []assignment.Entry{}}
	if c.Task != "" {
		found := false
		for _, t := range snap.Tasks {
			if t.label() == c.Task {
				sel.Entries = t.entries(idx)
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("task %q not found in %s", c.Task, c.File)
		}
	}

	for _, id := range c.Teams {
		sel = sel.ToggleTeam(id, idx)
		ctx.Logger.Debug("toggled team", "team", id, "entries", len(sel.Entries))
	}
	for _, id := range c.Employees {
		sel = sel.ToggleEmployee(id, idx)
		ctx.Logger.Debug("toggled employee", "employee", id, "entries", len(sel.Entries))
	}
	return writeYAML(ctx.Out, sel)
}

type DisplayCmd struct {
	File string `arg:"" help:"Snapshot file (YAML or JSON)" type:"existingfile"`
}

func (c *DisplayCmd) Run(ctx *cliCtx) error {
	snap, err := loadSnapshot(c.File)
	if err != nil {
		return err
	}
	idx := snap.index()

	for _, t := range snap.Tasks {
		d := assignment.Project(t.entries(idx), idx)
		labels := make([]string, len(d.Tokens))
		for i, tok := range d.Tokens {
			labels[i] = tok.Label
		}
		text := strings.Join(labels, ", ")
		if d.Extra > 0 {
			text += fmt.Sprintf(" +%d", d.Extra)
		}
		if text == "" {
			text = "-"
		}
		fmt.Fprintf(ctx.Out, "%s\t%s\n", t.label(), text)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return enc.Close()
}
