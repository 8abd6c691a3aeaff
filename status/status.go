// Package status derives a single task status from checklist completion,
// per-assignee records and the stored status field.
package status

import (
	"strings"
)

type Status string

const (
	Todo  Status = "todo"
	Doing Status = "doing"
	Done  Status = "done"
)

// Sequence is the board column order.
var Sequence = []Status{Todo, Doing, Done}

var aliases = map[Status][]string{
	Todo: {"todo", "pending", "awaiting", "notstarted", "backlog"},
	Doing: {
		"doing", "inprogress", "progress", "active", "working", "review",
		"testing", "qa", "verify", "blocked", "hold", "stalled", "late",
	},
	Done: {"done", "completed", "complete", "finished", "resolved"},
}

var aliasIndex = func() map[string]Status {
	m := make(map[string]Status)
	for status, names := range aliases {
		for _, name := range names {
			m[name] = status
		}
	}
	return m
}()

var separators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", "_", "", "-", "")

func squash(s string) string {
	return separators.Replace(strings.ToLower(strings.TrimSpace(s)))
}

// Parse maps a free-text status onto a canonical one. Case, whitespace,
// underscores and hyphens are ignored.
func Parse(s string) (Status, bool) {
	status, ok := aliasIndex[squash(s)]
	return status, ok
}

// Normalize is Parse with unmatched input mapped to Todo.
func Normalize(s string) Status {
	if status, ok := Parse(s); ok {
		return status
	}
	return Todo
}

func (s Status) String() string {
	return string(s)
}

func (s Status) Valid() bool {
	return s == Todo || s == Doing || s == Done
}

// Title is the column heading for the status.
func (s Status) Title() string {
	switch s {
	case Doing:
		return "In Progress"
	case Done:
		return "Done"
	default:
		return "To Do"
	}
}

// Progress is the nominal completion percentage shown for a status.
func (s Status) Progress() int {
	switch s {
	case Todo:
		return 15
	case Doing:
		return 60
	case Done:
		return 100
	}
	return 10
}

// Next returns the following column, or false after Done.
func (s Status) Next() (Status, bool) {
	for i, status := range Sequence {
		if status == s && i+1 < len(Sequence) {
			return Sequence[i+1], true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

var priorities = map[string]Priority{
	"low":      PriorityLow,
	"medium":   PriorityMedium,
	"normal":   PriorityMedium,
	"high":     PriorityHigh,
	"critical": PriorityCritical,
	"urgent":   PriorityCritical,
}

// NormalizePriority defaults to Medium for anything unrecognized.
func NormalizePriority(s string) Priority {
	if p, ok := priorities[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return PriorityMedium
}
