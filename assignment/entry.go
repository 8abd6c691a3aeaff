// Package assignment resolves who a task or checklist item is assigned to
// and keeps team and member selections consistent while they are edited.
//
// Every operation takes a snapshot plus a membership.Index and returns a new
// slice; inputs are never modified.
package assignment

import (
	"strings"
)

type Kind string

const (
	KindTeam     Kind = "team"
	KindEmployee Kind = "employee"
)

// ParseKind accepts "team" and "employee" in any case. Other values are
// reported as not ok so callers can infer the kind instead.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTeam:
		return KindTeam, true
	case KindEmployee:
		return KindEmployee, true
	}
	return "", false
}

// Entry is one team or employee bound to a task or checklist item.
type Entry struct {
	Type Kind   `json:"type" yaml:"type"`
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Key identifies an entry within a set.
func (e Entry) Key() string {
	return string(e.Type) + ":" + e.ID
}

func (e Entry) IsTeam() bool     { return e.Type == KindTeam }
func (e Entry) IsEmployee() bool { return e.Type == KindEmployee }

func contains(entries []Entry, kind Kind, id string) bool {
	for _, e := range entries {
		if e.Type == kind && e.ID == id {
			return true
		}
	}
	return false
}

func without(entries []Entry, kind Kind, id string) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == kind && e.ID == id {
			continue
		}
		out = append(out, e)
	}
	return out
}

func clone(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

func idsOf(entries []Entry, kind Kind) map[string]struct{} {
	out := make(map[string]struct{})
	for _, e := range entries {
		if e.Type == kind {
			out[e.ID] = struct{}{}
		}
	}
	return out
}

// TeamIDs returns the ids of team entries in order.
func TeamIDs(entries []Entry) []string {
	return filterIDs(entries, KindTeam)
}

// EmployeeIDs returns the ids of employee entries in order.
func EmployeeIDs(entries []Entry) []string {
	return filterIDs(entries, KindEmployee)
}

func filterIDs(entries []Entry, kind Kind) []string {
	var out []string
	for _, e := range entries {
		if e.Type == kind {
			out = append(out, e.ID)
		}
	}
	return out
}
