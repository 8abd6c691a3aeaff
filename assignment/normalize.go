package assignment

import (
	"fmt"

	"taskboard/ident"
	"taskboard/membership"
)

// Normalize turns a raw assignment list into a deduplicated, typed set.
//
// Items may be Entry values, JSON-decoded objects, raw ids or entities that
// implement ident.Referencer. Items without a resolvable id are dropped. When
// the type is missing it is inferred from the index, teams first, and falls
// back to employee. The first occurrence of each (type, id) wins.
func Normalize(raw []any, idx *membership.Index) []Entry {
	out := make([]Entry, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, item := range raw {
		entry, ok := fromRaw(item, idx)
		if !ok {
			continue
		}
		if _, dup := seen[entry.Key()]; dup {
			continue
		}
		seen[entry.Key()] = struct{}{}
		out = append(out, entry)
	}
	return out
}

// NormalizeEntries is Normalize for already typed entries.
func NormalizeEntries(entries []Entry, idx *membership.Index) []Entry {
	raw := make([]any, len(entries))
	for i, e := range entries {
		raw[i] = e
	}
	return Normalize(raw, idx)
}

func fromRaw(item any, idx *membership.Index) (Entry, bool) {
	var (
		id      string
		kindRaw string
		name    string
	)

	switch v := item.(type) {
	case nil:
		return Entry{}, false
	case Entry:
		id, kindRaw, name = v.ID, string(v.Type), v.Name
	case *Entry:
		if v == nil {
			return Entry{}, false
		}
		id, kindRaw, name = v.ID, string(v.Type), v.Name
	case map[string]any:
		kindRaw = stringField(v, "type")
		name = stringField(v, "name")
		id = firstID(v)
	case membership.Team:
		id, kindRaw, name = string(v.ID), string(KindTeam), v.Name
	case membership.Employee:
		id, kindRaw, name = string(v.ID), string(KindEmployee), v.Name
	default:
		id = ident.MustString(v)
	}

	if id == "" {
		return Entry{}, false
	}

	kind, ok := ParseKind(kindRaw)
	if !ok {
		kind = inferKind(id, idx)
	}
	if name == "" {
		name = lookupName(kind, id, idx)
	}
	return Entry{Type: kind, ID: id, Name: name}, true
}

// firstID tries each id-bearing field on its own before the whole object,
// so {"id": null, "_id": "x"} still resolves.
func firstID(m map[string]any) string {
	for _, key := range []string{"id", "_id", "teamId", "userId"} {
		if id, ok := ident.Normalize(m[key]); ok {
			return id
		}
	}
	return ident.MustString(m)
}

func stringField(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func inferKind(id string, idx *membership.Index) Kind {
	if idx.IsTeam(id) {
		return KindTeam
	}
	return KindEmployee
}

func lookupName(kind Kind, id string, idx *membership.Index) string {
	if kind == KindTeam {
		return idx.TeamName(id)
	}
	return idx.EmployeeName(id)
}
