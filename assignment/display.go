package assignment

import (
	"taskboard/membership"
)

// Token is one badge of a compact assignment display.
type Token struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// Display is the collapsed form of an assignment set: the visible tokens and
// how many more are hidden behind them.
type Display struct {
	Tokens []Token `json:"tokens"`
	Extra  int     `json:"extra"`
}

// visibleTokens is the number of badges shown before the overflow count.
const visibleTokens = 1

// Project collapses entries for compact display.
func Project(entries []Entry, idx *membership.Index) Display {
	tokens := Tokens(entries, idx)
	if len(tokens) <= visibleTokens {
		return Display{Tokens: tokens}
	}
	return Display{
		Tokens: tokens[:visibleTokens],
		Extra:  len(tokens) - visibleTokens,
	}
}

// Tokens lists team badges first, then badges for employees that no
// selected team already covers. Employees without a name are skipped.
func Tokens(entries []Entry, idx *membership.Index) []Token {
	tokens := make([]Token, 0, len(entries))
	seen := make(map[string]struct{})
	push := func(label, key string) {
		if label == "" {
			return
		}
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		tokens = append(tokens, Token{Label: label, Key: key})
	}

	for _, e := range entries {
		if e.Type != KindTeam {
			continue
		}
		label := e.Name
		if label == "" {
			label = "Team"
		}
		key := e.ID
		if key == "" {
			key = label
		}
		push(label, "team:"+key)
	}

	selectedTeams := idsOf(entries, KindTeam)
	for _, e := range entries {
		if e.Type != KindEmployee {
			continue
		}
		if idx.Covered(e.ID, selectedTeams) {
			continue
		}
		key := e.ID
		if key == "" {
			key = e.Name
		}
		push(e.Name, "employee:"+key)
	}
	return tokens
}

// Labels returns the label of every token, for exports and search.
func Labels(entries []Entry, idx *membership.Index) []string {
	tokens := Tokens(entries, idx)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Label
	}
	return out
}
