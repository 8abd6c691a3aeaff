package assignment

import (
	"taskboard/membership"
)

// Resolution is an assignment set expanded to the people it reaches.
type Resolution struct {
	Teams     []string `json:"teams"`
	Employees []string `json:"employees"`
	// All holds direct employees followed by members of assigned teams,
	// without duplicates.
	All []string `json:"all"`
}

// Expand fans a set out to every employee it reaches, directly or through
// an assigned team.
func Expand(entries []Entry, idx *membership.Index) Resolution {
	res := Resolution{
		Teams:     []string{},
		Employees: []string{},
		All:       []string{},
	}
	seenAll := make(map[string]struct{})
	addAll := func(id string) {
		if _, ok := seenAll[id]; ok {
			return
		}
		seenAll[id] = struct{}{}
		res.All = append(res.All, id)
	}

	seenTeam := make(map[string]struct{})
	seenEmployee := make(map[string]struct{})
	for _, e := range entries {
		if e.ID == "" {
			continue
		}
		switch e.Type {
		case KindTeam:
			if _, ok := seenTeam[e.ID]; !ok {
				seenTeam[e.ID] = struct{}{}
				res.Teams = append(res.Teams, e.ID)
			}
		default:
			if _, ok := seenEmployee[e.ID]; !ok {
				seenEmployee[e.ID] = struct{}{}
				res.Employees = append(res.Employees, e.ID)
				addAll(e.ID)
			}
		}
	}
	for _, teamID := range res.Teams {
		for _, memberID := range idx.Members(teamID) {
			addAll(memberID)
		}
	}
	return res
}

// Covers reports whether employeeID is reached by the set, either as a
// direct entry or as a member of an assigned team.
func Covers(entries []Entry, idx *membership.Index, employeeID string) bool {
	if employeeID == "" {
		return false
	}
	if contains(entries, KindEmployee, employeeID) {
		return true
	}
	return idx.Covered(employeeID, idsOf(entries, KindTeam))
}
