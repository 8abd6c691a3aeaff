package assignment

import (
	"strings"

	"taskboard/membership"
)

// Selection is the editing state of an assignment picker: the entries plus
// the team whose members are listed in the member panel.
type Selection struct {
	Entries    []Entry `json:"entries" yaml:"entries"`
	ActiveTeam string  `json:"activeTeam,omitempty" yaml:"activeTeam,omitempty"`
}

// ToggleTeam selects or deselects a team together with its members.
func ToggleTeam(current []Entry, teamID string, idx *membership.Index) []Entry {
	return Selection{Entries: current}.ToggleTeam(teamID, idx).Entries
}

// ToggleEmployee selects or deselects one employee, dropping any selected
// team that is left without a selected member.
func ToggleEmployee(current []Entry, employeeID string, idx *membership.Index) []Entry {
	return Selection{Entries: current}.ToggleEmployee(employeeID, idx).Entries
}

// ToggleTeam applies a team checkbox click.
//
// Selecting adds the team and every current member not already present and
// makes the team active. Deselecting removes the team and each of its members
// that is not covered by another team still selected afterwards. The
// synthetic Unassigned team never becomes an entry; it only moves the
// active pointer.
func (s Selection) ToggleTeam(teamID string, idx *membership.Index) Selection {
	if teamID == "" {
		return s.copy()
	}
	if teamID == membership.Unassigned {
		return s.FocusTeam(teamID)
	}

	if s.IsTeamSelected(teamID) {
		return s.deselectTeam(teamID, idx)
	}
	return s.selectTeam(teamID, idx)
}

func (s Selection) selectTeam(teamID string, idx *membership.Index) Selection {
	entries := clone(s.Entries)
	entries = append(entries, Entry{Type: KindTeam, ID: teamID, Name: idx.TeamName(teamID)})

	present := idsOf(entries, KindEmployee)
	for _, memberID := range idx.Members(teamID) {
		if _, ok := present[memberID]; ok {
			continue
		}
		present[memberID] = struct{}{}
		entries = append(entries, Entry{Type: KindEmployee, ID: memberID, Name: idx.EmployeeName(memberID)})
	}

	return Selection{Entries: entries, ActiveTeam: teamID}
}

func (s Selection) deselectTeam(teamID string, idx *membership.Index) Selection {
	entries := without(s.Entries, KindTeam, teamID)

	// Coverage is judged against the teams that remain after the removal.
	remaining := idsOf(entries, KindTeam)
	members := make(map[string]struct{})
	for _, memberID := range idx.Members(teamID) {
		members[memberID] = struct{}{}
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Type == KindEmployee {
			if _, isMember := members[e.ID]; isMember && !idx.Covered(e.ID, remaining) {
				continue
			}
		}
		out = append(out, e)
	}

	active := s.ActiveTeam
	if active == teamID {
		active = ""
		if ids := TeamIDs(out); len(ids) > 0 {
			active = ids[0]
		}
	}
	return Selection{Entries: out, ActiveTeam: active}
}

// ToggleEmployee applies an employee checkbox click. Selecting never touches
// team entries. Deselecting drops every selected team of that employee that
// no longer has any selected member.
func (s Selection) ToggleEmployee(employeeID string, idx *membership.Index) Selection {
	if employeeID == "" {
		return s.copy()
	}

	if !s.IsEmployeeSelected(employeeID) {
		entries := clone(s.Entries)
		entries = append(entries, Entry{Type: KindEmployee, ID: employeeID, Name: idx.EmployeeName(employeeID)})
		return Selection{Entries: entries, ActiveTeam: s.ActiveTeam}
	}

	entries := without(s.Entries, KindEmployee, employeeID)
	for _, teamID := range TeamIDs(entries) {
		if !idx.HasMember(teamID, employeeID) {
			continue
		}
		if !hasSelectedMember(entries, teamID, idx) {
			entries = without(entries, KindTeam, teamID)
		}
	}
	return Selection{Entries: entries, ActiveTeam: s.ActiveTeam}
}

func hasSelectedMember(entries []Entry, teamID string, idx *membership.Index) bool {
	members := idx.Members(teamID)
	for _, e := range entries {
		if e.Type != KindEmployee {
			continue
		}
		for _, memberID := range members {
			if memberID == e.ID {
				return true
			}
		}
	}
	return false
}

// SelectAllVisible adds every listed employee that is not selected yet.
// Existing entries are kept.
func (s Selection) SelectAllVisible(visible []membership.Employee) Selection {
	entries := clone(s.Entries)
	present := idsOf(entries, KindEmployee)
	for _, employee := range visible {
		employeeID := string(employee.ID)
		if employeeID == "" {
			continue
		}
		if _, ok := present[employeeID]; ok {
			continue
		}
		present[employeeID] = struct{}{}
		entries = append(entries, Entry{Type: KindEmployee, ID: employeeID, Name: employee.Name})
	}
	return Selection{Entries: entries, ActiveTeam: s.ActiveTeam}
}

// DeselectAll clears the entries and the active team.
func (s Selection) DeselectAll() Selection {
	return Selection{Entries: []Entry{}}
}

// FocusTeam toggles the active team without changing the entries.
func (s Selection) FocusTeam(teamID string) Selection {
	next := s.copy()
	if next.ActiveTeam == teamID {
		next.ActiveTeam = ""
	} else {
		next.ActiveTeam = teamID
	}
	return next
}

// VisibleMembers lists the active team's members whose name contains search,
// case-insensitively, in employee catalog order.
func (s Selection) VisibleMembers(idx *membership.Index, search string) []membership.Employee {
	if s.ActiveTeam == "" {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(search))

	var out []membership.Employee
	for _, employee := range idx.Employees() {
		if !strings.Contains(strings.ToLower(employee.Name), needle) {
			continue
		}
		if idx.HasMember(s.ActiveTeam, string(employee.ID)) {
			out = append(out, employee)
		}
	}
	return out
}

// IsTeamSelected never reports the synthetic Unassigned team as selected.
func (s Selection) IsTeamSelected(teamID string) bool {
	if teamID == "" || teamID == membership.Unassigned {
		return false
	}
	return contains(s.Entries, KindTeam, teamID)
}

func (s Selection) IsEmployeeSelected(employeeID string) bool {
	return employeeID != "" && contains(s.Entries, KindEmployee, employeeID)
}

func (s Selection) copy() Selection {
	return Selection{Entries: clone(s.Entries), ActiveTeam: s.ActiveTeam}
}
