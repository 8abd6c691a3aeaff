// Package membership derives the team/employee relationships used by the
// assignment engine. The Index is rebuilt from full snapshots, never patched.
package membership

import (
	"errors"
	"strings"

	"taskboard/ident"
)

// Unassigned is the synthetic team grouping employees that belong to no team.
const Unassigned = "unassigned"

// UnassignedName is the display name of the synthetic team.
const UnassignedName = "Unassigned"

var ErrReservedTeamID = errors.New("team id \"unassigned\" is reserved")

// ValidateTeamID rejects identifiers a real team may not use.
func ValidateTeamID(id string) error {
	if strings.EqualFold(strings.TrimSpace(id), Unassigned) {
		return ErrReservedTeamID
	}
	return nil
}

type Employee struct {
	ID    ident.Ref   `json:"id" yaml:"id"`
	Name  string      `json:"name" yaml:"name"`
	Teams []ident.Ref `json:"teams" yaml:"teams"`
}

func (e Employee) RefID() string { return string(e.ID) }

type Team struct {
	ID      ident.Ref   `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Members []ident.Ref `json:"members" yaml:"members"`
}

func (t Team) RefID() string { return string(t.ID) }

// Index is the pair of mutually inverse mappings team -> members and
// employee -> teams, plus name lookups for both catalogs.
type Index struct {
	teamMembers   map[string]*idSet
	employeeTeams map[string]*idSet

	teams     []Team
	employees []Employee
	teamByID  map[string]int
	empByID   map[string]int
}

// Build derives an Index from the employee and team collections. Edges are
// taken from both team.Members and employee.Teams so the two mappings agree.
func Build(employees []Employee, teams []Team) *Index {
	idx := &Index{
		teamMembers:   make(map[string]*idSet),
		employeeTeams: make(map[string]*idSet),
		teamByID:      make(map[string]int),
		empByID:       make(map[string]int),
	}

	for _, team := range teams {
		teamID := string(team.ID)
		if teamID == "" {
			continue
		}
		if _, dup := idx.teamByID[teamID]; !dup {
			idx.teamByID[teamID] = len(idx.teams)
			idx.teams = append(idx.teams, team)
		}
		idx.members(teamID)
		for _, memberID := range ident.Refs(team.Members) {
			idx.link(teamID, memberID)
		}
	}

	for _, employee := range employees {
		employeeID := string(employee.ID)
		if employeeID == "" {
			continue
		}
		if _, dup := idx.empByID[employeeID]; !dup {
			idx.empByID[employeeID] = len(idx.employees)
			idx.employees = append(idx.employees, employee)
		}
		idx.teamsOf(employeeID)
		for _, teamID := range ident.Refs(employee.Teams) {
			idx.link(teamID, employeeID)
		}
	}

	var unassigned []Employee
	for _, employee := range idx.employees {
		employeeID := string(employee.ID)
		if idx.employeeTeams[employeeID].len() == 0 {
			idx.link(Unassigned, employeeID)
			unassigned = append(unassigned, employee)
		}
	}
	if len(unassigned) > 0 {
		members := make([]ident.Ref, 0, len(unassigned))
		for _, employee := range unassigned {
			members = append(members, employee.ID)
		}
		idx.teams = append([]Team{{ID: Unassigned, Name: UnassignedName, Members: members}}, idx.teams...)
		for id, pos := range idx.teamByID {
			idx.teamByID[id] = pos + 1
		}
		idx.teamByID[Unassigned] = 0
	}

	return idx
}

func (idx *Index) link(teamID, employeeID string) {
	if teamID == "" || employeeID == "" {
		return
	}
	idx.members(teamID).add(employeeID)
	idx.teamsOf(employeeID).add(teamID)
}

func (idx *Index) members(teamID string) *idSet {
	set, ok := idx.teamMembers[teamID]
	if !ok {
		set = newIDSet()
		idx.teamMembers[teamID] = set
	}
	return set
}

func (idx *Index) teamsOf(employeeID string) *idSet {
	set, ok := idx.employeeTeams[employeeID]
	if !ok {
		set = newIDSet()
		idx.employeeTeams[employeeID] = set
	}
	return set
}

// Members returns the member ids of a team in insertion order. When the team
// has no member set of its own, employees whose team set names it are used.
func (idx *Index) Members(teamID string) []string {
	if idx == nil {
		return nil
	}
	if set, ok := idx.teamMembers[teamID]; ok && set.len() > 0 {
		return set.list()
	}
	var out []string
	for _, employee := range idx.employees {
		employeeID := string(employee.ID)
		if idx.employeeTeams[employeeID].has(teamID) {
			out = append(out, employeeID)
		}
	}
	return out
}

// HasMember reports whether employeeID belongs to teamID.
func (idx *Index) HasMember(teamID, employeeID string) bool {
	if idx == nil {
		return false
	}
	return idx.teamMembers[teamID].has(employeeID)
}

// TeamsOf returns the team ids of an employee, including Unassigned for
// employees without a team.
func (idx *Index) TeamsOf(employeeID string) []string {
	if idx == nil {
		return nil
	}
	return idx.employeeTeams[employeeID].list()
}

// Covered reports whether the employee belongs to at least one of the given
// real teams. The synthetic Unassigned team never covers anyone.
func (idx *Index) Covered(employeeID string, selectedTeams map[string]struct{}) bool {
	if idx == nil {
		return false
	}
	for _, teamID := range idx.employeeTeams[employeeID].list() {
		if teamID == Unassigned {
			continue
		}
		if _, ok := selectedTeams[teamID]; ok {
			return true
		}
	}
	return false
}

// IsTeam reports whether id names a known team, synthetic Unassigned included.
func (idx *Index) IsTeam(id string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.teamByID[id]
	return ok
}

func (idx *Index) IsEmployee(id string) bool {
	if idx == nil {
		return false
	}
	_, ok := idx.empByID[id]
	return ok
}

func (idx *Index) TeamName(id string) string {
	if idx == nil {
		return ""
	}
	if pos, ok := idx.teamByID[id]; ok {
		return idx.teams[pos].Name
	}
	return ""
}

func (idx *Index) EmployeeName(id string) string {
	if idx == nil {
		return ""
	}
	if pos, ok := idx.empByID[id]; ok {
		return idx.employees[pos].Name
	}
	return ""
}

// Teams returns the team catalog with the synthetic Unassigned team first
// when any employee has no team.
func (idx *Index) Teams() []Team {
	if idx == nil {
		return nil
	}
	out := make([]Team, len(idx.teams))
	copy(out, idx.teams)
	return out
}

func (idx *Index) Employees() []Employee {
	if idx == nil {
		return nil
	}
	out := make([]Employee, len(idx.employees))
	copy(out, idx.employees)
	return out
}

// Employee looks up an employee by id.
func (idx *Index) Employee(id string) (Employee, bool) {
	if idx == nil {
		return Employee{}, false
	}
	pos, ok := idx.empByID[id]
	if !ok {
		return Employee{}, false
	}
	return idx.employees[pos], true
}

// idSet is a set of ids that remembers insertion order.
type idSet struct {
	order []string
	index map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{index: make(map[string]struct{})}
}

func (s *idSet) add(id string) {
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *idSet) has(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

func (s *idSet) len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *idSet) list() []string {
	if s == nil || len(s.order) == 0 {
		return nil
	}
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
