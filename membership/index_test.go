package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/ident"
)

func refs(ids ...string) []ident.Ref {
	out := make([]ident.Ref, len(ids))
	for i, id := range ids {
		out[i] = ident.Ref(id)
	}
	return out
}

func sampleIndex() *Index {
	employees := []Employee{
		{ID: "a", Name: "Ana", Teams: refs("t1")},
		{ID: "b", Name: "Bao", Teams: refs("t1", "t2")},
		{ID: "c", Name: "Chi", Teams: refs("t2")},
		{ID: "d", Name: "Duc"},
	}
	teams := []Team{
		{ID: "t1", Name: "Backend", Members: refs("a", "b")},
		{ID: "t2", Name: "Frontend", Members: refs("c")},
	}
	return Build(employees, teams)
}

func TestBuild_MutualInverse(t *testing.T) {
	idx := sampleIndex()

	// b is only listed on the employee side for t2, but both maps agree.
	assert.Equal(t, []string{"c", "b"}, idx.Members("t2"))
	assert.Equal(t, []string{"t1", "t2"}, idx.TeamsOf("b"))

	for _, team := range idx.Teams() {
		teamID := string(team.ID)
		for _, member := range idx.Members(teamID) {
			assert.Contains(t, idx.TeamsOf(member), teamID)
		}
	}
	for _, employee := range idx.Employees() {
		employeeID := string(employee.ID)
		for _, teamID := range idx.TeamsOf(employeeID) {
			assert.True(t, idx.HasMember(teamID, employeeID), "%s should list %s", teamID, employeeID)
		}
	}
}

func TestBuild_UnassignedTeam(t *testing.T) {
	idx := sampleIndex()

	assert.Equal(t, []string{Unassigned}, idx.TeamsOf("d"))
	assert.Equal(t, []string{"d"}, idx.Members(Unassigned))
	assert.True(t, idx.IsTeam(Unassigned))
	assert.Equal(t, UnassignedName, idx.TeamName(Unassigned))

	teams := idx.Teams()
	require.Len(t, teams, 3)
	assert.Equal(t, ident.Ref(Unassigned), teams[0].ID)
	assert.Equal(t, "Backend", idx.TeamName("t1"))
}

func TestBuild_NoUnassignedWhenEveryoneHasATeam(t *testing.T) {
	idx := Build(
		[]Employee{{ID: "a", Teams: refs("t1")}},
		[]Team{{ID: "t1", Name: "Ops"}},
	)
	assert.False(t, idx.IsTeam(Unassigned))
	assert.Len(t, idx.Teams(), 1)
}

func TestBuild_SkipsUnresolvedIDs(t *testing.T) {
	idx := Build(
		[]Employee{{ID: "", Name: "ghost"}, {ID: "a", Teams: refs("", "t1")}},
		[]Team{{ID: "", Name: "nameless"}, {ID: "t1", Members: refs("")}},
	)
	assert.Len(t, idx.Employees(), 1)
	assert.Len(t, idx.Teams(), 1)
	assert.Equal(t, []string{"a"}, idx.Members("t1"))
}

func TestCovered(t *testing.T) {
	idx := sampleIndex()
	selected := map[string]struct{}{"t2": {}}

	assert.True(t, idx.Covered("b", selected))
	assert.True(t, idx.Covered("c", selected))
	assert.False(t, idx.Covered("a", selected))
	assert.False(t, idx.Covered("d", map[string]struct{}{Unassigned: {}}))
}

func TestLookups(t *testing.T) {
	idx := sampleIndex()

	assert.True(t, idx.IsEmployee("a"))
	assert.False(t, idx.IsEmployee("t1"))
	assert.Equal(t, "Chi", idx.EmployeeName("c"))
	assert.Equal(t, "", idx.EmployeeName("zz"))

	employee, ok := idx.Employee("b")
	require.True(t, ok)
	assert.Equal(t, "Bao", employee.Name)

	var nilIdx *Index
	assert.Nil(t, nilIdx.Members("t1"))
	assert.False(t, nilIdx.IsTeam("t1"))
}

func TestValidateTeamID(t *testing.T) {
	assert.ErrorIs(t, ValidateTeamID("unassigned"), ErrReservedTeamID)
	assert.ErrorIs(t, ValidateTeamID(" Unassigned "), ErrReservedTeamID)
	assert.NoError(t, ValidateTeamID("t1"))
}
