package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/ident"
	"taskboard/membership"
)

// Team members live in the team_members join table shared with
// Employee.Teams, so both sides of the relation read the same rows.
type Team struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Name      string     `gorm:"uniqueIndex;not null;size:100" json:"name"`
	Members   []Employee `gorm:"many2many:team_members;" json:"members,omitempty"`
}

// BeforeSave rejects the identifier reserved for the synthetic team.
func (t *Team) BeforeSave(tx *gorm.DB) error {
	return membership.ValidateTeamID(t.ID)
}

func (t *Team) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

func (t Team) RefID() string { return t.ID }

func (t *Team) Snapshot() membership.Team {
	members := make([]ident.Ref, 0, len(t.Members))
	for _, member := range t.Members {
		members = append(members, ident.Ref(member.ID))
	}
	return membership.Team{ID: ident.Ref(t.ID), Name: t.Name, Members: members}
}

// Directory builds the membership index from loaded employees and teams.
func Directory(employees []Employee, teams []Team) *membership.Index {
	emps := make([]membership.Employee, len(employees))
	for i := range employees {
		emps[i] = employees[i].Snapshot()
	}
	ts := make([]membership.Team, len(teams))
	for i := range teams {
		ts[i] = teams[i].Snapshot()
	}
	return membership.Build(emps, ts)
}
