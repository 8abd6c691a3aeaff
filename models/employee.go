package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/ident"
	"taskboard/membership"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
)

// ParseRole maps free-form role text onto a known role, defaulting to staff.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleManager:
		return RoleManager
	}
	return RoleStaff
}

type Employee struct {
	ID           string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Username     string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Name         string         `gorm:"not null;size:200" json:"name"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         Role           `gorm:"not null;size:20;default:staff" json:"role"`
	Teams        []Team         `gorm:"many2many:team_members;" json:"teams,omitempty"`
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

func (e *Employee) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Username
}

// IsOwner reports owner-level permissions: admins and managers manage every
// task regardless of assignment.
func (e *Employee) IsOwner() bool {
	return e.Role == RoleAdmin || e.Role == RoleManager
}

func (e Employee) RefID() string { return e.ID }

// Snapshot converts the employee to the form the membership index reads.
func (e *Employee) Snapshot() membership.Employee {
	teams := make([]ident.Ref, 0, len(e.Teams))
	for _, team := range e.Teams {
		teams = append(teams, ident.Ref(team.ID))
	}
	return membership.Employee{ID: ident.Ref(e.ID), Name: e.DisplayName(), Teams: teams}
}
