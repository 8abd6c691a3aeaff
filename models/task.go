package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskboard/assignment"
	"taskboard/status"
)

type Task struct {
	ID               string           `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"-"`
	Name             string           `gorm:"not null;size:200" json:"name"`
	Description      string           `gorm:"size:2000" json:"description"`
	Status           string           `gorm:"not null;size:32;default:todo" json:"status"`
	Priority         string           `gorm:"not null;size:20;default:Medium" json:"priority"`
	Deadline         *time.Time       `json:"deadline"`
	CreatedBy        string           `gorm:"size:64" json:"created_by"`
	Assignments      []TaskAssignment `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Checklist        []ChecklistItem  `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"checklist,omitempty"`
	AssigneeStatuses []AssigneeStatus `gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE" json:"assignee_statuses,omitempty"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TaskAssignment is one persisted assignment entry. Position keeps the
// order the entries were chosen in.
type TaskAssignment struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	TaskID   string `gorm:"not null;index;size:64" json:"-"`
	Position int    `gorm:"not null" json:"-"`
	Type     string `gorm:"not null;size:16" json:"type"`
	RefID    string `gorm:"not null;size:64" json:"id"`
	Name     string `gorm:"size:200" json:"name"`
}

type ChecklistItem struct {
	ID          string     `gorm:"primaryKey;size:64" json:"id"`
	TaskID      string     `gorm:"not null;index;size:64" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Title       string     `gorm:"not null;size:500" json:"title"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	AssignedTo  *string    `gorm:"size:64" json:"assigned_to"`
	CreatedBy   string     `gorm:"size:64" json:"created_by"`
	DueDate     *time.Time `json:"due_date"`
	CompletedBy *string    `gorm:"size:64" json:"completed_by"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (c *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// AssigneeStatus is one employee's own progress on a task. StatusAt is set
// by the application, not by gorm, so collapsing by latest record stays
// meaningful.
type AssigneeStatus struct {
	ID       uint      `gorm:"primaryKey" json:"-"`
	TaskID   string    `gorm:"not null;index;size:64" json:"-"`
	UserID   string    `gorm:"not null;size:64" json:"user"`
	Role     string    `gorm:"not null;size:20;default:staff" json:"role"`
	Status   string    `gorm:"not null;size:32;default:todo" json:"status"`
	StatusAt time.Time `json:"updated_at"`
}

// Entries returns the task's assignment set in stored order.
func (t *Task) Entries() []assignment.Entry {
	out := make([]assignment.Entry, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		kind, ok := assignment.ParseKind(a.Type)
		if !ok {
			kind = assignment.KindEmployee
		}
		out = append(out, assignment.Entry{Type: kind, ID: a.RefID, Name: a.Name})
	}
	return out
}

// Snapshot converts the task to the form the status aggregator reads.
func (t *Task) Snapshot() status.Task {
	checklist := make([]status.ChecklistItem, len(t.Checklist))
	for i, item := range t.Checklist {
		checklist[i] = status.ChecklistItem{
			ID:          item.ID,
			Title:       item.Title,
			Completed:   item.Completed,
			AssignedTo:  deref(item.AssignedTo),
			CreatedBy:   item.CreatedBy,
			DueDate:     item.DueDate,
			CompletedBy: deref(item.CompletedBy),
			CompletedAt: item.CompletedAt,
		}
	}
	return status.Task{
		ID:               t.ID,
		Checklist:        checklist,
		AssigneeStatuses: StatusSnapshots(t.AssigneeStatuses),
		Status:           t.Status,
		Deadline:         t.Deadline,
	}
}

func StatusSnapshots(records []AssigneeStatus) []status.AssigneeStatus {
	out := make([]status.AssigneeStatus, len(records))
	for i, r := range records {
		out[i] = status.AssigneeStatus{User: r.UserID, Role: r.Role, Status: r.Status, UpdatedAt: r.StatusAt}
	}
	return out
}

// NewAssignments converts an assignment set into rows for taskID.
func NewAssignments(taskID string, entries []assignment.Entry) []TaskAssignment {
	out := make([]TaskAssignment, len(entries))
	for i, e := range entries {
		out[i] = TaskAssignment{TaskID: taskID, Position: i, Type: string(e.Type), RefID: e.ID, Name: e.Name}
	}
	return out
}

// NewAssigneeStatuses converts status records into rows for taskID.
func NewAssigneeStatuses(taskID string, records []status.AssigneeStatus) []AssigneeStatus {
	out := make([]AssigneeStatus, len(records))
	for i, r := range records {
		out[i] = AssigneeStatus{TaskID: taskID, UserID: r.User, Role: r.Role, Status: r.Status, StatusAt: r.UpdatedAt}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
