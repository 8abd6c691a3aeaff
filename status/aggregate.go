package status

import (
	"math"
	"strings"
	"time"
)

// Roles counted as individual contributors when collapsing assignee records.
const (
	RoleStaff    = "staff"
	RoleEmployee = "employee"
)

func isContributor(role string) bool {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case RoleStaff, RoleEmployee:
		return true
	}
	return false
}

type ChecklistItem struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Completed   bool       `json:"completed" yaml:"completed"`
	AssignedTo  string     `json:"assignedTo,omitempty" yaml:"assignedTo"`
	CreatedBy   string     `json:"createdBy,omitempty" yaml:"createdBy"`
	DueDate     *time.Time `json:"dueDate,omitempty" yaml:"dueDate"`
	CompletedBy string     `json:"completedBy,omitempty" yaml:"completedBy"`
	CompletedAt *time.Time `json:"completedAt,omitempty" yaml:"completedAt"`
}

type AssigneeStatus struct {
	User      string    `json:"user" yaml:"user"`
	Role      string    `json:"role" yaml:"role"`
	Status    string    `json:"status" yaml:"status"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`
}

// Task is the part of a task the aggregator reads.
type Task struct {
	ID               string           `json:"id" yaml:"id"`
	Checklist        []ChecklistItem  `json:"checklist" yaml:"checklist"`
	AssigneeStatuses []AssigneeStatus `json:"assigneeStatuses" yaml:"assigneeStatuses"`
	Status           string           `json:"status" yaml:"status"`
	Deadline         *time.Time       `json:"deadline,omitempty" yaml:"deadline"`
}

// Aggregate derives the canonical status of a task. The first rule that
// applies wins:
//
//  1. a non-empty checklist is done when every item is completed, else doing
//  2. per-assignee records: doing beats done beats todo
//  3. the stored status field, todo when unrecognized
func Aggregate(t Task) Status {
	if len(t.Checklist) > 0 {
		if Stats(t.Checklist).Completed == len(t.Checklist) {
			return Done
		}
		return Doing
	}
	if s, ok := fromAssignees(t.AssigneeStatuses); ok {
		return s
	}
	return Normalize(t.Status)
}

func fromAssignees(records []AssigneeStatus) (Status, bool) {
	latest := Latest(records)
	if len(latest) == 0 {
		return "", false
	}

	relevant := make([]AssigneeStatus, 0, len(latest))
	for _, r := range latest {
		if isContributor(r.Role) {
			relevant = append(relevant, r)
		}
	}
	if len(relevant) == 0 {
		relevant = latest
	}

	var seen [3]bool
	for _, r := range relevant {
		s, ok := Parse(r.Status)
		if !ok {
			continue
		}
		switch s {
		case Todo:
			seen[0] = true
		case Doing:
			seen[1] = true
		case Done:
			seen[2] = true
		}
	}
	switch {
	case seen[1]:
		return Doing, true
	case seen[2]:
		return Done, true
	case seen[0]:
		return Todo, true
	}
	return "", false
}

// Latest keeps one record per user, the one with the newest UpdatedAt.
// On equal timestamps the later record wins. Records without a user cannot
// be grouped and are kept as they are. Output follows the order in which
// users first appear.
func Latest(records []AssigneeStatus) []AssigneeStatus {
	pos := make(map[string]int, len(records))
	out := make([]AssigneeStatus, 0, len(records))
	for _, r := range records {
		if r.User == "" {
			out = append(out, r)
			continue
		}
		i, ok := pos[r.User]
		if !ok {
			pos[r.User] = len(out)
			out = append(out, r)
			continue
		}
		if !r.UpdatedAt.Before(out[i].UpdatedAt) {
			out[i] = r
		}
	}
	return out
}

// ChecklistStats summarizes checklist completion.
type ChecklistStats struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Percent   int `json:"percent"`
}

func Stats(items []ChecklistItem) ChecklistStats {
	stats := ChecklistStats{Total: len(items)}
	for _, item := range items {
		if item.Completed {
			stats.Completed++
		}
	}
	if stats.Total > 0 {
		stats.Percent = int(math.Round(float64(stats.Completed) * 100 / float64(stats.Total)))
	}
	return stats
}

// Presentation is the aggregated status plus display-only overlays.
type Presentation struct {
	Status  Status `json:"status"`
	Title   string `json:"title"`
	Overdue bool   `json:"overdue"`
}

// Present overlays the deadline on the aggregated status. An overdue task
// keeps its aggregated status; Overdue is for display only.
func Present(t Task, now time.Time) Presentation {
	s := Aggregate(t)
	return Presentation{
		Status:  s,
		Title:   s.Title(),
		Overdue: IsOverdue(s, t.Deadline, now),
	}
}

// IsOverdue reports whether a task that is not done is past its deadline.
func IsOverdue(s Status, deadline *time.Time, now time.Time) bool {
	if s == Done || deadline == nil || deadline.IsZero() {
		return false
	}
	return now.After(*deadline)
}

// MyStatus returns the user's own record status, falling back to the
// aggregate when the user has no record.
func MyStatus(t Task, userID string) Status {
	for _, r := range Latest(t.AssigneeStatuses) {
		if userID != "" && r.User == userID {
			return Normalize(r.Status)
		}
	}
	return Aggregate(t)
}

// SyncAssignees rebuilds the assignee records for a new set of employees.
// Existing records are kept with their status normalized; new employees
// start at todo. roles supplies the role of each employee; unknown roles
// default to staff.
func SyncAssignees(employeeIDs []string, existing []AssigneeStatus, roles map[string]string, now time.Time) []AssigneeStatus {
	current := make(map[string]AssigneeStatus)
	for _, r := range Latest(existing) {
		if r.User != "" {
			current[r.User] = r
		}
	}

	out := make([]AssigneeStatus, 0, len(employeeIDs))
	seen := make(map[string]struct{}, len(employeeIDs))
	for _, id := range employeeIDs {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		role := strings.ToLower(strings.TrimSpace(roles[id]))
		if role == "" {
			role = RoleStaff
		}
		record := AssigneeStatus{User: id, Role: role, Status: string(Todo), UpdatedAt: now}
		if prev, ok := current[id]; ok {
			record.Status = string(Normalize(prev.Status))
			if !prev.UpdatedAt.IsZero() {
				record.UpdatedAt = prev.UpdatedAt
			}
		}
		out = append(out, record)
	}
	return out
}

// SetAssignee records a status change for one user, returning a new slice.
// It reports false when the user has no record on the task.
func SetAssignee(records []AssigneeStatus, userID string, s Status, now time.Time) ([]AssigneeStatus, bool) {
	out := make([]AssigneeStatus, len(records))
	copy(out, records)
	found := false
	for i := range out {
		if out[i].User == userID {
			out[i].Status = string(s)
			out[i].UpdatedAt = now
			found = true
		}
	}
	return out, found
}
