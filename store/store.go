package store

import (
	"context"
	"errors"
	"time"

	"taskboard/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrExists   = errors.New("already exists")
)

// ChecklistUpdate marks a checklist item completed or open. By and At are
// recorded only when Completed is true.
type ChecklistUpdate struct {
	Completed bool
	By        string
	At        time.Time
}

type Store interface {
	CreateEmployee(ctx context.Context, e *models.Employee) error
	CreateTeam(ctx context.Context, t *models.Team) error
	// ListEmployees returns employees with their teams loaded.
	ListEmployees(ctx context.Context) ([]models.Employee, error)
	// ListTeams returns teams with their members loaded.
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetEmployee(ctx context.Context, id string) (*models.Employee, error)
	GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error)

	CreateTask(ctx context.Context, t *models.Task) error
	// ListTasks and GetTask return tasks with assignments, checklist and
	// assignee records loaded, assignments in stored order.
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id string) (*models.Task, error)
	UpdateTaskStatus(ctx context.Context, taskID, status string) error
	// ReplaceAssignments swaps the task's assignment set and assignee
	// records in one step.
	ReplaceAssignments(ctx context.Context, taskID string, entries []models.TaskAssignment, statuses []models.AssigneeStatus) error
	ReplaceAssigneeStatuses(ctx context.Context, taskID string, statuses []models.AssigneeStatus) error
	UpdateChecklistItem(ctx context.Context, taskID, itemID string, u ChecklistUpdate) error
	DeleteTask(ctx context.Context, taskID string) error
}
