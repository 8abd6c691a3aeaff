package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/membership"
	"taskboard/models"
)

// MemoryStore keeps everything in process. Records come back as copies, so
// callers may modify what they get.
type MemoryStore struct {
	mu        sync.RWMutex
	employees []models.Employee
	teams     []models.Team
	// edges holds team id -> member ids in insertion order
	edges map[string][]string
	tasks []models.Task
	seq   uint
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{edges: make(map[string][]string)}
}

func (s *MemoryStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	for _, existing := range s.employees {
		if existing.ID == e.ID || existing.Username == e.Username {
			return fmt.Errorf("employee %s: %w", e.Username, ErrExists)
		}
	}
	if e.Role == "" {
		e.Role = models.RoleStaff
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt

	stored := *e
	stored.Teams = nil
	s.employees = append(s.employees, stored)
	for _, t := range e.Teams {
		s.link(t.ID, e.ID)
	}
	return nil
}

func (s *MemoryStore) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := membership.ValidateTeamID(t.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	for _, existing := range s.teams {
		if existing.ID == t.ID || existing.Name == t.Name {
			return fmt.Errorf("team %s: %w", t.Name, ErrExists)
		}
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt

	stored := *t
	stored.Members = nil
	s.teams = append(s.teams, stored)
	for _, m := range t.Members {
		s.link(t.ID, m.ID)
	}
	return nil
}

func (s *MemoryStore) link(teamID, employeeID string) {
	for _, id := range s.edges[teamID] {
		if id == employeeID {
			return
		}
	}
	s.edges[teamID] = append(s.edges[teamID], employeeID)
}

func (s *MemoryStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Employee, len(s.employees))
	for i, e := range s.employees {
		out[i] = s.employeeWithTeams(e)
	}
	return out, nil
}

func (s *MemoryStore) ListTeams(ctx context.Context) ([]models.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Team, len(s.teams))
	for i, t := range s.teams {
		t.Members = nil
		for _, id := range s.edges[t.ID] {
			if e, ok := s.findEmployee(id); ok {
				t.Members = append(t.Members, e)
			}
		}
		out[i] = t
	}
	return out, nil
}

func (s *MemoryStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.findEmployee(id)
	if !ok {
		return nil, fmt.Errorf("employee %s: %w", id, ErrNotFound)
	}
	e = s.employeeWithTeams(e)
	return &e, nil
}

func (s *MemoryStore) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.employees {
		if e.Username == username {
			e = s.employeeWithTeams(e)
			return &e, nil
		}
	}
	return nil, fmt.Errorf("employee %s: %w", username, ErrNotFound)
}

func (s *MemoryStore) findEmployee(id string) (models.Employee, bool) {
	for _, e := range s.employees {
		if e.ID == id {
			return e, true
		}
	}
	return models.Employee{}, false
}

func (s *MemoryStore) employeeWithTeams(e models.Employee) models.Employee {
	e.Teams = nil
	for _, t := range s.teams {
		for _, id := range s.edges[t.ID] {
			if id == e.ID {
				team := t
				team.Members = nil
				e.Teams = append(e.Teams, team)
				break
			}
		}
	}
	return e
}

func (s *MemoryStore) CreateTask(ctx context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if _, ok := s.taskIndex(t.ID); ok {
		return fmt.Errorf("task %s: %w", t.ID, ErrExists)
	}
	if t.Status == "" {
		t.Status = "todo"
	}
	if t.Priority == "" {
		t.Priority = "Medium"
	}
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now
	for i := range t.Assignments {
		s.seq++
		t.Assignments[i].ID = s.seq
		t.Assignments[i].TaskID = t.ID
		t.Assignments[i].Position = i
	}
	for i := range t.Checklist {
		if t.Checklist[i].ID == "" {
			t.Checklist[i].ID = uuid.NewString()
		}
		t.Checklist[i].TaskID = t.ID
		t.Checklist[i].CreatedAt, t.Checklist[i].UpdatedAt = now, now
	}
	for i := range t.AssigneeStatuses {
		s.seq++
		t.AssigneeStatuses[i].ID = s.seq
		t.AssigneeStatuses[i].TaskID = t.ID
	}
	s.tasks = append(s.tasks, copyTask(*t))
	return nil
}

func (s *MemoryStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = copyTask(t)
	}
	return out, nil
}

func (s *MemoryStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.taskIndex(id)
	if !ok {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	t := copyTask(s.tasks[i])
	return &t, nil
}

func (s *MemoryStore) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	return s.updateTask(taskID, func(t *models.Task) error {
		t.Status = status
		return nil
	})
}

func (s *MemoryStore) ReplaceAssignments(ctx context.Context, taskID string, entries []models.TaskAssignment, statuses []models.AssigneeStatus) error {
	return s.updateTask(taskID, func(t *models.Task) error {
		t.Assignments = make([]models.TaskAssignment, len(entries))
		for i, e := range entries {
			s.seq++
			e.ID = s.seq
			e.TaskID = taskID
			t.Assignments[i] = e
		}
		t.AssigneeStatuses = s.renumber(taskID, statuses)
		return nil
	})
}

func (s *MemoryStore) ReplaceAssigneeStatuses(ctx context.Context, taskID string, statuses []models.AssigneeStatus) error {
	return s.updateTask(taskID, func(t *models.Task) error {
		t.AssigneeStatuses = s.renumber(taskID, statuses)
		return nil
	})
}

func (s *MemoryStore) UpdateChecklistItem(ctx context.Context, taskID, itemID string, u ChecklistUpdate) error {
	return s.updateTask(taskID, func(t *models.Task) error {
		for i := range t.Checklist {
			item := &t.Checklist[i]
			if item.ID != itemID {
				continue
			}
			item.Completed = u.Completed
			item.CompletedBy, item.CompletedAt = nil, nil
			if u.Completed {
				by, at := u.By, u.At
				item.CompletedBy, item.CompletedAt = &by, &at
			}
			item.UpdatedAt = time.Now()
			return nil
		}
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	})
}

func (s *MemoryStore) DeleteTask(ctx context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.taskIndex(taskID)
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return nil
}

func (s *MemoryStore) updateTask(taskID string, fn func(*models.Task) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.taskIndex(taskID)
	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	t := copyTask(s.tasks[i])
	if err := fn(&t); err != nil {
		return err
	}
	t.UpdatedAt = time.Now()
	s.tasks[i] = t
	return nil
}

func (s *MemoryStore) renumber(taskID string, statuses []models.AssigneeStatus) []models.AssigneeStatus {
	out := make([]models.AssigneeStatus, len(statuses))
	for i, r := range statuses {
		s.seq++
		r.ID = s.seq
		r.TaskID = taskID
		out[i] = r
	}
	return out
}

func (s *MemoryStore) taskIndex(id string) (int, bool) {
	for i, t := range s.tasks {
		if t.ID == id {
			return i, true
		}
	}
	return 0, false
}

func copyTask(t models.Task) models.Task {
	t.Assignments = append([]models.TaskAssignment(nil), t.Assignments...)
	t.AssigneeStatuses = append([]models.AssigneeStatus(nil), t.AssigneeStatuses...)
	checklist := make([]models.ChecklistItem, len(t.Checklist))
	for i, item := range t.Checklist {
		item.AssignedTo = copyString(item.AssignedTo)
		item.CompletedBy = copyString(item.CompletedBy)
		if item.CompletedAt != nil {
			at := *item.CompletedAt
			item.CompletedAt = &at
		}
		checklist[i] = item
	}
	if t.Checklist != nil {
		t.Checklist = checklist
	}
	return t
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

var _ Store = (*MemoryStore)(nil)
