package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"taskboard/models"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateEmployee(ctx context.Context, e *models.Employee) error {
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("create employee %s: %w", e.Username, err)
	}
	return nil
}

func (s *GormStore) CreateTeam(ctx context.Context, t *models.Team) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create team %s: %w", t.Name, err)
	}
	return nil
}

func (s *GormStore) ListEmployees(ctx context.Context) ([]models.Employee, error) {
	var employees []models.Employee
	err := s.db.WithContext(ctx).Preload("Teams").Order("created_at, id").Find(&employees).Error
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	return employees, nil
}

func (s *GormStore) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).Preload("Members").Order("created_at, id").Find(&teams).Error
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *GormStore) GetEmployee(ctx context.Context, id string) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).Preload("Teams").First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "employee "+id)
	}
	return &e, nil
}

func (s *GormStore) GetEmployeeByUsername(ctx context.Context, username string) (*models.Employee, error) {
	var e models.Employee
	if err := s.db.WithContext(ctx).Preload("Teams").Where("username = ?", username).First(&e).Error; err != nil {
		return nil, notFound(err, "employee "+username)
	}
	return &e, nil
}

func (s *GormStore) CreateTask(ctx context.Context, t *models.Task) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("create task %s: %w", t.Name, err)
	}
	return nil
}

func (s *GormStore) withTaskChildren(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Assignments", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Checklist", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("AssigneeStatuses", func(db *gorm.DB) *gorm.DB { return db.Order("id") })
}

func (s *GormStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := s.withTaskChildren(ctx).Order("created_at, id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *GormStore) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var t models.Task
	if err := s.withTaskChildren(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "task "+id)
	}
	return &t, nil
}

func (s *GormStore) UpdateTaskStatus(ctx context.Context, taskID, status string) error {
	result := s.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", taskID).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("update status of task %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return nil
}

func (s *GormStore) ReplaceAssignments(ctx context.Context, taskID string, entries []models.TaskAssignment, statuses []models.AssigneeStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := taskExists(tx, taskID); err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return fmt.Errorf("clear assignments of task %s: %w", taskID, err)
		}
		if len(entries) > 0 {
			for i := range entries {
				entries[i].ID = 0
				entries[i].TaskID = taskID
			}
			if err := tx.Create(&entries).Error; err != nil {
				return fmt.Errorf("save assignments of task %s: %w", taskID, err)
			}
		}
		return replaceStatuses(tx, taskID, statuses)
	})
}

func (s *GormStore) ReplaceAssigneeStatuses(ctx context.Context, taskID string, statuses []models.AssigneeStatus) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := taskExists(tx, taskID); err != nil {
			return err
		}
		return replaceStatuses(tx, taskID, statuses)
	})
}

func (s *GormStore) UpdateChecklistItem(ctx context.Context, taskID, itemID string, u ChecklistUpdate) error {
	updates := map[string]any{"completed": u.Completed, "completed_by": nil, "completed_at": nil}
	if u.Completed {
		updates["completed_by"] = u.By
		updates["completed_at"] = u.At
	}
	result := s.db.WithContext(ctx).Model(&models.ChecklistItem{}).
		Where("id = ? AND task_id = ?", itemID, taskID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("update checklist item %s: %w", itemID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("checklist item %s: %w", itemID, ErrNotFound)
	}
	return nil
}

// DeleteTask soft-deletes the task; its child rows stay behind unreferenced.
func (s *GormStore) DeleteTask(ctx context.Context, taskID string) error {
	result := s.db.WithContext(ctx).Where("id = ?", taskID).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("delete task %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return nil
}

func taskExists(tx *gorm.DB, taskID string) error {
	var count int64
	if err := tx.Model(&models.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
		return fmt.Errorf("look up task %s: %w", taskID, err)
	}
	if count == 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return nil
}

func replaceStatuses(tx *gorm.DB, taskID string, statuses []models.AssigneeStatus) error {
	if err := tx.Where("task_id = ?", taskID).Delete(&models.AssigneeStatus{}).Error; err != nil {
		return fmt.Errorf("clear assignee statuses of task %s: %w", taskID, err)
	}
	if len(statuses) == 0 {
		return nil
	}
	for i := range statuses {
		statuses[i].ID = 0
		statuses[i].TaskID = taskID
	}
	if err := tx.Create(&statuses).Error; err != nil {
		return fmt.Errorf("save assignee statuses of task %s: %w", taskID, err)
	}
	return nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("load %s: %w", what, err)
}

var _ Store = (*GormStore)(nil)
