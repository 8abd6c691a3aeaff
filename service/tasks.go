package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"taskboard/assignment"
	"taskboard/membership"
	"taskboard/models"
	"taskboard/status"
	"taskboard/store"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrInvalidStatus = errors.New("invalid status")
	ErrNotAssignee   = errors.New("not an assignee of this task")
)

// TaskView is a task as the dashboard shows it: the stored task plus
// everything derived by the engine.
type TaskView struct {
	ID             string                  `json:"id"`
	Name           string                  `json:"name"`
	Description    string                  `json:"description"`
	Status         status.Status           `json:"status"`
	StatusTitle    string                  `json:"status_title"`
	Overdue        bool                    `json:"overdue"`
	Priority       status.Priority         `json:"priority"`
	Deadline       *time.Time              `json:"deadline"`
	Assignments    []assignment.Entry      `json:"assignments"`
	Display        assignment.Display      `json:"display"`
	Assignees      []string                `json:"assignees"`
	Checklist      []models.ChecklistItem  `json:"checklist"`
	ChecklistStats status.ChecklistStats   `json:"checklist_stats"`
	Statuses       []models.AssigneeStatus `json:"assignee_statuses"`
	MyStatus       status.Status           `json:"my_status"`
	CanCollaborate bool                    `json:"can_collaborate"`
	labels         []string
}

// Progress is the checklist completion percentage shown in exports.
func (v TaskView) Progress() int {
	return v.ChecklistStats.Percent
}

type TaskService struct {
	store      store.Store
	logger     *slog.Logger
	reconciler *status.Reconciler
	now        func() time.Time
}

func NewTaskService(s store.Store, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	svc := &TaskService{store: s, logger: logger, now: time.Now}
	svc.reconciler = status.NewReconciler(func(ctx context.Context, taskID string, st status.Status) error {
		return s.UpdateTaskStatus(ctx, taskID, string(st))
	})
	return svc
}

// Directory loads every employee and team and builds the membership index.
func (s *TaskService) Directory(ctx context.Context) (*membership.Index, []models.Employee, error) {
	employees, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, nil, err
	}
	teams, err := s.store.ListTeams(ctx)
	if err != nil {
		return nil, nil, err
	}
	return models.Directory(employees, teams), employees, nil
}

func (s *TaskService) Index(ctx context.Context) (*membership.Index, error) {
	idx, _, err := s.Directory(ctx)
	return idx, err
}

func (s *TaskService) List(ctx context.Context, user *models.Employee) ([]TaskView, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]TaskView, len(tasks))
	for i := range tasks {
		views[i] = s.view(&tasks[i], user, idx)
	}
	return views, nil
}

// Get returns one task view. A stored status that disagrees with the
// aggregate is written back; a failed write is logged and retried on the
// next read.
func (s *TaskService) Get(ctx context.Context, user *models.Employee, taskID string) (*TaskView, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	s.writeBack(ctx, task)
	v := s.view(task, user, idx)
	return &v, nil
}

func (s *TaskService) writeBack(ctx context.Context, task *models.Task) {
	derived, wrote, err := s.reconciler.Reconcile(ctx, task.Snapshot())
	if err != nil {
		s.logger.Warn("status write-back failed", "task", task.ID, "status", derived, "error", err)
		return
	}
	if wrote {
		s.logger.Info("status written back", "task", task.ID, "from", task.Status, "to", derived)
		task.Status = string(derived)
	}
}

// UpdateAssignments replaces the task's assignment set with the normalized
// form of raw and rebuilds its assignee records. Only owners may do this.
func (s *TaskService) UpdateAssignments(ctx context.Context, user *models.Employee, taskID string, raw []any) (*TaskView, error) {
	if user == nil || !user.IsOwner() {
		return nil, fmt.Errorf("update assignments of task %s: %w", taskID, ErrForbidden)
	}
	idx, employees, err := s.Directory(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	entries := assignment.Normalize(raw, idx)
	resolved := assignment.Expand(entries, idx)
	roles := make(map[string]string, len(employees))
	for _, e := range employees {
		roles[e.ID] = string(e.Role)
	}
	records := status.SyncAssignees(resolved.All, models.StatusSnapshots(task.AssigneeStatuses), roles, s.now())

	err = s.store.ReplaceAssignments(ctx, taskID,
		models.NewAssignments(taskID, entries),
		models.NewAssigneeStatuses(taskID, records))
	if err != nil {
		return nil, err
	}
	s.logger.Info("assignments updated", "task", taskID, "by", user.ID,
		"teams", assignment.TeamIDs(entries), "employees", assignment.EmployeeIDs(entries), "assignees", len(resolved.All))
	return s.Get(ctx, user, taskID)
}

// DeleteTask removes a task. Only owners may do this.
func (s *TaskService) DeleteTask(ctx context.Context, user *models.Employee, taskID string) error {
	if user == nil || !user.IsOwner() {
		return fmt.Errorf("delete task %s: %w", taskID, ErrForbidden)
	}
	if err := s.store.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.reconciler.Forget(taskID)
	s.logger.Info("task deleted", "task", taskID, "by", user.ID)
	return nil
}

// ToggleChecklistItem flips one checklist item. Owners and assignees may do
// this; the new aggregate is written back.
func (s *TaskService) ToggleChecklistItem(ctx context.Context, user *models.Employee, taskID, itemID string) (*TaskView, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !CanCollaborate(user, task, idx) {
		return nil, fmt.Errorf("toggle checklist of task %s: %w", taskID, ErrForbidden)
	}

	var item *models.ChecklistItem
	for i := range task.Checklist {
		if task.Checklist[i].ID == itemID {
			item = &task.Checklist[i]
			break
		}
	}
	if item == nil {
		return nil, fmt.Errorf("checklist item %s: %w", itemID, store.ErrNotFound)
	}

	update := store.ChecklistUpdate{Completed: !item.Completed, By: user.ID, At: s.now()}
	if err := s.store.UpdateChecklistItem(ctx, taskID, itemID, update); err != nil {
		return nil, err
	}
	return s.Get(ctx, user, taskID)
}

// SetMyStatus records the caller's own progress on a task.
func (s *TaskService) SetMyStatus(ctx context.Context, user *models.Employee, taskID, raw string) (*TaskView, error) {
	st, ok := status.Parse(raw)
	if !ok {
		return nil, fmt.Errorf("%q: %w", raw, ErrInvalidStatus)
	}
	if user == nil {
		return nil, ErrForbidden
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	records, found := status.SetAssignee(models.StatusSnapshots(task.AssigneeStatuses), user.ID, st, s.now())
	if !found {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotAssignee)
	}
	if err := s.store.ReplaceAssigneeStatuses(ctx, taskID, models.NewAssigneeStatuses(taskID, records)); err != nil {
		return nil, err
	}
	return s.Get(ctx, user, taskID)
}

// ExportHeader lists the columns written by ExportRows.
var ExportHeader = []string{"Task Code", "Task Name", "Status", "Priority", "Assignees", "Progress (%)", "Deadline"}

// ExportRows returns one row per task for CSV export. Only owners may export.
func (s *TaskService) ExportRows(ctx context.Context, user *models.Employee) ([][]string, error) {
	if user == nil || !user.IsOwner() {
		return nil, fmt.Errorf("export tasks: %w", ErrForbidden)
	}
	views, err := s.List(ctx, user)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		deadline := "No deadline"
		if v.Deadline != nil {
			deadline = v.Deadline.Format("2006-01-02")
		}
		rows = append(rows, []string{
			v.ID,
			v.Name,
			string(v.Status),
			strings.ToUpper(string(v.Priority)),
			strings.Join(v.labels, "; "),
			fmt.Sprintf("%d", v.Progress()),
			deadline,
		})
	}
	return rows, nil
}

// CanCollaborate reports whether user may work on the task: owners always,
// everyone else only when assigned directly or through a team.
func CanCollaborate(user *models.Employee, task *models.Task, idx *membership.Index) bool {
	if user == nil {
		return false
	}
	if user.IsOwner() {
		return true
	}
	return assignment.Covers(task.Entries(), idx, user.ID)
}

func (s *TaskService) view(task *models.Task, user *models.Employee, idx *membership.Index) TaskView {
	snap := task.Snapshot()
	entries := task.Entries()
	presentation := status.Present(snap, s.now())

	v := TaskView{
		ID:             task.ID,
		Name:           task.Name,
		Description:    task.Description,
		Status:         presentation.Status,
		StatusTitle:    presentation.Title,
		Overdue:        presentation.Overdue,
		Priority:       status.NormalizePriority(task.Priority),
		Deadline:       task.Deadline,
		Assignments:    entries,
		Display:        assignment.Project(entries, idx),
		Assignees:      assignment.Expand(entries, idx).All,
		Checklist:      task.Checklist,
		ChecklistStats: status.Stats(snap.Checklist),
		Statuses:       task.AssigneeStatuses,
		MyStatus:       presentation.Status,
		labels:         assignment.Labels(entries, idx),
	}
	if user != nil {
		v.MyStatus = status.MyStatus(snap, user.ID)
		v.CanCollaborate = CanCollaborate(user, task, idx)
	}
	if v.Checklist == nil {
		v.Checklist = []models.ChecklistItem{}
	}
	if v.Statuses == nil {
		v.Statuses = []models.AssigneeStatus{}
	}
	return v
}
