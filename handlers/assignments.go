package handlers

import (
	"log/slog"
	"net/http"

	"taskboard/assignment"
	"taskboard/ident"
	"taskboard/membership"
	"taskboard/service"
)

// AssignmentHandler exposes the assignment engine to the picker UI. Every
// call rebuilds the membership index from the current directory.
type AssignmentHandler struct {
	tasks  *service.TaskService
	logger *slog.Logger
}

func NewAssignmentHandler(tasks *service.TaskService, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{tasks: tasks, logger: logger}
}

type directoryTeam struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type directoryEmployee struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Teams []string `json:"teams"`
}

func (h *AssignmentHandler) Directory(w http.ResponseWriter, r *http.Request) {
	idx, err := h.tasks.Index(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}

	teams := make([]directoryTeam, 0)
	for _, t := range idx.Teams() {
		teams = append(teams, directoryTeam{ID: string(t.ID), Name: t.Name, Members: orEmpty(idx.Members(string(t.ID)))})
	}
	employees := make([]directoryEmployee, 0)
	for _, e := range idx.Employees() {
		employees = append(employees, directoryEmployee{ID: string(e.ID), Name: e.Name, Teams: orEmpty(idx.TeamsOf(string(e.ID)))})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"teams":     teams,
		"employees": employees,
	})
}

type normalizeRequest struct {
	Raw []any `json:"raw"`
}

func (h *AssignmentHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	idx, ok := h.prepare(w, r, &req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": assignment.Normalize(req.Raw, idx)})
}

type toggleRequest struct {
	Selection  assignment.Selection `json:"selection"`
	TeamID     ident.Ref            `json:"teamId"`
	EmployeeID ident.Ref            `json:"employeeId"`
	Search     string               `json:"search"`
}

func (h *AssignmentHandler) ToggleTeam(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	idx, ok := h.prepareToggle(w, r, &req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, req.Selection.ToggleTeam(req.TeamID.String(), idx))
}

func (h *AssignmentHandler) ToggleEmployee(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	idx, ok := h.prepareToggle(w, r, &req)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, req.Selection.ToggleEmployee(req.EmployeeID.String(), idx))
}

func (h *AssignmentHandler) SelectAll(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	idx, ok := h.prepareToggle(w, r, &req)
	if !ok {
		return
	}
	visible := req.Selection.VisibleMembers(idx, req.Search)
	writeJSON(w, http.StatusOK, req.Selection.SelectAllVisible(visible))
}

// prepareToggle normalizes the client's selection so entries such as
// {"type": "Team"} or bare ids match the typed entries the transitions add.
func (h *AssignmentHandler) prepareToggle(w http.ResponseWriter, r *http.Request, req *toggleRequest) (*membership.Index, bool) {
	idx, ok := h.prepare(w, r, req)
	if !ok {
		return nil, false
	}
	req.Selection.Entries = assignment.NormalizeEntries(req.Selection.Entries, idx)
	return idx, true
}

func (h *AssignmentHandler) DeselectAll(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, assignment.Selection{}.DeselectAll())
}

type displayRequest struct {
	Entries []any `json:"entries"`
}

func (h *AssignmentHandler) Display(w http.ResponseWriter, r *http.Request) {
	var req displayRequest
	idx, ok := h.prepare(w, r, &req)
	if !ok {
		return
	}
	entries := assignment.Normalize(req.Entries, idx)
	writeJSON(w, http.StatusOK, map[string]any{
		"display": assignment.Project(entries, idx),
		"labels":  orEmpty(assignment.Labels(entries, idx)),
	})
}

func (h *AssignmentHandler) prepare(w http.ResponseWriter, r *http.Request, req any) (*membership.Index, bool) {
	if err := decodeJSON(r, req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}
	idx, err := h.tasks.Index(r.Context())
	if err != nil {
		respondError(w, h.logger, err)
		return nil, false
	}
	return idx, true
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
