package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"taskboard/middleware"
	"taskboard/models"
)

// NewRouter mounts every route. lookup resolves the employee behind a token.
func NewRouter(auth *AuthHandler, assignments *AssignmentHandler, tasks *TaskHandler, lookup middleware.UserLookup) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	router.Post("/login", auth.Login)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware(lookup))

		r.Post("/logout", auth.Logout)

		r.Route("/api", func(r chi.Router) {
			r.Get("/me", auth.Me)
			r.Get("/directory", assignments.Directory)

			r.Route("/assignments", func(r chi.Router) {
				r.Post("/normalize", assignments.Normalize)
				r.Post("/toggle-team", assignments.ToggleTeam)
				r.Post("/toggle-employee", assignments.ToggleEmployee)
				r.Post("/select-all", assignments.SelectAll)
				r.Post("/deselect-all", assignments.DeselectAll)
				r.Post("/display", assignments.Display)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", tasks.List)
				r.Get("/{id}", tasks.Get)
				r.Post("/{id}/checklist/{itemID}/toggle", tasks.ToggleChecklistItem)
				r.Put("/{id}/my-status", tasks.SetMyStatus)

				// Admin and manager only routes
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
					r.Get("/export.csv", tasks.ExportCSV)
					r.Put("/{id}/assignments", tasks.UpdateAssignments)
					r.Delete("/{id}", tasks.Delete)
				})
			})
		})
	})

	return router
}
