// internal/app/features/tasks/routes.go
package tasks

import (
	"github.com/go-chi/chi/v5"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/authz"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireCapability(authz.CapTasksManage))
		r.Get("/team-members", h.HandleTeamMembers)
		r.Post("/", h.HandleCreate)
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}
