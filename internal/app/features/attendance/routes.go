// internal/app/features/attendance/routes.go
package attendance

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

	// Employees may record their own day; the handler checks ownership.
	r.Post("/", h.HandleCreate)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireCapability(authz.CapAttendanceManage))
		r.Put("/{id}", h.HandleUpdate)
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}
