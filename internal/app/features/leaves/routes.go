// internal/app/features/leaves/routes.go
package leaves

import (
	"github.com/go-chi/chi/v5"
	"github.com/staffhub/staffhub/internal/app/system/auth"
)

// Ownership and decision checks live in the handlers: employees file and
// withdraw their own requests, HR and admins decide them.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)

	return r
}
