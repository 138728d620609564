// internal/app/features/users/routes.go
package users

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

	// Self-or-admin checks live in the handlers.
	r.Put("/{id}", h.HandleUpdate)
	r.Post("/{id}/image-ref", h.HandleNewImageRef)

	r.Group(func(r chi.Router) {
		r.Use(authz.RequireCapability(authz.CapUsersManage))
		r.Post("/", h.HandleCreate)
		r.Delete("/{id}", h.HandleDelete)
	})

	return r
}
