// internal/app/features/me/routes.go
package me

import (
	"github.com/go-chi/chi/v5"
	"github.com/staffhub/staffhub/internal/app/system/auth"
)

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)
	r.Get("/", h.ServeMe)
	return r
}
