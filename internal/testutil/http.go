package testutil

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// WithChiURLParam returns a copy of the request carrying a chi route
// context with the given URL parameter set, so handlers that read
// chi.URLParam can be exercised without a router.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
