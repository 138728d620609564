// internal/app/features/me/handler.go
package me

import (
	"context"
	"errors"
	"net/http"

	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Users  *userstore.Store
	ErrLog *httperr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *httperr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, Log: logger}
}

// ServeMe handles GET /me: the full user record behind the current token.
// Token claims are a snapshot from login time; clients call this to pick up
// profile fields and any role change since the token was issued.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "me: no principal in context")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			// Token outlived the account.
			h.ErrLog.Unauthorized(w, r, "me: user record gone")
			return
		}
		h.ErrLog.Internal(w, r, "DB load current user", err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, u)
}
