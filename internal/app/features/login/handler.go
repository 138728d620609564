// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - Login / login: The string users type to sign in (employee id or email)

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/ratelimit"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// invalidCredentials is the single message for every sign-in failure. Unknown
// identifier and wrong password must be indistinguishable to callers.
const invalidCredentials = "invalid credentials"

// dummyHash is compared against when the identifier resolves to no user, so
// lookup misses cost roughly the same as password misses.
var dummyHash = []byte("$2a$12$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy")

type Handler struct {
	Users   *userstore.Store
	Tokens  *auth.TokenManager
	Limiter *ratelimit.Limiter
	ErrLog  *httperr.ErrorLogger
	Log     *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	tokens *auth.TokenManager,
	limiter *ratelimit.Limiter,
	errLog *httperr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:   users,
		Tokens:  tokens,
		Limiter: limiter,
		ErrLog:  errLog,
		Log:     logger,
	}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	// Role is accepted for compatibility with older clients but has no
	// effect: the issued token always carries the stored role.
	Role string `json:"role"`
}

type loginResponse struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expires_at"`
	User      models.UserSummary `json:"user"`
}

// HandleLogin handles POST /auth/login.
//
// On success: 200 and
//
//	{ "token":"…", "expires_at":"…", "user":{…} }
//
// On any credential failure: 401 with the same body regardless of cause.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.Limiter != nil && !h.Limiter.Allow(ratelimit.ClientIP(r)) {
		h.Log.Warn("login rate limit exceeded", zap.String("ip", ratelimit.ClientIP(r)))
		httperr.WriteMessage(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode login body", err, "invalid request body")
		return
	}

	req.Login = strings.TrimSpace(req.Login)
	var missing []string
	if req.Login == "" {
		missing = append(missing, "login")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByLogin(ctx, req.Login)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		httperr.WriteMessage(w, http.StatusUnauthorized, invalidCredentials)
		return
	case err != nil:
		h.ErrLog.Internal(w, r, "DB find user for login", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		h.Log.Info("login failed", zap.String("user_id", u.ID.Hex()))
		httperr.WriteMessage(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	// req.Role is ignored: the token carries the role stored on the record.
	token, expiresAt, err := h.Tokens.Issue(u)
	if err != nil {
		h.ErrLog.Internal(w, r, "issue token", err)
		return
	}

	h.Log.Info("user logged in",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))

	httperr.WriteJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      u.Summary(),
	})
}
