// internal/app/features/users/handler.go
package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
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

// parseID reads the {id} URL parameter. Malformed ids read the same as
// missing records: 404.
func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "user")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createRequest struct {
	EmployeeID  string `json:"employee_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Department  string `json:"department"`
	Designation string `json:"designation"`
	Phone       string `json:"phone"`
	JoinDate    string `json:"join_date"`
	ImageRef    string `json:"image_ref"`
}

// HandleCreate handles POST /users (admin only, enforced by routes).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create user body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.EmployeeID) == "" {
		missing = append(missing, "employee_id")
	}
	if strings.TrimSpace(req.FullName) == "" {
		missing = append(missing, "full_name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if strings.TrimSpace(req.Role) == "" {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	if !models.IsValidRole(normalize.Role(req.Role)) {
		h.ErrLog.BadRequest(w, r, "create user: bad role", nil,
			`role must be one of "admin", "manager", "hr", "employee"`)
		return
	}
	if req.ImageRef != "" {
		if _, err := uuid.Parse(req.ImageRef); err != nil {
			h.ErrLog.BadRequest(w, r, "create user: bad image_ref", err, "image_ref must be a valid uuid")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		EmployeeID:  req.EmployeeID,
		FullName:    req.FullName,
		Email:       req.Email,
		Role:        req.Role,
		Department:  req.Department,
		Designation: req.Designation,
		Phone:       req.Phone,
		JoinDate:    req.JoinDate,
		ImageRef:    req.ImageRef,
	}, req.Password)
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicate) {
			h.ErrLog.Conflict(w, r, "create user: duplicate", err,
				"a user with this employee id or email already exists")
			return
		}
		h.ErrLog.Internal(w, r, "DB create user", err)
		return
	}

	h.Log.Info("user created",
		zap.String("user_id", u.ID.Hex()),
		zap.String("role", u.Role))

	httperr.WriteJSON(w, http.StatusCreated, u)
}

// HandleList handles GET /users: every non-admin user, sorted by name.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	staff, err := h.Users.ListStaff(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list users", err)
		return
	}
	if staff == nil {
		staff = []models.User{}
	}
	httperr.WriteJSON(w, http.StatusOK, staff)
}

// HandleGet handles GET /users/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "user")
			return
		}
		h.ErrLog.Internal(w, r, "DB get user", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, u)
}

type updateRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	Role        *string `json:"role"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
	Phone       *string `json:"phone"`
	JoinDate    *string `json:"join_date"`
	ImageRef    *string `json:"image_ref"`
	Password    *string `json:"password"`
}

// HandleUpdate handles PUT /users/{id}. Admins may update anyone; everyone
// else only their own profile, and never their own role. Absent fields are
// left untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "update user: no principal")
		return
	}
	isAdmin := authz.Can(role, authz.CapUsersManage)
	if !isAdmin && callerID != id {
		h.ErrLog.Forbidden(w, r, "update user: not admin, not self")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update user body", err, "invalid request body")
		return
	}

	if req.Role != nil {
		if !isAdmin {
			h.ErrLog.Forbidden(w, r, "update user: role change by non-admin")
			return
		}
		if !models.IsValidRole(normalize.Role(*req.Role)) {
			h.ErrLog.BadRequest(w, r, "update user: bad role", nil,
				`role must be one of "admin", "manager", "hr", "employee"`)
			return
		}
	}
	if req.ImageRef != nil && *req.ImageRef != "" {
		if _, err := uuid.Parse(*req.ImageRef); err != nil {
			h.ErrLog.BadRequest(w, r, "update user: bad image_ref", err, "image_ref must be a valid uuid")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Apply(ctx, id, userstore.Update{
		FullName:    req.FullName,
		Email:       req.Email,
		Role:        req.Role,
		Department:  req.Department,
		Designation: req.Designation,
		Phone:       req.Phone,
		JoinDate:    req.JoinDate,
		ImageRef:    req.ImageRef,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrNotFound):
			h.ErrLog.NotFound(w, r, "user")
		case errors.Is(err, userstore.ErrDuplicate):
			h.ErrLog.Conflict(w, r, "update user: duplicate", err,
				"a user with this employee id or email already exists")
		default:
			h.ErrLog.Internal(w, r, "DB update user", err)
		}
		return
	}

	httperr.WriteJSON(w, http.StatusOK, u)
}

// HandleDelete handles DELETE /users/{id} (admin only, enforced by routes).
// No cascade: teams and tasks keep their now-dangling references.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "user")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete user", err)
		return
	}

	h.Log.Info("user deleted", zap.String("user_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "user deleted")
}

// HandleNewImageRef handles POST /users/{id}/image-ref: allocates a fresh
// storage key for a profile image and stores it on the record. The upload
// itself happens elsewhere; only the key lives here.
func (h *Handler) HandleNewImageRef(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "image-ref: no principal")
		return
	}
	if !authz.Can(role, authz.CapUsersManage) && callerID != id {
		h.ErrLog.Forbidden(w, r, "image-ref: not admin, not self")
		return
	}

	ref := uuid.NewString()

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Apply(ctx, id, userstore.Update{ImageRef: &ref})
	if err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "user")
			return
		}
		h.ErrLog.Internal(w, r, "DB set image ref", err)
		return
	}

	httperr.WriteJSON(w, http.StatusOK, map[string]string{"image_ref": u.ImageRef})
}
