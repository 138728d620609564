// internal/app/features/leaves/handler.go
package leaves

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	leavestore "github.com/staffhub/staffhub/internal/app/store/leaves"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/htmlsanitize"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Leaves *leavestore.Store
	ErrLog *httperr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(store *leavestore.Store, errLog *httperr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Leaves: store, ErrLog: errLog, Log: logger}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "leave request")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
	Reason   string `json:"reason"`
}

// HandleCreate handles POST /leaves. Requests are always filed for the
// caller and always start pending.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "create leave: no principal")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create leave body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.FromDate) == "" {
		missing = append(missing, "from_date")
	}
	if strings.TrimSpace(req.ToDate) == "" {
		missing = append(missing, "to_date")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	leave, err := h.Leaves.Create(ctx, models.Leave{
		UserID:   callerID,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Reason:   htmlsanitize.Strip(req.Reason),
	})
	if err != nil {
		h.ErrLog.Internal(w, r, "DB create leave", err)
		return
	}

	h.Log.Info("leave requested",
		zap.String("leave_id", leave.ID.Hex()),
		zap.String("user_id", leave.UserID.Hex()))

	views, err := h.Leaves.Views(ctx, []models.Leave{leave})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate created leave", err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, views[0])
}

// HandleList handles GET /leaves. Roles with the view-all capability see
// every request; employees only their own.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "list leaves: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		leaves []models.Leave
		err    error
	)
	if authz.Can(role, authz.CapViewAllRecords) {
		leaves, err = h.Leaves.ListAll(ctx)
	} else {
		leaves, err = h.Leaves.ListForUser(ctx, userID)
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list leaves", err)
		return
	}

	views, err := h.Leaves.Views(ctx, leaves)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate leaves", err)
		return
	}
	if views == nil {
		views = []models.LeaveView{}
	}
	httperr.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /leaves/{id}. Employees may only read their own.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "get leave: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	leave, err := h.Leaves.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leavestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		h.ErrLog.Internal(w, r, "DB get leave", err)
		return
	}
	if leave.UserID != callerID && !authz.Can(role, authz.CapViewAllRecords) {
		h.ErrLog.NotFound(w, r, "leave request")
		return
	}

	views, err := h.Leaves.Views(ctx, []models.Leave{*leave})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate leave", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

type updateRequest struct {
	FromDate *string `json:"from_date"`
	ToDate   *string `json:"to_date"`
	Reason   *string `json:"reason"`
	Status   *string `json:"status"`
}

// HandleUpdate handles PUT /leaves/{id}. Setting status is a decision and
// needs the leave.decide capability; owners may edit dates and reason while
// the request is still pending.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "update leave: no principal")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update leave body", err, "invalid request body")
		return
	}

	canDecide := authz.Can(role, authz.CapLeaveDecide)
	if req.Status != nil {
		if !canDecide {
			h.ErrLog.Forbidden(w, r, "update leave: status change without decide capability")
			return
		}
		if !models.IsValidLeaveStatus(*req.Status) {
			h.ErrLog.BadRequest(w, r, "update leave: bad status", nil,
				`status must be one of "pending", "approved", "rejected"`)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	existing, err := h.Leaves.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, leavestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		h.ErrLog.Internal(w, r, "DB get leave for update", err)
		return
	}
	if !canDecide {
		if existing.UserID != callerID {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		if existing.Status != models.LeavePending {
			h.ErrLog.Forbidden(w, r, "update leave: already decided")
			return
		}
	}

	upd := leavestore.Update{
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
		Status:   req.Status,
	}
	if req.Reason != nil {
		clean := htmlsanitize.Strip(*req.Reason)
		upd.Reason = &clean
	}

	leave, err := h.Leaves.Apply(ctx, id, upd)
	if err != nil {
		if errors.Is(err, leavestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		h.ErrLog.Internal(w, r, "DB update leave", err)
		return
	}

	if req.Status != nil {
		h.Log.Info("leave decided",
			zap.String("leave_id", leave.ID.Hex()),
			zap.String("status", leave.Status))
	}

	views, err := h.Leaves.Views(ctx, []models.Leave{*leave})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate updated leave", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

// HandleDelete handles DELETE /leaves/{id}. Owners may withdraw a pending
// request; deciders may remove any.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "delete leave: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if !authz.Can(role, authz.CapLeaveDecide) {
		existing, err := h.Leaves.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, leavestore.ErrNotFound) {
				h.ErrLog.NotFound(w, r, "leave request")
				return
			}
			h.ErrLog.Internal(w, r, "DB get leave for delete", err)
			return
		}
		if existing.UserID != callerID {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		if existing.Status != models.LeavePending {
			h.ErrLog.Forbidden(w, r, "delete leave: already decided")
			return
		}
	}

	if err := h.Leaves.Delete(ctx, id); err != nil {
		if errors.Is(err, leavestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "leave request")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete leave", err)
		return
	}

	h.Log.Info("leave deleted", zap.String("leave_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "leave request deleted")
}
