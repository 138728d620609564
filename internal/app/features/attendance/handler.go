// internal/app/features/attendance/handler.go
package attendance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	attendancestore "github.com/staffhub/staffhub/internal/app/store/attendance"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Attendance *attendancestore.Store
	ErrLog     *httperr.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(store *attendancestore.Store, errLog *httperr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Attendance: store, ErrLog: errLog, Log: logger}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "attendance record")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createRequest struct {
	UserID string `json:"user_id"`
	Date   string `json:"date"`
	Status string `json:"status"`
}

// HandleCreate handles POST /attendance. Admin and HR record for anyone;
// employees may record their own day (user_id omitted or equal to self).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "create attendance: no principal")
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create attendance body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.Date) == "" {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(req.Status) == "" {
		missing = append(missing, "status")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}
	if !models.IsValidAttendanceStatus(req.Status) {
		h.ErrLog.BadRequest(w, r, "create attendance: bad status", nil,
			`status must be one of "present", "absent", "leave"`)
		return
	}

	userID := callerID
	if req.UserID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			h.ErrLog.BadRequest(w, r, "create attendance: bad user_id", err, "user_id is not a valid id")
			return
		}
		userID = parsed
	}
	if userID != callerID && !authz.Can(role, authz.CapAttendanceManage) {
		h.ErrLog.Forbidden(w, r, "create attendance: not for self, no manage capability")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rec, err := h.Attendance.Create(ctx, models.Attendance{
		UserID: userID,
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		if errors.Is(err, attendancestore.ErrDuplicateDay) {
			h.ErrLog.Conflict(w, r, "create attendance: duplicate day", err,
				"attendance already recorded for this day")
			return
		}
		h.ErrLog.Internal(w, r, "DB create attendance", err)
		return
	}

	h.Log.Info("attendance recorded",
		zap.String("user_id", rec.UserID.Hex()),
		zap.String("date", rec.Date))

	views, err := h.Attendance.Views(ctx, []models.Attendance{rec})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate created attendance", err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, views[0])
}

// HandleList handles GET /attendance. Roles with the view-all capability
// see every record; employees only their own.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "list attendance: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		records []models.Attendance
		err     error
	)
	if authz.Can(role, authz.CapViewAllRecords) {
		records, err = h.Attendance.ListAll(ctx)
	} else {
		records, err = h.Attendance.ListForUser(ctx, userID)
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list attendance", err)
		return
	}

	views, err := h.Attendance.Views(ctx, records)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate attendance", err)
		return
	}
	if views == nil {
		views = []models.AttendanceView{}
	}
	httperr.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /attendance/{id}. Employees may only read their own
// record.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	role, _, callerID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "get attendance: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	rec, err := h.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, attendancestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "attendance record")
			return
		}
		h.ErrLog.Internal(w, r, "DB get attendance", err)
		return
	}
	if rec.UserID != callerID && !authz.Can(role, authz.CapViewAllRecords) {
		// Hidden, not forbidden: don't confirm the record exists.
		h.ErrLog.NotFound(w, r, "attendance record")
		return
	}

	views, err := h.Attendance.Views(ctx, []models.Attendance{*rec})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate attendance", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

type updateRequest struct {
	Date   *string `json:"date"`
	Status *string `json:"status"`
}

// HandleUpdate handles PUT /attendance/{id} (admin/hr, enforced by routes).
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update attendance body", err, "invalid request body")
		return
	}
	if req.Status != nil && !models.IsValidAttendanceStatus(*req.Status) {
		h.ErrLog.BadRequest(w, r, "update attendance: bad status", nil,
			`status must be one of "present", "absent", "leave"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rec, err := h.Attendance.Apply(ctx, id, attendancestore.Update{
		Date:   req.Date,
		Status: req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, attendancestore.ErrNotFound):
			h.ErrLog.NotFound(w, r, "attendance record")
		case errors.Is(err, attendancestore.ErrDuplicateDay):
			h.ErrLog.Conflict(w, r, "update attendance: duplicate day", err,
				"attendance already recorded for this day")
		default:
			h.ErrLog.Internal(w, r, "DB update attendance", err)
		}
		return
	}

	views, err := h.Attendance.Views(ctx, []models.Attendance{*rec})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate updated attendance", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

// HandleDelete handles DELETE /attendance/{id} (admin/hr, enforced by routes).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Attendance.Delete(ctx, id); err != nil {
		if errors.Is(err, attendancestore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "attendance record")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete attendance", err)
		return
	}

	h.Log.Info("attendance deleted", zap.String("attendance_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "attendance record deleted")
}
