// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	projectstore "github.com/staffhub/staffhub/internal/app/store/projects"
	"github.com/staffhub/staffhub/internal/app/system/htmlsanitize"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Projects *projectstore.Store
	ErrLog   *httperr.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(projects *projectstore.Store, errLog *httperr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, ErrLog: errLog, Log: logger}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "project")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

// HandleCreate handles POST /projects (admin/manager, enforced by routes).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create project body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.ManagerID) == "" {
		missing = append(missing, "manager_id")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	managerID, err := primitive.ObjectIDFromHex(req.ManagerID)
	if err != nil {
		h.ErrLog.BadRequest(w, r, "create project: bad manager_id", err, "manager_id is not a valid id")
		return
	}
	if req.Status != "" && !models.IsValidProjectStatus(req.Status) {
		h.ErrLog.BadRequest(w, r, "create project: bad status", nil,
			`status must be one of "in-progress", "completed", "on-hold"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.Create(ctx, models.Project{
		Name:        req.Name,
		Description: htmlsanitize.Strip(req.Description),
		ManagerID:   managerID,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.ErrLog.Internal(w, r, "DB create project", err)
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", p.ID.Hex()),
		zap.String("manager_id", p.ManagerID.Hex()))

	view, err := h.Projects.View(ctx, p)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate created project", err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /projects: every project, newest first, visible to
// any signed-in user.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	projects, err := h.Projects.ListAll(ctx)
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list projects", err)
		return
	}

	views, err := h.Projects.Views(ctx, projects)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate projects", err)
		return
	}
	if views == nil {
		views = []models.ProjectView{}
	}
	httperr.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /projects/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "project")
			return
		}
		h.ErrLog.Internal(w, r, "DB get project", err)
		return
	}

	view, err := h.Projects.View(ctx, *p)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate project", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, view)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
	Status      *string `json:"status"`
	Deadline    *string `json:"deadline"`
}

// HandleUpdate handles PUT /projects/{id} (admin/manager). Absent fields are
// left untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update project body", err, "invalid request body")
		return
	}

	upd := projectstore.Update{
		Name:     req.Name,
		Status:   req.Status,
		Deadline: req.Deadline,
	}
	if req.Description != nil {
		clean := htmlsanitize.Strip(*req.Description)
		upd.Description = &clean
	}
	if req.ManagerID != nil {
		managerID, err := primitive.ObjectIDFromHex(*req.ManagerID)
		if err != nil {
			h.ErrLog.BadRequest(w, r, "update project: bad manager_id", err, "manager_id is not a valid id")
			return
		}
		upd.ManagerID = &managerID
	}
	if req.Status != nil && !models.IsValidProjectStatus(*req.Status) {
		h.ErrLog.BadRequest(w, r, "update project: bad status", nil,
			`status must be one of "in-progress", "completed", "on-hold"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	p, err := h.Projects.Apply(ctx, id, upd)
	if err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "project")
			return
		}
		h.ErrLog.Internal(w, r, "DB update project", err)
		return
	}

	view, err := h.Projects.View(ctx, *p)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate updated project", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /projects/{id} (admin/manager).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Projects.Delete(ctx, id); err != nil {
		if errors.Is(err, projectstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "project")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete project", err)
		return
	}

	h.Log.Info("project deleted", zap.String("project_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "project deleted")
}
