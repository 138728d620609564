// internal/app/features/tasks/handler.go
package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	taskstore "github.com/staffhub/staffhub/internal/app/store/tasks"
	teamstore "github.com/staffhub/staffhub/internal/app/store/teams"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/htmlsanitize"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Tasks  *taskstore.Store
	Teams  *teamstore.Store
	Users  *userstore.Store
	ErrLog *httperr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(
	tasks *taskstore.Store,
	teams *teamstore.Store,
	users *userstore.Store,
	errLog *httperr.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	return &Handler{Tasks: tasks, Teams: teams, Users: users, ErrLog: errLog, Log: logger}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "task")
		return primitive.NilObjectID, false
	}
	return id, true
}

type createRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	AssignedTo  string `json:"assigned_to"`
	Status      string `json:"status"`
	Deadline    string `json:"deadline"`
}

// HandleCreate handles POST /tasks (admin/manager, enforced by routes).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create task body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(req.AssignedTo) == "" {
		missing = append(missing, "assigned_to")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	assignee, err := primitive.ObjectIDFromHex(req.AssignedTo)
	if err != nil {
		h.ErrLog.BadRequest(w, r, "create task: bad assigned_to", err, "assigned_to is not a valid id")
		return
	}
	if req.Status != "" && !models.IsValidTaskStatus(req.Status) {
		h.ErrLog.BadRequest(w, r, "create task: bad status", nil,
			`status must be one of "open", "in-progress", "done"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.Create(ctx, models.Task{
		Title:       req.Title,
		Description: htmlsanitize.Strip(req.Description),
		AssignedTo:  assignee,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.ErrLog.Internal(w, r, "DB create task", err)
		return
	}

	h.Log.Info("task created",
		zap.String("task_id", task.ID.Hex()),
		zap.String("assigned_to", task.AssignedTo.Hex()))

	views, err := h.Tasks.Views(ctx, []models.Task{task})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate created task", err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, views[0])
}

// HandleList handles GET /tasks. Roles with the view-all capability see
// every task; employees only tasks assigned to them.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "list tasks: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		tasks []models.Task
		err   error
	)
	if authz.Can(role, authz.CapViewAllRecords) {
		tasks, err = h.Tasks.ListAll(ctx)
	} else {
		tasks, err = h.Tasks.ListForUser(ctx, userID)
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list tasks", err)
		return
	}

	views, err := h.Tasks.Views(ctx, tasks)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate tasks", err)
		return
	}
	if views == nil {
		views = []models.TaskView{}
	}
	httperr.WriteJSON(w, http.StatusOK, views)
}

// HandleTeamMembers handles GET /tasks/team-members: the assignee choices
// for the caller. Admins get every staff member; managers get the members
// of the teams they lead.
func (h *Handler) HandleTeamMembers(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "team-members: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var members []models.UserSummary
	if role == models.RoleAdmin {
		staff, err := h.Users.ListStaff(ctx)
		if err != nil {
			h.ErrLog.Internal(w, r, "DB list staff", err)
			return
		}
		members = make([]models.UserSummary, 0, len(staff))
		for _, u := range staff {
			members = append(members, u.Summary())
		}
	} else {
		var err error
		members, err = h.Teams.MembersOfTeamsLedBy(ctx, userID)
		if err != nil {
			h.ErrLog.Internal(w, r, "DB list led team members", err)
			return
		}
	}

	if members == nil {
		members = []models.UserSummary{}
	}
	httperr.WriteJSON(w, http.StatusOK, members)
}

// HandleGet handles GET /tasks/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	task, err := h.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "task")
			return
		}
		h.ErrLog.Internal(w, r, "DB get task", err)
		return
	}

	views, err := h.Tasks.Views(ctx, []models.Task{*task})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate task", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

type updateRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assigned_to"`
	Status      *string `json:"status"`
	Deadline    *string `json:"deadline"`
}

// HandleUpdate handles PUT /tasks/{id} (admin/manager). Absent fields are
// left untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update task body", err, "invalid request body")
		return
	}

	upd := taskstore.Update{
		Title:    req.Title,
		Status:   req.Status,
		Deadline: req.Deadline,
	}
	if req.Description != nil {
		clean := htmlsanitize.Strip(*req.Description)
		upd.Description = &clean
	}
	if req.AssignedTo != nil {
		assignee, err := primitive.ObjectIDFromHex(*req.AssignedTo)
		if err != nil {
			h.ErrLog.BadRequest(w, r, "update task: bad assigned_to", err, "assigned_to is not a valid id")
			return
		}
		upd.AssignedTo = &assignee
	}
	if req.Status != nil && !models.IsValidTaskStatus(*req.Status) {
		h.ErrLog.BadRequest(w, r, "update task: bad status", nil,
			`status must be one of "open", "in-progress", "done"`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	task, err := h.Tasks.Apply(ctx, id, upd)
	if err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "task")
			return
		}
		h.ErrLog.Internal(w, r, "DB update task", err)
		return
	}

	views, err := h.Tasks.Views(ctx, []models.Task{*task})
	if err != nil || len(views) != 1 {
		h.ErrLog.Internal(w, r, "populate updated task", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, views[0])
}

// HandleDelete handles DELETE /tasks/{id} (admin/manager).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Tasks.Delete(ctx, id); err != nil {
		if errors.Is(err, taskstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "task")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete task", err)
		return
	}

	h.Log.Info("task deleted", zap.String("task_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "task deleted")
}
