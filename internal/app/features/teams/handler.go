// internal/app/features/teams/handler.go
package teams

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	teamstore "github.com/staffhub/staffhub/internal/app/store/teams"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Teams  *teamstore.Store
	ErrLog *httperr.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(teams *teamstore.Store, errLog *httperr.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Teams: teams, ErrLog: errLog, Log: logger}
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.NotFound(w, r, "team")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseMemberIDs converts hex member ids, rejecting malformed entries.
func parseMemberIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, s := range raw {
		id, err := primitive.ObjectIDFromHex(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// seesAllTeams reports whether the role gets the unscoped team list.
// Managers only see teams they lead or belong to, same as employees.
func seesAllTeams(role string) bool {
	return role == models.RoleAdmin || role == models.RoleHR
}

type createRequest struct {
	Name      string   `json:"name"`
	LeaderID  string   `json:"leader_id"`
	MemberIDs []string `json:"member_ids"`
}

// HandleCreate handles POST /teams (admin only, enforced by routes).
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode create team body", err, "invalid request body")
		return
	}

	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.LeaderID) == "" {
		missing = append(missing, "leader_id")
	}
	if len(missing) > 0 {
		h.ErrLog.ValidationFailed(w, r, missing)
		return
	}

	leaderID, err := primitive.ObjectIDFromHex(req.LeaderID)
	if err != nil {
		h.ErrLog.BadRequest(w, r, "create team: bad leader_id", err, "leader_id is not a valid id")
		return
	}
	memberIDs, err := parseMemberIDs(req.MemberIDs)
	if err != nil {
		h.ErrLog.BadRequest(w, r, "create team: bad member id", err, "member_ids contains an invalid id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Teams.Create(ctx, req.Name, leaderID, memberIDs)
	if err != nil {
		if errors.Is(err, teamstore.ErrLeaderNotFound) {
			h.ErrLog.BadRequest(w, r, "create team: leader missing", err, "leader does not exist")
			return
		}
		h.ErrLog.Internal(w, r, "DB create team", err)
		return
	}

	h.Log.Info("team created",
		zap.String("team_id", team.ID.Hex()),
		zap.String("leader_id", team.LeaderID.Hex()))

	view, err := h.Teams.View(ctx, team)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate created team", err)
		return
	}
	httperr.WriteJSON(w, http.StatusCreated, view)
}

// HandleList handles GET /teams. Admin and HR see every team; everyone else
// only teams where they are the leader or a member.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Unauthorized(w, r, "list teams: no principal")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var (
		teams []models.Team
		err   error
	)
	if seesAllTeams(role) {
		teams, err = h.Teams.ListAll(ctx)
	} else {
		teams, err = h.Teams.ListForUser(ctx, userID)
	}
	if err != nil {
		h.ErrLog.Internal(w, r, "DB list teams", err)
		return
	}

	views, err := h.Teams.Views(ctx, teams)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate teams", err)
		return
	}
	if views == nil {
		views = []models.TeamView{}
	}
	httperr.WriteJSON(w, http.StatusOK, views)
}

// HandleGet handles GET /teams/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, teamstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "team")
			return
		}
		h.ErrLog.Internal(w, r, "DB get team", err)
		return
	}

	view, err := h.Teams.View(ctx, *team)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate team", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, view)
}

type updateRequest struct {
	Name      *string   `json:"name"`
	LeaderID  *string   `json:"leader_id"`
	MemberIDs *[]string `json:"member_ids"`
}

// HandleUpdate handles PUT /teams/{id} (admin only). Absent fields are left
// untouched.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.BadRequest(w, r, "decode update team body", err, "invalid request body")
		return
	}

	upd := teamstore.Update{Name: req.Name}
	if req.LeaderID != nil {
		leaderID, err := primitive.ObjectIDFromHex(*req.LeaderID)
		if err != nil {
			h.ErrLog.BadRequest(w, r, "update team: bad leader_id", err, "leader_id is not a valid id")
			return
		}
		upd.LeaderID = &leaderID
	}
	if req.MemberIDs != nil {
		memberIDs, err := parseMemberIDs(*req.MemberIDs)
		if err != nil {
			h.ErrLog.BadRequest(w, r, "update team: bad member id", err, "member_ids contains an invalid id")
			return
		}
		upd.MemberIDs = &memberIDs
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Teams.Apply(ctx, id, upd)
	if err != nil {
		switch {
		case errors.Is(err, teamstore.ErrNotFound):
			h.ErrLog.NotFound(w, r, "team")
		case errors.Is(err, teamstore.ErrLeaderNotFound):
			h.ErrLog.BadRequest(w, r, "update team: leader missing", err, "leader does not exist")
		default:
			h.ErrLog.Internal(w, r, "DB update team", err)
		}
		return
	}

	view, err := h.Teams.View(ctx, *team)
	if err != nil {
		h.ErrLog.Internal(w, r, "populate updated team", err)
		return
	}
	httperr.WriteJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /teams/{id} (admin only).
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Teams.Delete(ctx, id); err != nil {
		if errors.Is(err, teamstore.ErrNotFound) {
			h.ErrLog.NotFound(w, r, "team")
			return
		}
		h.ErrLog.Internal(w, r, "DB delete team", err)
		return
	}

	h.Log.Info("team deleted", zap.String("team_id", id.Hex()))
	httperr.WriteMessage(w, http.StatusOK, "team deleted")
}
