package teams

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	teamstore "github.com/staffhub/staffhub/internal/app/store/teams"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/domain/models"
	"github.com/staffhub/staffhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func handlerFor(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()
	logger := zap.NewNop()
	store := teamstore.New(db, userstore.New(db))
	return NewHandler(store, httperr.NewErrorLogger(logger), logger)
}

func asUser(r *http.Request, u models.User) *http.Request {
	return auth.WithTestUser(r, &auth.Principal{
		ID:   u.ID.Hex(),
		Name: u.FullName,
		Role: u.Role,
	})
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	return bytes.NewReader(raw)
}

func TestCreateTeamPopulatesLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	leader := fx.CreateManager(ctx, "mgr-1", "lead@example.com")
	member := fx.CreateEmployee(ctx, "emp-1", "member@example.com")
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/teams", jsonBody(t, map[string]any{
		"name":       "Platform",
		"leader_id":  leader.ID.Hex(),
		"member_ids": []string{member.ID.Hex()},
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	var view models.TeamView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Leader == nil || view.Leader.ID != leader.ID {
		t.Errorf("leader not populated: %+v", view.Leader)
	}
	if len(view.Members) != 1 || view.Members[0].ID != member.ID {
		t.Errorf("members not populated: %+v", view.Members)
	}
}

func TestCreateTeamUnknownLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/teams", jsonBody(t, map[string]any{
		"name":      "Ghost Crew",
		"leader_id": primitive.NewObjectID().Hex(),
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for unresolvable leader (body %s)", rec.Code, rec.Body.String())
	}
}

func TestCreateTeamMissingFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/teams", jsonBody(t, map[string]any{}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

// Scoping: admin and hr see every team, leaders and members only their own.
func TestListTeamsScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	admin := fx.CreateAdmin(ctx, "adm-1", "admin@example.com")
	hr := fx.CreateUser(ctx, "hr-1", "HR Person", "hr@example.com", models.RoleHR, "pw")

	leadA := fx.CreateManager(ctx, "mgr-a", "lead-a@example.com")
	leadB := fx.CreateManager(ctx, "mgr-b", "lead-b@example.com")
	leadC := fx.CreateManager(ctx, "mgr-c", "lead-c@example.com")
	memA := fx.CreateEmployee(ctx, "emp-a", "mem-a@example.com")
	memB := fx.CreateEmployee(ctx, "emp-b", "mem-b@example.com")
	memC := fx.CreateEmployee(ctx, "emp-c", "mem-c@example.com")

	fx.CreateTeam(ctx, "Alpha", leadA.ID, memA.ID)
	fx.CreateTeam(ctx, "Beta", leadB.ID, memB.ID)
	fx.CreateTeam(ctx, "Gamma", leadC.ID, memC.ID)

	h := handlerFor(t, db)

	listAs := func(u models.User) []models.TeamView {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/teams", nil)
		rec := httptest.NewRecorder()
		h.HandleList(rec, asUser(req, u))
		if rec.Code != http.StatusOK {
			t.Fatalf("list as %s: status = %d (body %s)", u.Role, rec.Code, rec.Body.String())
		}
		var views []models.TeamView
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return views
	}

	if got := listAs(admin); len(got) != 3 {
		t.Errorf("admin sees %d teams, want 3", len(got))
	}
	if got := listAs(hr); len(got) != 3 {
		t.Errorf("hr sees %d teams, want 3", len(got))
	}
	if got := listAs(leadA); len(got) != 1 || got[0].Name != "Alpha" {
		t.Errorf("leader of Alpha sees %+v, want only Alpha", got)
	}
	if got := listAs(memB); len(got) != 1 || got[0].Name != "Beta" {
		t.Errorf("member of Beta sees %+v, want only Beta", got)
	}
	if got := listAs(memC); len(got) != 1 || got[0].Name != "Gamma" {
		t.Errorf("member of Gamma sees %+v, want only Gamma", got)
	}
}

func TestUpdateTeamPartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	leader := fx.CreateManager(ctx, "mgr-1", "lead@example.com")
	team := fx.CreateTeam(ctx, "Before", leader.ID)
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPut, "/teams/"+team.ID.Hex(),
		jsonBody(t, map[string]any{"name": "After"}))
	req = testutil.WithChiURLParam(req, "id", team.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var view models.TeamView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Name != "After" {
		t.Errorf("name = %q, want updated value", view.Name)
	}
	if view.LeaderID != leader.ID {
		t.Errorf("leader changed on partial update: %s", view.LeaderID.Hex())
	}
}

func TestDeleteTeamNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handlerFor(t, db)

	missing := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodDelete, "/teams/"+missing, nil)
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
