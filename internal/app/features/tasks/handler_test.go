package tasks

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	taskstore "github.com/staffhub/staffhub/internal/app/store/tasks"
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
	users := userstore.New(db)
	return NewHandler(
		taskstore.New(db, users),
		teamstore.New(db, users),
		users,
		httperr.NewErrorLogger(logger),
		logger,
	)
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

func TestCreateTaskPopulatesAssignee(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	emp := fx.CreateEmployee(ctx, "emp-1", "assignee@example.com")
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/tasks", jsonBody(t, map[string]string{
		"title":       "Write runbook",
		"assigned_to": emp.ID.Hex(),
		"deadline":    "2026-10-15",
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var view models.TaskView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Status != models.TaskOpen {
		t.Errorf("status = %q, want default %q", view.Status, models.TaskOpen)
	}
	if view.Assignee == nil || view.Assignee.ID != emp.ID {
		t.Errorf("assignee not populated: %+v", view.Assignee)
	}
}

func TestListTasksScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	mgr := fx.CreateManager(ctx, "mgr-1", "mgr@example.com")
	empA := fx.CreateEmployee(ctx, "emp-a", "a@example.com")
	empB := fx.CreateEmployee(ctx, "emp-b", "b@example.com")

	fx.CreateTask(ctx, "For A", empA.ID)
	fx.CreateTask(ctx, "Also for A", empA.ID)
	fx.CreateTask(ctx, "For B", empB.ID)

	h := handlerFor(t, db)

	listAs := func(u models.User) []models.TaskView {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
		rec := httptest.NewRecorder()
		h.HandleList(rec, asUser(req, u))
		if rec.Code != http.StatusOK {
			t.Fatalf("list as %s: status = %d", u.Role, rec.Code)
		}
		var views []models.TaskView
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return views
	}

	if got := listAs(mgr); len(got) != 3 {
		t.Errorf("manager sees %d tasks, want 3", len(got))
	}
	if got := listAs(empA); len(got) != 2 {
		t.Errorf("employee A sees %d tasks, want 2 (only assigned)", len(got))
	}
	if got := listAs(empB); len(got) != 1 {
		t.Errorf("employee B sees %d tasks, want 1", len(got))
	}
}

func TestTeamMembersForManager(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	mgr := fx.CreateManager(ctx, "mgr-1", "mgr@example.com")
	otherMgr := fx.CreateManager(ctx, "mgr-2", "other@example.com")
	mine := fx.CreateEmployee(ctx, "emp-mine", "mine@example.com")
	notMine := fx.CreateEmployee(ctx, "emp-other", "notmine@example.com")

	fx.CreateTeam(ctx, "Mine", mgr.ID, mine.ID)
	fx.CreateTeam(ctx, "Not Mine", otherMgr.ID, notMine.ID)

	h := handlerFor(t, db)
	req := httptest.NewRequest(http.MethodGet, "/tasks/team-members", nil)
	rec := httptest.NewRecorder()
	h.HandleTeamMembers(rec, asUser(req, mgr))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var members []models.UserSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &members); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(members) != 1 || members[0].ID != mine.ID {
		t.Errorf("members = %+v, want only the led team's member", members)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	emp := fx.CreateEmployee(ctx, "emp-1", "upd@example.com")
	task := fx.CreateTask(ctx, "Stays Titled", emp.ID)
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPut, "/tasks/"+task.ID.Hex(),
		jsonBody(t, map[string]string{"status": models.TaskDone}))
	req = testutil.WithChiURLParam(req, "id", task.ID.Hex())
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", rec.Code, rec.Body.String())
	}
	var view models.TaskView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Status != models.TaskDone {
		t.Errorf("status = %q, want %q", view.Status, models.TaskDone)
	}
	if view.Title != task.Title {
		t.Errorf("title changed on partial update: %q", view.Title)
	}
}

func TestDeleteTaskNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handlerFor(t, db)

	missing := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+missing, nil)
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
