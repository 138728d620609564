package attendance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	attendancestore "github.com/staffhub/staffhub/internal/app/store/attendance"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/app/system/indexes"
	"github.com/staffhub/staffhub/internal/domain/models"
	"github.com/staffhub/staffhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func handlerFor(t *testing.T, db *mongo.Database) *Handler {
	t.Helper()
	logger := zap.NewNop()
	store := attendancestore.New(db, userstore.New(db))
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

func TestEmployeeRecordsOwnDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	emp := fx.CreateEmployee(ctx, "emp-1", "own@example.com")
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/attendance", jsonBody(t, map[string]string{
		"date":   "2026-08-31",
		"status": "present",
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, asUser(req, emp))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}
	var view models.AttendanceView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.UserID != emp.ID {
		t.Errorf("record user = %s, want caller", view.UserID.Hex())
	}
}

func TestEmployeeCannotRecordForOthers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	emp := fx.CreateEmployee(ctx, "emp-1", "self@example.com")
	other := fx.CreateEmployee(ctx, "emp-2", "victim@example.com")
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/attendance", jsonBody(t, map[string]string{
		"user_id": other.ID.Hex(),
		"date":    "2026-08-31",
		"status":  "absent",
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, asUser(req, emp))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestDuplicateDayConflict(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Uniqueness comes from the (user_id, date) index.
	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensure indexes: %v", err)
	}

	fx := testutil.NewFixtures(t, db)
	hr := fx.CreateUser(ctx, "hr-1", "HR Person", "hr@example.com", models.RoleHR, "pw")
	emp := fx.CreateEmployee(ctx, "emp-1", "dup@example.com")
	h := handlerFor(t, db)

	body := map[string]string{
		"user_id": emp.ID.Hex(),
		"date":    "2026-08-30",
		"status":  "present",
	}

	req := httptest.NewRequest(http.MethodPost, "/attendance", jsonBody(t, body))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, asUser(req, hr))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first record status = %d, want 201 (body %s)", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, "/attendance", jsonBody(t, body))
	rec = httptest.NewRecorder()
	h.HandleCreate(rec, asUser(req, hr))
	if rec.Code != http.StatusConflict {
		t.Errorf("second record status = %d, want 409 (body %s)", rec.Code, rec.Body.String())
	}
}

func TestListAttendanceScoping(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	hr := fx.CreateUser(ctx, "hr-1", "HR Person", "hr@example.com", models.RoleHR, "pw")
	empA := fx.CreateEmployee(ctx, "emp-a", "a@example.com")
	empB := fx.CreateEmployee(ctx, "emp-b", "b@example.com")

	fx.CreateAttendance(ctx, empA.ID, "2026-08-28", models.AttendancePresent)
	fx.CreateAttendance(ctx, empA.ID, "2026-08-29", models.AttendanceAbsent)
	fx.CreateAttendance(ctx, empB.ID, "2026-08-29", models.AttendancePresent)

	h := handlerFor(t, db)

	listAs := func(u models.User) []models.AttendanceView {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/attendance", nil)
		rec := httptest.NewRecorder()
		h.HandleList(rec, asUser(req, u))
		if rec.Code != http.StatusOK {
			t.Fatalf("list as %s: status = %d", u.Role, rec.Code)
		}
		var views []models.AttendanceView
		if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
			t.Fatalf("decode list: %v", err)
		}
		return views
	}

	if got := listAs(hr); len(got) != 3 {
		t.Errorf("hr sees %d records, want 3", len(got))
	}
	if got := listAs(empA); len(got) != 2 {
		t.Errorf("employee A sees %d records, want 2", len(got))
	}
}

func TestCreateAttendanceBadStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, db)

	emp := fx.CreateEmployee(ctx, "emp-1", "bad@example.com")
	h := handlerFor(t, db)

	req := httptest.NewRequest(http.MethodPost, "/attendance", jsonBody(t, map[string]string{
		"date":   "2026-08-31",
		"status": "vacationing",
	}))
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, asUser(req, emp))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestDeleteAttendanceNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := handlerFor(t, db)

	missing := primitive.NewObjectID().Hex()
	req := httptest.NewRequest(http.MethodDelete, "/attendance/"+missing, nil)
	req = testutil.WithChiURLParam(req, "id", missing)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
