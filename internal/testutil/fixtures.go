package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given employee id, role, and
// password (hashed with the minimum bcrypt cost to keep tests fast).
func (f *Fixtures) CreateUser(ctx context.Context, employeeID, fullName, email, role, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash test password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		EmployeeID:   employeeID,
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   "Engineering",
		Designation:  "Staff",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, employeeID, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, employeeID, "Test Admin", email, models.RoleAdmin, "admin-pass")
}

// CreateEmployee creates a test employee user.
func (f *Fixtures) CreateEmployee(ctx context.Context, employeeID, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, employeeID, "Test Employee", email, models.RoleEmployee, "employee-pass")
}

// CreateManager creates a test manager user.
func (f *Fixtures) CreateManager(ctx context.Context, employeeID, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, employeeID, "Test Manager", email, models.RoleManager, "manager-pass")
}

// CreateTeam creates a test team with the given leader and members.
func (f *Fixtures) CreateTeam(ctx context.Context, name string, leaderID primitive.ObjectID, memberIDs ...primitive.ObjectID) models.Team {
	f.t.Helper()

	if memberIDs == nil {
		memberIDs = []primitive.ObjectID{}
	}
	now := time.Now().UTC()
	team := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		LeaderID:  leaderID,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("teams").InsertOne(ctx, team); err != nil {
		f.t.Fatalf("failed to create test team: %v", err)
	}
	return team
}

// CreateProject creates a test project managed by the given user.
func (f *Fixtures) CreateProject(ctx context.Context, name string, managerID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	project := models.Project{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		ManagerID: managerID,
		Status:    models.ProjectInProgress,
		Deadline:  "2026-12-01",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, project); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return project
}

// CreateTask creates a test task assigned to the given user.
func (f *Fixtures) CreateTask(ctx context.Context, title string, assignee primitive.ObjectID) models.Task {
	f.t.Helper()

	now := time.Now().UTC()
	task := models.Task{
		ID:         primitive.NewObjectID(),
		Title:      title,
		AssignedTo: assignee,
		Status:     models.TaskOpen,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("tasks").InsertOne(ctx, task); err != nil {
		f.t.Fatalf("failed to create test task: %v", err)
	}
	return task
}

// CreateAttendance creates one day's attendance for the given user.
func (f *Fixtures) CreateAttendance(ctx context.Context, userID primitive.ObjectID, date, status string) models.Attendance {
	f.t.Helper()

	now := time.Now().UTC()
	rec := models.Attendance{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Date:      date,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("attendance").InsertOne(ctx, rec); err != nil {
		f.t.Fatalf("failed to create test attendance: %v", err)
	}
	return rec
}

// CreateLeave creates a pending leave request for the given user.
func (f *Fixtures) CreateLeave(ctx context.Context, userID primitive.ObjectID, from, to string) models.Leave {
	f.t.Helper()

	now := time.Now().UTC()
	leave := models.Leave{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		FromDate:  from,
		ToDate:    to,
		Reason:    "personal",
		Status:    models.LeavePending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("leaves").InsertOne(ctx, leave); err != nil {
		f.t.Fatalf("failed to create test leave: %v", err)
	}
	return leave
}
