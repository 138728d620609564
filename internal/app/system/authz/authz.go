// internal/app/system/authz/authz.go

// Package authz holds the static capability table: one mapping from role to
// permitted operations, consulted by route middleware and handlers alike.
// Any presentation layer deciding what to show a role should consult the
// same table through Can.
package authz

import (
	"net/http"
	"strings"

	"github.com/staffhub/staffhub/internal/app/system/auth"
	"github.com/staffhub/staffhub/internal/app/system/httperr"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Capability names one guarded operation.
type Capability string

const (
	CapUsersManage      Capability = "users.manage"      // create/update/delete user records
	CapTeamsManage      Capability = "teams.manage"      // create/update/delete teams
	CapProjectsManage   Capability = "projects.manage"   // create/update/delete projects
	CapTasksManage      Capability = "tasks.manage"      // create/update/delete tasks
	CapAttendanceManage Capability = "attendance.manage" // record/update attendance for others
	CapLeaveDecide      Capability = "leave.decide"      // approve or reject leave requests
	CapViewAllRecords   Capability = "records.view_all"  // unscoped lists for teams/tasks/attendance/leave
)

type capset map[Capability]struct{}

func caps(list ...Capability) capset {
	s := make(capset, len(list))
	for _, c := range list {
		s[c] = struct{}{}
	}
	return s
}

// table is the single source of truth for role permissions.
var table = map[string]capset{
	models.RoleAdmin: caps(
		CapUsersManage, CapTeamsManage, CapProjectsManage,
		CapTasksManage, CapAttendanceManage, CapLeaveDecide, CapViewAllRecords,
	),
	models.RoleManager: caps(
		CapProjectsManage, CapTasksManage, CapViewAllRecords,
	),
	models.RoleHR: caps(
		CapAttendanceManage, CapLeaveDecide, CapViewAllRecords,
	),
	models.RoleEmployee: caps(),
}

// Can reports whether the given role holds the capability. Unknown roles
// hold nothing (fail closed).
func Can(role string, c Capability) bool {
	s, ok := table[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		return false
	}
	_, has := s[c]
	return has
}

// RequireCapability is route middleware over the capability table.
// Not signed in → 401; signed in without the capability → 403.
func RequireCapability(c Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := auth.CurrentUser(r)
			if !ok {
				httperr.WriteMessage(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !Can(p.Role, c) {
				httperr.WriteMessage(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserCtx returns the principal's role (lowercased), name, Mongo ObjectID,
// and a found flag. Malformed IDs fail closed: callers can trust that
// ok=true means an authenticated principal with a valid ObjectID.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	p, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(p.ID)
	if err != nil {
		return "", "", primitive.NilObjectID, false
	}
	return strings.ToLower(p.Role), p.Name, userID, true
}

// IsAdmin reports whether the current request's principal is an admin.
func IsAdmin(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == models.RoleAdmin
}

// CanViewAll reports whether the current principal sees unscoped lists.
func CanViewAll(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && Can(role, CapViewAllRecords)
}
