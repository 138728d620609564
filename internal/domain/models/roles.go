// internal/domain/models/roles.go
package models

// Role values form a closed enumeration. Authorization decisions use the
// role stored on the user record, never a client-supplied value.
const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleHR       = "hr"
	RoleEmployee = "employee"
)

// AllRoles lists every valid role.
var AllRoles = []string{RoleAdmin, RoleManager, RoleHR, RoleEmployee}

// IsValidRole checks whether value is one of the closed role enumeration.
func IsValidRole(value string) bool {
	for _, r := range AllRoles {
		if r == value {
			return true
		}
	}
	return false
}

// Project status values.
const (
	ProjectInProgress = "in-progress"
	ProjectCompleted  = "completed"
	ProjectOnHold     = "on-hold"
)

// IsValidProjectStatus checks a project status against its enumeration.
func IsValidProjectStatus(value string) bool {
	switch value {
	case ProjectInProgress, ProjectCompleted, ProjectOnHold:
		return true
	}
	return false
}

// Task status values.
const (
	TaskOpen       = "open"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
)

// IsValidTaskStatus checks a task status against its enumeration.
func IsValidTaskStatus(value string) bool {
	switch value {
	case TaskOpen, TaskInProgress, TaskDone:
		return true
	}
	return false
}

// Attendance status values.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLeave   = "leave"
)

// IsValidAttendanceStatus checks an attendance status against its enumeration.
func IsValidAttendanceStatus(value string) bool {
	switch value {
	case AttendancePresent, AttendanceAbsent, AttendanceLeave:
		return true
	}
	return false
}

// Leave status values.
const (
	LeavePending  = "pending"
	LeaveApproved = "approved"
	LeaveRejected = "rejected"
)

// IsValidLeaveStatus checks a leave status against its enumeration.
func IsValidLeaveStatus(value string) bool {
	switch value {
	case LeavePending, LeaveApproved, LeaveRejected:
		return true
	}
	return false
}
