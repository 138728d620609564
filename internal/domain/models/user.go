// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents admins, managers, HR staff, and employees.
//
// Terminology: User Identifiers
//   - UserID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID / employee_id: The human-assigned string users type to log in
//
// EmployeeID and Email are unique across all users (enforced by indexes).
// PasswordHash is a bcrypt hash and is never serialized to JSON.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID   string             `bson:"employee_id" json:"employee_id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | manager | hr | employee

	Department  string `bson:"department,omitempty" json:"department,omitempty"`
	Designation string `bson:"designation,omitempty" json:"designation,omitempty"`
	Phone       string `bson:"phone,omitempty" json:"phone,omitempty"`
	JoinDate    string `bson:"join_date,omitempty" json:"join_date,omitempty"` // YYYY-MM-DD
	ImageRef    string `bson:"image_ref,omitempty" json:"image_ref,omitempty"` // storage key, not a URL

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Summary returns the display-ready projection of this user that other
// records embed when populating references.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		FullName:   u.FullName,
		Email:      u.Email,
		Role:       u.Role,
	}
}

// UserSummary is the populated form of a user reference (leader, member,
// manager, assignee). It carries only display fields.
type UserSummary struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	EmployeeID string             `bson:"employee_id" json:"employee_id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	Role       string             `bson:"role" json:"role"`
}
