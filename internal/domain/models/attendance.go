// internal/domain/models/attendance.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Attendance records one user's presence status for one day.
// The (user_id, date) pair is unique.
type Attendance struct {
	ID     primitive.ObjectID `bson:"_id" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Date   string             `bson:"date" json:"date"`     // YYYY-MM-DD
	Status string             `bson:"status" json:"status"` // present | absent | leave

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// AttendanceView is an attendance record with its user reference populated.
type AttendanceView struct {
	Attendance `bson:",inline"`
	User       *UserSummary `json:"user,omitempty"`
}
