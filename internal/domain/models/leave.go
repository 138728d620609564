// internal/domain/models/leave.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Leave is one employee's request for time off. New requests start pending;
// HR or an admin decides them.
type Leave struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	UserID   primitive.ObjectID `bson:"user_id" json:"user_id"`
	FromDate string             `bson:"from_date" json:"from_date"` // YYYY-MM-DD
	ToDate   string             `bson:"to_date" json:"to_date"`     // YYYY-MM-DD
	Reason   string             `bson:"reason,omitempty" json:"reason,omitempty"`
	Status   string             `bson:"status" json:"status"` // pending | approved | rejected

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// LeaveView is a leave request with its user reference populated.
type LeaveView struct {
	Leave `bson:",inline"`
	User  *UserSummary `json:"user,omitempty"`
}
