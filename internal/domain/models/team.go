// internal/domain/models/team.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Team groups employees under one leader.
//
// NOTE:
//   - LeaderID must resolve to an existing user at creation time. This is
//     validated with a lookup, not a transaction; a user deleted later
//     leaves a dangling reference (no cascade).
type Team struct {
	ID        primitive.ObjectID   `bson:"_id" json:"id"`
	Name      string               `bson:"name" json:"name"`
	NameCI    string               `bson:"name_ci" json:"-"`
	LeaderID  primitive.ObjectID   `bson:"leader_id" json:"leader_id"`
	MemberIDs []primitive.ObjectID `bson:"member_ids" json:"member_ids"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TeamView is a team with its user references populated for display.
type TeamView struct {
	Team    `bson:",inline"`
	Leader  *UserSummary  `json:"leader,omitempty"`
	Members []UserSummary `json:"members"`
}
