// internal/domain/models/project.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project tracks one project under a manager.
// Deleting the referenced manager does not cascade to projects.
type Project struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	ManagerID   primitive.ObjectID `bson:"manager_id" json:"manager_id"`
	Status      string             `bson:"status" json:"status"`                       // in-progress | completed | on-hold
	Deadline    string             `bson:"deadline,omitempty" json:"deadline,omitempty"` // YYYY-MM-DD

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProjectView is a project with its manager reference populated.
type ProjectView struct {
	Project `bson:",inline"`
	Manager *UserSummary `json:"manager,omitempty"`
}
