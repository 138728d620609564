// internal/domain/models/task.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Task is a unit of work assigned to one employee.
type Task struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AssignedTo  primitive.ObjectID `bson:"assigned_to" json:"assigned_to"`
	Status      string             `bson:"status" json:"status"`                         // open | in-progress | done
	Deadline    string             `bson:"deadline,omitempty" json:"deadline,omitempty"` // YYYY-MM-DD

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// TaskView is a task with its assignee reference populated.
type TaskView struct {
	Task     `bson:",inline"`
	Assignee *UserSummary `json:"assignee,omitempty"`
}
