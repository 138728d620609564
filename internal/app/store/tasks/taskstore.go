package taskstore

import (
	"context"
	"errors"
	"time"

	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no task matches the query.
	ErrNotFound = errors.New("task not found")

	errBadStatus = errors.New(`status must be "open"|"in-progress"|"done"`)
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("tasks"), users: users}
}

// Create inserts a task. Status defaults to open when empty.
func (s *Store) Create(ctx context.Context, t models.Task) (models.Task, error) {
	t.ID = primitive.NewObjectID()
	t.Title = normalize.Name(t.Title)
	t.Status = normalize.Status(t.Status)
	if t.Status == "" {
		t.Status = models.TaskOpen
	}
	if !models.IsValidTaskStatus(t.Status) {
		return models.Task{}, errBadStatus
	}

	now := time.Now()
	t.CreatedAt = now
	t.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// GetByID loads a task by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var t models.Task
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns every task, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Task, error) {
	return s.list(ctx, bson.M{})
}

// ListForUser returns only tasks assigned to the given user.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Task, error) {
	return s.list(ctx, bson.M{"assigned_to": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Task, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var tasks []models.Task
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update holds the fields that can change on a task. Nil means untouched.
type Update struct {
	Title       *string
	Description *string
	AssignedTo  *primitive.ObjectID
	Status      *string
	Deadline    *string
}

// Apply selectively updates a task.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Task, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.Title != nil {
		set["title"] = normalize.Name(*upd.Title)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.AssignedTo != nil {
		set["assigned_to"] = *upd.AssignedTo
	}
	if upd.Status != nil {
		status := normalize.Status(*upd.Status)
		if !models.IsValidTaskStatus(status) {
			return nil, errBadStatus
		}
		set["status"] = status
	}
	if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Task
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes a task by ID. Returns ErrNotFound when nothing matched.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Views populates assignee references for a list of tasks with one
// users query.
func (s *Store) Views(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range tasks {
		idSet[t.AssignedTo] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := models.TaskView{Task: t}
		if a, ok := sums[t.AssignedTo]; ok {
			view.Assignee = &a
		}
		views = append(views, view)
	}
	return views, nil
}
