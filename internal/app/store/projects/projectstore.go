package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no project matches the query.
	ErrNotFound = errors.New("project not found")

	errBadStatus = errors.New(`status must be "in-progress"|"completed"|"on-hold"`)
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("projects"), users: users}
}

// Create inserts a project. Status defaults to in-progress when empty.
// The manager reference is stored as given (no cascade either way).
func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Status = normalize.Status(p.Status)
	if p.Status == "" {
		p.Status = models.ProjectInProgress
	}
	if !models.IsValidProjectStatus(p.Status) {
		return models.Project{}, errBadStatus
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// GetByID loads a project by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListAll returns every project, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Project, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Update holds the fields that can change on a project. Nil means untouched.
type Update struct {
	Name        *string
	Description *string
	ManagerID   *primitive.ObjectID
	Status      *string
	Deadline    *string
}

// Apply selectively updates a project.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Project, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.ManagerID != nil {
		set["manager_id"] = *upd.ManagerID
	}
	if upd.Status != nil {
		status := normalize.Status(*upd.Status)
		if !models.IsValidProjectStatus(status) {
			return nil, errBadStatus
		}
		set["status"] = status
	}
	if upd.Deadline != nil {
		set["deadline"] = *upd.Deadline
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var p models.Project
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a project by ID. Returns ErrNotFound when nothing matched.
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

// View populates the manager reference of one project.
func (s *Store) View(ctx context.Context, p models.Project) (models.ProjectView, error) {
	sums, err := s.users.Summaries(ctx, []primitive.ObjectID{p.ManagerID})
	if err != nil {
		return models.ProjectView{}, err
	}
	view := models.ProjectView{Project: p}
	if m, ok := sums[p.ManagerID]; ok {
		view.Manager = &m
	}
	return view, nil
}

// Views populates manager references for a list of projects with one
// users query.
func (s *Store) Views(ctx context.Context, projects []models.Project) ([]models.ProjectView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, p := range projects {
		idSet[p.ManagerID] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.ProjectView, 0, len(projects))
	for _, p := range projects {
		view := models.ProjectView{Project: p}
		if m, ok := sums[p.ManagerID]; ok {
			view.Manager = &m
		}
		views = append(views, view)
	}
	return views, nil
}
