package leavestore

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
	// ErrNotFound is returned when no leave request matches the query.
	ErrNotFound = errors.New("leave request not found")

	errBadStatus = errors.New(`status must be "pending"|"approved"|"rejected"`)
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("leaves"), users: users}
}

// Create inserts a leave request. New requests always start pending; the
// status field on the input is ignored.
func (s *Store) Create(ctx context.Context, l models.Leave) (models.Leave, error) {
	l.ID = primitive.NewObjectID()
	l.Status = models.LeavePending

	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Leave{}, err
	}
	return l, nil
}

// GetByID loads a leave request by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Leave, error) {
	var l models.Leave
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// ListAll returns every leave request, newest first.
func (s *Store) ListAll(ctx context.Context) ([]models.Leave, error) {
	return s.list(ctx, bson.M{})
}

// ListForUser returns only the given user's leave requests.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Leave, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Leave, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var leaves []models.Leave
	if err := cur.All(ctx, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

// Update holds the fields that can change on a leave request.
type Update struct {
	FromDate *string
	ToDate   *string
	Reason   *string
	Status   *string
}

// Apply selectively updates a leave request. Handlers enforce who may set
// which fields (owners edit dates/reason, deciders set status).
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Leave, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.FromDate != nil {
		set["from_date"] = *upd.FromDate
	}
	if upd.ToDate != nil {
		set["to_date"] = *upd.ToDate
	}
	if upd.Reason != nil {
		set["reason"] = *upd.Reason
	}
	if upd.Status != nil {
		status := normalize.Status(*upd.Status)
		if !models.IsValidLeaveStatus(status) {
			return nil, errBadStatus
		}
		set["status"] = status
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var l models.Leave
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&l)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// Delete removes a leave request by ID.
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

// Views populates user references for a list of leave requests.
func (s *Store) Views(ctx context.Context, leaves []models.Leave) ([]models.LeaveView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, l := range leaves {
		idSet[l.UserID] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.LeaveView, 0, len(leaves))
	for _, l := range leaves {
		view := models.LeaveView{Leave: l}
		if u, ok := sums[l.UserID]; ok {
			view.User = &u
		}
		views = append(views, view)
	}
	return views, nil
}
