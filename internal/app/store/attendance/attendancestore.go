package attendancestore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no attendance record matches the query.
	ErrNotFound = errors.New("attendance record not found")
	// ErrDuplicateDay is returned when a record for the same user and day
	// already exists (unique index on user_id+date).
	ErrDuplicateDay = errors.New("attendance already recorded for this day")

	errBadStatus = errors.New(`status must be "present"|"absent"|"leave"`)
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("attendance"), users: users}
}

// Create inserts one day's attendance for one user.
func (s *Store) Create(ctx context.Context, a models.Attendance) (models.Attendance, error) {
	a.ID = primitive.NewObjectID()
	a.Status = normalize.Status(a.Status)
	if !models.IsValidAttendanceStatus(a.Status) {
		return models.Attendance{}, errBadStatus
	}

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Attendance{}, ErrDuplicateDay
		}
		return models.Attendance{}, err
	}
	return a, nil
}

// GetByID loads an attendance record by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	var a models.Attendance
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListAll returns every attendance record, newest day first.
func (s *Store) ListAll(ctx context.Context) ([]models.Attendance, error) {
	return s.list(ctx, bson.M{})
}

// ListForUser returns only the given user's attendance records.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Attendance, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Attendance, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var records []models.Attendance
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Update holds the fields that can change on an attendance record.
type Update struct {
	Date   *string
	Status *string
}

// Apply selectively updates an attendance record.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Attendance, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.Date != nil {
		set["date"] = *upd.Date
	}
	if upd.Status != nil {
		status := normalize.Status(*upd.Status)
		if !models.IsValidAttendanceStatus(status) {
			return nil, errBadStatus
		}
		set["status"] = status
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var a models.Attendance
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicateDay
		}
		return nil, err
	}
	return &a, nil
}

// Delete removes an attendance record by ID.
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

// Views populates user references for a list of attendance records.
func (s *Store) Views(ctx context.Context, records []models.Attendance) ([]models.AttendanceView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, a := range records {
		idSet[a.UserID] = struct{}{}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.AttendanceView, 0, len(records))
	for _, a := range records {
		view := models.AttendanceView{Attendance: a}
		if u, ok := sums[a.UserID]; ok {
			view.User = &u
		}
		views = append(views, view)
	}
	return views, nil
}
