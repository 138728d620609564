package userstore

// Terminology: User Identifiers
//   - UserID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - EmployeeID / employee_id: The human-assigned string users type to log in

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost matches the deliberate slowness we want for credential hashes.
const BcryptCost = 12

var (
	// ErrNotFound is returned when no user matches the query.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicate is returned when employee_id or email already exists.
	ErrDuplicate = errors.New("a user with this employee id or email already exists")

	errBadRole = errors.New(`role must be "admin"|"manager"|"hr"|"employee"`)
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// GetByLogin looks up a user by employee id or email (both normalized
// lowercase). Returns ErrNotFound if no match.
func (s *Store) GetByLogin(ctx context.Context, login string) (*models.User, error) {
	var u models.User
	filter := bson.M{"$or": bson.A{
		bson.M{"employee_id": normalize.EmployeeID(login)},
		bson.M{"email": normalize.Email(login)},
	}}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// ListStaff returns all non-admin users sorted by folded name, with the
// password hash projected away.
func (s *Store) ListStaff(ctx context.Context) ([]models.User, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}}).
		SetProjection(bson.M{"password_hash": 0})
	cur, err := s.c.Find(ctx, bson.M{"role": bson.M{"$in": bson.A{
		models.RoleManager, models.RoleHR, models.RoleEmployee,
	}}}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user after normalizing & validating fields and
// hashing the password. Returns ErrDuplicate when employee_id or email is
// already taken.
func (s *Store) Create(ctx context.Context, u models.User, password string) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.EmployeeID = normalize.EmployeeID(u.EmployeeID)
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return models.User{}, err
	}
	u.PasswordHash = string(hash)

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicate
		}
		return models.User{}, err
	}
	return u, nil
}

// Update holds the fields that can change on a user. Nil pointers leave the
// stored value untouched (selective update, applied uniformly).
type Update struct {
	FullName    *string
	Email       *string
	Role        *string
	Department  *string
	Designation *string
	Phone       *string
	JoinDate    *string
	ImageRef    *string
	Password    *string // plain text; re-hashed before storing
}

// Apply updates the given user and returns the stored record. Returns
// ErrNotFound when the id does not exist and ErrDuplicate on a unique
// index collision.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.User, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.FullName != nil {
		name := normalize.Name(*upd.FullName)
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Email != nil {
		set["email"] = normalize.Email(*upd.Email)
	}
	if upd.Role != nil {
		role := normalize.Role(*upd.Role)
		if !models.IsValidRole(role) {
			return nil, errBadRole
		}
		set["role"] = role
	}
	if upd.Department != nil {
		set["department"] = *upd.Department
	}
	if upd.Designation != nil {
		set["designation"] = *upd.Designation
	}
	if upd.Phone != nil {
		set["phone"] = *upd.Phone
	}
	if upd.JoinDate != nil {
		set["join_date"] = *upd.JoinDate
	}
	if upd.ImageRef != nil {
		set["image_ref"] = *upd.ImageRef
	}
	if upd.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*upd.Password), BcryptCost)
		if err != nil {
			return nil, err
		}
		set["password_hash"] = string(hash)
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var u models.User
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return &u, nil
}

// Delete removes a user by ID. Returns ErrNotFound when nothing matched.
// Teams and projects referencing the user are left as-is (no cascade).
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

// Exists reports whether a user with the given id exists.
func (s *Store) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"_id": id}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == nil {
		return true, nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	return false, err
}

// Summaries loads display summaries for the given ids, keyed by id.
// Unresolvable ids are simply absent from the result (dangling references
// are tolerated, not repaired).
func (s *Store) Summaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.UserSummary, error) {
	out := make(map[primitive.ObjectID]models.UserSummary, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	proj := options.Find().SetProjection(bson.M{
		"_id": 1, "employee_id": 1, "full_name": 1, "email": 1, "role": 1,
	})
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var sum models.UserSummary
		if err := cur.Decode(&sum); err != nil {
			return nil, err
		}
		out[sum.ID] = sum
	}
	return out, cur.Err()
}
