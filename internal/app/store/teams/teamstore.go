package teamstore

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
	// ErrNotFound is returned when no team matches the query.
	ErrNotFound = errors.New("team not found")
	// ErrLeaderNotFound is returned when the leader reference does not
	// resolve to an existing user at create/update time.
	ErrLeaderNotFound = errors.New("team leader does not exist")
)

type Store struct {
	c     *mongo.Collection
	users *userstore.Store
}

func New(db *mongo.Database, users *userstore.Store) *Store {
	return &Store{c: db.Collection("teams"), users: users}
}

// Create inserts a team after confirming the leader resolves to an existing
// user. Member references are stored as given; the lookup-then-insert is not
// transactional, so a concurrently deleted leader can still slip through.
func (s *Store) Create(ctx context.Context, name string, leaderID primitive.ObjectID, memberIDs []primitive.ObjectID) (models.Team, error) {
	ok, err := s.users.Exists(ctx, leaderID)
	if err != nil {
		return models.Team{}, err
	}
	if !ok {
		return models.Team{}, ErrLeaderNotFound
	}

	if memberIDs == nil {
		memberIDs = []primitive.ObjectID{}
	}

	now := time.Now()
	t := models.Team{
		ID:        primitive.NewObjectID(),
		Name:      normalize.Name(name),
		NameCI:    text.Fold(normalize.Name(name)),
		LeaderID:  leaderID,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.c.InsertOne(ctx, t); err != nil {
		return models.Team{}, err
	}
	return t, nil
}

// GetByID loads a team by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Team, error) {
	var t models.Team
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListAll returns every team.
func (s *Store) ListAll(ctx context.Context) ([]models.Team, error) {
	return s.list(ctx, bson.M{})
}

// ListForUser returns only teams where the user is leader or member.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Team, error) {
	return s.list(ctx, bson.M{"$or": bson.A{
		bson.M{"leader_id": userID},
		bson.M{"member_ids": userID},
	}})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Team, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var teams []models.Team
	if err := cur.All(ctx, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Update holds the fields that can change on a team. Nil means untouched.
type Update struct {
	Name      *string
	LeaderID  *primitive.ObjectID
	MemberIDs *[]primitive.ObjectID
}

// Apply selectively updates a team. A new leader reference is validated the
// same way Create validates it.
func (s *Store) Apply(ctx context.Context, id primitive.ObjectID, upd Update) (*models.Team, error) {
	set := bson.M{"updated_at": time.Now()}

	if upd.Name != nil {
		name := normalize.Name(*upd.Name)
		set["name"] = name
		set["name_ci"] = text.Fold(name)
	}
	if upd.LeaderID != nil {
		ok, err := s.users.Exists(ctx, *upd.LeaderID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrLeaderNotFound
		}
		set["leader_id"] = *upd.LeaderID
	}
	if upd.MemberIDs != nil {
		set["member_ids"] = *upd.MemberIDs
	}

	after := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var t models.Team
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, after).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Delete removes a team by ID. Returns ErrNotFound when nothing matched.
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

// View populates the leader and member references of one team.
// Dangling references are dropped from the populated lists.
func (s *Store) View(ctx context.Context, t models.Team) (models.TeamView, error) {
	ids := append([]primitive.ObjectID{t.LeaderID}, t.MemberIDs...)
	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return models.TeamView{}, err
	}

	view := models.TeamView{Team: t, Members: make([]models.UserSummary, 0, len(t.MemberIDs))}
	if leader, ok := sums[t.LeaderID]; ok {
		view.Leader = &leader
	}
	for _, id := range t.MemberIDs {
		if m, ok := sums[id]; ok {
			view.Members = append(view.Members, m)
		}
	}
	return view, nil
}

// Views populates references for a list of teams with one users query.
func (s *Store) Views(ctx context.Context, teams []models.Team) ([]models.TeamView, error) {
	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range teams {
		idSet[t.LeaderID] = struct{}{}
		for _, id := range t.MemberIDs {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	views := make([]models.TeamView, 0, len(teams))
	for _, t := range teams {
		view := models.TeamView{Team: t, Members: make([]models.UserSummary, 0, len(t.MemberIDs))}
		if leader, ok := sums[t.LeaderID]; ok {
			view.Leader = &leader
		}
		for _, id := range t.MemberIDs {
			if m, ok := sums[id]; ok {
				view.Members = append(view.Members, m)
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// MembersOfTeamsLedBy returns the distinct member summaries across all
// teams led by the given user. Task assignment uses this to build the
// assignee choices for a manager.
func (s *Store) MembersOfTeamsLedBy(ctx context.Context, leaderID primitive.ObjectID) ([]models.UserSummary, error) {
	teams, err := s.list(ctx, bson.M{"leader_id": leaderID})
	if err != nil {
		return nil, err
	}

	idSet := make(map[primitive.ObjectID]struct{})
	for _, t := range teams {
		for _, id := range t.MemberIDs {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	sums, err := s.users.Summaries(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserSummary, 0, len(sums))
	for _, sum := range sums {
		out = append(out, sum)
	}
	return out, nil
}
