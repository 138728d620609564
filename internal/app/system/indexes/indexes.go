// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureTeams(ctx, db, logger); err != nil {
		problems = append(problems, "teams: "+err.Error())
	}
	if err := ensureProjects(ctx, db, logger); err != nil {
		problems = append(problems, "projects: "+err.Error())
	}
	if err := ensureTasks(ctx, db, logger); err != nil {
		problems = append(problems, "tasks: "+err.Error())
	}
	if err := ensureAttendance(ctx, db, logger); err != nil {
		problems = append(problems, "attendance: "+err.Error())
	}
	if err := ensureLeaves(ctx, db, logger); err != nil {
		problems = append(problems, "leaves: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}},
			Options: options.Index().SetName("uniq_employee_id").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("by_role"),
		},
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("by_full_name_ci"),
		},
	})
}

func ensureTeams(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("teams"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "leader_id", Value: 1}},
			Options: options.Index().SetName("by_leader"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("by_member"),
		},
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetName("by_name_ci"),
		},
	})
}

func ensureProjects(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("projects"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("by_created_desc"),
		},
		{
			Keys:    bson.D{{Key: "manager_id", Value: 1}},
			Options: options.Index().SetName("by_manager"),
		},
	})
}

func ensureTasks(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("tasks"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}},
			Options: options.Index().SetName("by_assignee"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("by_status"),
		},
	})
}

func ensureAttendance(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("attendance"), logger, []mongo.IndexModel{
		{
			// One record per user per day.
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetName("uniq_user_date").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "date", Value: 1}},
			Options: options.Index().SetName("by_date"),
		},
	})
}

func ensureLeaves(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("leaves"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("by_status"),
		},
	})
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		if m.Options != nil && m.Options.Name != nil {
			name = *m.Options.Name
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			// An index with the same keys but different name/options already
			// exists. Drop by name and retry once so deploys converge.
			if isOptionsConflictErr(err) && name != "" {
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr == nil {
					if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 == nil {
						logger.Info("index recreated",
							zap.String("collection", coll.Name()),
							zap.String("name", name))
						continue
					}
				}
			}
			logger.Warn("create index failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.Error(err))
			errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), name, err))
			continue
		}

		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name (or options differ).
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict") ||
		strings.Contains(err.Error(), "IndexKeySpecsConflict")
}
