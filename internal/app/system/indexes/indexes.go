// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup and by the migration tool before any writes.
Each index set is idempotent. Errors are aggregated so every problem shows
up in one startup failure instead of one per restart.
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, coll := range models.Collections {
		set, ok := indexSets[coll]
		if !ok {
			continue
		}
		if err := ensureIndexSet(ctx, db.Collection(coll), set()); err != nil {
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
	Sparse *bool  `bson:"sparse,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func boolVal(b *bool) bool { return b != nil && *b }

// Best-effort duplicate detector (works across vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

func listExisting(ctx context.Context, coll *mongo.Collection) map[string]existingIndex {
	existing := map[string]existingIndex{}
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		// A missing collection has no indexes; CreateOne will create it.
		return existing
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing
}

func createErr(coll *mongo.Collection, name string, unique bool, err error) string {
	if isDuplicateKeyErr(err) && unique {
		return fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), name)
	}
	return fmt.Sprintf("%s(%s): %v", coll.Name(), name, err)
}

func ensureIndexSet(ctx context.Context, coll *mongo.Collection, set []mongo.IndexModel) error {
	var errs []string
	existing := listExisting(ctx, coll)

	for _, m := range set {
		var name string
		var unique, sparse bool
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			unique = boolVal(m.Options.Unique)
			sparse = boolVal(m.Options.Sparse)
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		ex, found := existing[sig]
		if found && boolVal(ex.Unique) == unique && boolVal(ex.Sparse) == sparse && (name == "" || ex.Name == name) {
			zap.L().Debug("reusing existing index",
				zap.String("collection", coll.Name()),
				zap.String("name", ex.Name),
				zap.String("keys", sig))
			continue
		}

		if found {
			// Same keys, different name or options: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				zap.L().Warn("drop existing index failed",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.Error(err))
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), name, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			zap.L().Warn("index ensure failed",
				zap.String("collection", coll.Name()),
				zap.String("name", name),
				zap.String("keys", sig),
				zap.Bool("unique", unique),
				zap.Error(err))
			errs = append(errs, createErr(coll, name, unique, err))
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.String("keys", sig),
			zap.Bool("unique", unique),
			zap.Bool("recreated", found),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

var indexSets = map[string]func() []mongo.IndexModel{
	models.CollUsers:            usersIndexes,
	models.CollCategories:       categoriesIndexes,
	models.CollComplaints:       complaintsIndexes,
	models.CollComplaintUpdates: updatesIndexes,
	models.CollFeedback:         feedbackIndexes,
	models.CollComplaintMedia:   mediaIndexes,
	models.CollNotifications:    notificationsIndexes,
	models.CollAuditLogs:        auditLogsIndexes,
	models.CollOfficialRequests: officialRequestsIndexes,
}

// legacy is the unique sparse index on the relational primary key. Documents
// created by the app have no legacy_id and are skipped by the sparse index.
func legacy(prefix string) mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "legacy_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_" + prefix + "_legacy"),
	}
}

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_email"),
		},
		{
			Keys:    bson.D{{Key: "username_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_usernameci"),
		},
		// Admin user lists filtered by role, newest first.
		{
			Keys:    bson.D{{Key: "role", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_users_role_createdat"),
		},
		legacy("users"),
	}
}

func categoriesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_categories_nameci"),
		},
		legacy("categories"),
	}
}

func complaintsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// "My complaints", newest first.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_complaints_user_createdat"),
		},
		// Status boards for officials.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_complaints_status_createdat"),
		},
		// Category in-use checks and category filters.
		{
			Keys:    bson.D{{Key: "category_id", Value: 1}},
			Options: options.Index().SetName("idx_complaints_category"),
		},
		{
			Keys:    bson.D{{Key: "assigned_to", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_complaints_assignee_status"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_complaints_createdat"),
		},
		legacy("complaints"),
	}
}

func updatesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "complaint_id", Value: 1}, {Key: "created_at", Value: 1}},
			Options: options.Index().SetName("idx_updates_complaint_createdat"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_updates_user"),
		},
		legacy("updates"),
	}
}

func feedbackIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// At most one feedback per complaint.
		{
			Keys:    bson.D{{Key: "complaint_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_feedback_complaint"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_feedback_user"),
		},
		legacy("feedback"),
	}
}

func mediaIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "complaint_id", Value: 1}},
			Options: options.Index().SetName("idx_media_complaint"),
		},
		legacy("media"),
	}
}

func notificationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// Inbox: unread first filter, newest first.
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "is_read", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notifications_user_read_createdat"),
		},
		{
			Keys:    bson.D{{Key: "complaint_id", Value: 1}},
			Options: options.Index().SetName("idx_notifications_complaint"),
		},
		legacy("notifications"),
	}
}

func auditLogsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_createdat"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_user_createdat"),
		},
		{
			Keys:    bson.D{{Key: "resource_type", Value: 1}, {Key: "resource_id", Value: 1}},
			Options: options.Index().SetName("idx_audit_resource"),
		},
		legacy("audit"),
	}
}

func officialRequestsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("idx_requests_user_status"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_requests_status_createdat"),
		},
		{
			Keys:    bson.D{{Key: "reviewed_by", Value: 1}},
			Options: options.Index().SetName("idx_requests_reviewer"),
		},
		legacy("requests"),
	}
}
