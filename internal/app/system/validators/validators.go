// internal/app/system/validators/validators.go
package validators

import (
	"context"
	"errors"
	"strings"

	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// EnsureAll creates the CitySeva collections (if missing) and attaches
// JSON-Schema validators. Servers that don't support collMod/validators
// (e.g. some DocumentDB versions) are logged and skipped.
//
// Validation level is "moderate": documents that already violate a schema
// are left alone until they are next updated.
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	for _, coll := range models.Collections {
		if _, err := ensureCollection(ctx, db, coll); err != nil {
			problems = append(problems, coll+": "+err.Error())
			continue
		}
		schema, ok := schemas[coll]
		if !ok {
			continue
		}
		if err := setValidator(ctx, db, coll, schema()); err != nil {
			if isNoSuchCommand(err) || isNotImplemented(err) {
				zap.L().Info("validator skipped (unsupported)", zap.String("collection", coll))
				continue
			}
			problems = append(problems, coll+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* ---------------------- collection helpers & logging ---------------------- */

func collectionExists(ctx context.Context, db *mongo.Database, name string) (bool, error) {
	names, err := db.ListCollectionNames(ctx, bson.M{"name": name})
	if err != nil {
		return false, err
	}
	return len(names) > 0, nil
}

// ensureCollection idempotently makes sure <name> exists.
// Returns created==true only if we actually created it.
func ensureCollection(ctx context.Context, db *mongo.Database, name string) (created bool, err error) {
	exists, listErr := collectionExists(ctx, db, name)
	if listErr == nil && exists {
		zap.L().Debug("collection exists", zap.String("collection", name))
		return false, nil
	}
	if err := db.CreateCollection(ctx, name); err != nil {
		if isNamespaceExistsErr(err) {
			return false, nil
		}
		zap.L().Warn("createCollection failed", zap.String("collection", name), zap.Error(err))
		return false, err
	}
	zap.L().Info("created collection", zap.String("collection", name))
	return true, nil
}

func setValidator(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	cmd := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
		{Key: "validationLevel", Value: "moderate"},
		{Key: "validationAction", Value: "error"},
	}
	var out bson.M
	if err := db.RunCommand(ctx, cmd).Decode(&out); err != nil {
		return err
	}
	zap.L().Debug("validator ensured", zap.String("collection", name))
	return nil
}

/* ------------------------- error helpers ------------------------- */

func commandMatches(err error, code int32, phrases ...string) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == code {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isNamespaceExistsErr(err error) bool {
	return commandMatches(err, 48, "already exists", "namespace exists")
}

func isNoSuchCommand(err error) bool {
	return commandMatches(err, 59, "no such command")
}

func isNotImplemented(err error) bool {
	return commandMatches(err, 115, "not implemented", "not supported")
}

/* ------------------------- JSON-Schema docs ---------------------- */

var schemas = map[string]func() bson.M{
	models.CollUsers:            usersSchema,
	models.CollCategories:       categoriesSchema,
	models.CollComplaints:       complaintsSchema,
	models.CollComplaintUpdates: updatesSchema,
	models.CollFeedback:         feedbackSchema,
	models.CollComplaintMedia:   mediaSchema,
	models.CollNotifications:    notificationsSchema,
	models.CollOfficialRequests: officialRequestsSchema,
}

func enum(values []string) bson.M {
	a := bson.A{}
	for _, v := range values {
		a = append(a, v)
	}
	return bson.M{"enum": a}
}

var nonBlank = bson.M{"bsonType": "string", "minLength": 1, "pattern": ".*\\S.*"}

func schema(required []string, props bson.M) bson.M {
	req := bson.A{}
	for _, r := range required {
		req = append(req, r)
	}
	props["created_at"] = bson.M{"bsonType": "string"}
	return bson.M{
		"$jsonSchema": bson.M{
			"bsonType":   "object",
			"required":   req,
			"properties": props,
		},
	}
}

func usersSchema() bson.M {
	return schema([]string{"email", "username", "role", "created_at"}, bson.M{
		"email":      nonBlank,
		"username":   nonBlank,
		"role":       enum(models.Roles),
		"department": bson.M{"bsonType": bson.A{"string", "null"}},
		"is_active":  bson.M{"bsonType": "bool"},
	})
}

func categoriesSchema() bson.M {
	return schema([]string{"name", "name_ci", "created_at"}, bson.M{
		"name":    nonBlank,
		"name_ci": nonBlank,
	})
}

func complaintsSchema() bson.M {
	return schema([]string{"title", "category_id", "user_id", "status", "priority", "created_at"}, bson.M{
		"title":       nonBlank,
		"category_id": bson.M{"bsonType": "objectId"},
		"user_id":     bson.M{"bsonType": "objectId"},
		"assigned_to": bson.M{"bsonType": bson.A{"objectId", "null"}},
		"status":      enum(models.Statuses),
		"priority":    enum(models.Priorities),
		"latitude":    bson.M{"bsonType": bson.A{"double", "null"}},
		"longitude":   bson.M{"bsonType": bson.A{"double", "null"}},
	})
}

func updatesSchema() bson.M {
	return schema([]string{"complaint_id", "user_id", "status", "created_at"}, bson.M{
		"complaint_id": bson.M{"bsonType": "objectId"},
		"user_id":      bson.M{"bsonType": "objectId"},
		"status":       enum(models.Statuses),
	})
}

func feedbackSchema() bson.M {
	return schema([]string{"complaint_id", "user_id", "rating", "created_at"}, bson.M{
		"complaint_id": bson.M{"bsonType": "objectId"},
		"user_id":      bson.M{"bsonType": "objectId"},
		"rating":       bson.M{"bsonType": bson.A{"int", "long"}, "minimum": 1, "maximum": 5},
	})
}

func mediaSchema() bson.M {
	return schema([]string{"complaint_id", "file_path", "media_type", "created_at"}, bson.M{
		"complaint_id": bson.M{"bsonType": "objectId"},
		"file_path":    nonBlank,
		"media_type":   enum(models.MediaKinds),
	})
}

func notificationsSchema() bson.M {
	return schema([]string{"user_id", "title", "created_at"}, bson.M{
		"user_id":      bson.M{"bsonType": "objectId"},
		"complaint_id": bson.M{"bsonType": bson.A{"objectId", "null"}},
		"is_read":      bson.M{"bsonType": "bool"},
	})
}

func officialRequestsSchema() bson.M {
	return schema([]string{"user_id", "department", "status", "created_at"}, bson.M{
		"user_id":     bson.M{"bsonType": "objectId"},
		"department":  nonBlank,
		"status":      enum([]string{models.RequestPending, models.RequestApproved, models.RequestRejected}),
		"reviewed_by": bson.M{"bsonType": bson.A{"objectId", "null"}},
	})
}
