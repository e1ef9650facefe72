// internal/app/store/cascade/cascade.go
//
// Package cascade deletes documents together with their dependents. The
// document store has no foreign keys, so every cascade the relational schema
// gets from ON DELETE is spelled out here and run in one transaction.
package cascade

import (
	"context"
	"fmt"

	"github.com/dalemusser/cityseva/internal/app/system/isotime"
	"github.com/dalemusser/cityseva/internal/app/system/txn"
	"github.com/dalemusser/cityseva/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// CascadeError reports a cascade that failed. The transaction was aborted,
// so none of its writes are visible.
type CascadeError struct {
	Entity string
	ID     string
	Err    error
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("cascade delete %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *CascadeError) Unwrap() error { return e.Err }

// Counts tallies what one cascade removed or cleared.
type Counts struct {
	Complaints       int64
	Media            int64
	Updates          int64
	Feedback         int64
	Notifications    int64
	OfficialRequests int64
	ReviewerCleared  int64
	AssigneeCleared  int64
	AuditActorClear  int64
	Root             int64
}

// Deleter runs cascades against one database.
type Deleter struct {
	db  *mongo.Database
	log *zap.Logger
}

func New(db *mongo.Database, log *zap.Logger) *Deleter {
	if log == nil {
		log = zap.L()
	}
	return &Deleter{db: db, log: log}
}

// DeleteComplaint removes a complaint with its media, updates, feedback and
// notifications. Deleting a complaint that is already gone succeeds.
func (d *Deleter) DeleteComplaint(ctx context.Context, id primitive.ObjectID) (Counts, error) {
	var counts Counts
	err := txn.Run(ctx, d.db, d.log, func(ctx context.Context) error {
		counts = Counts{}
		if err := d.deleteComplaintTree(ctx, bson.M{"_id": id}, &counts); err != nil {
			return err
		}
		counts.Root = counts.Complaints
		return nil
	})
	if err != nil {
		return Counts{}, &CascadeError{Entity: "complaint", ID: id.Hex(), Err: err}
	}
	d.log.Info("complaint cascade deleted",
		zap.String("complaint_id", id.Hex()),
		zap.Int64("media", counts.Media),
		zap.Int64("updates", counts.Updates),
		zap.Int64("feedback", counts.Feedback),
		zap.Int64("notifications", counts.Notifications))
	return counts, nil
}

// DeleteUser removes a user, their complaints (with dependents), their
// notifications, feedback, updates and official requests. References that
// outlive the user are cleared: reviewer on requests they reviewed,
// assignee on complaints assigned to them, and actor on audit logs.
func (d *Deleter) DeleteUser(ctx context.Context, id primitive.ObjectID) (Counts, error) {
	var counts Counts
	err := txn.Run(ctx, d.db, d.log, func(ctx context.Context) error {
		counts = Counts{}
		if err := d.deleteComplaintTree(ctx, bson.M{"user_id": id}, &counts); err != nil {
			return err
		}

		byUser := bson.M{"user_id": id}
		var err error
		if counts.Notifications, err = d.deleteMany(ctx, models.CollNotifications, byUser, counts.Notifications); err != nil {
			return err
		}
		if counts.Feedback, err = d.deleteMany(ctx, models.CollFeedback, byUser, counts.Feedback); err != nil {
			return err
		}
		if counts.Updates, err = d.deleteMany(ctx, models.CollComplaintUpdates, byUser, counts.Updates); err != nil {
			return err
		}
		if counts.OfficialRequests, err = d.deleteMany(ctx, models.CollOfficialRequests, byUser, 0); err != nil {
			return err
		}

		now := isotime.Now()
		res, err := d.db.Collection(models.CollOfficialRequests).UpdateMany(ctx,
			bson.M{"reviewed_by": id},
			bson.M{"$unset": bson.M{"reviewed_by": ""}, "$set": bson.M{"updated_at": now}})
		if err != nil {
			return fmt.Errorf("clear reviewer: %w", err)
		}
		counts.ReviewerCleared = res.ModifiedCount

		res, err = d.db.Collection(models.CollComplaints).UpdateMany(ctx,
			bson.M{"assigned_to": id},
			bson.M{"$unset": bson.M{"assigned_to": "", "assignee_name": ""}, "$set": bson.M{"updated_at": now}})
		if err != nil {
			return fmt.Errorf("clear assignee: %w", err)
		}
		counts.AssigneeCleared = res.ModifiedCount

		res, err = d.db.Collection(models.CollAuditLogs).UpdateMany(ctx,
			bson.M{"user_id": id},
			bson.M{"$unset": bson.M{"user_id": ""}})
		if err != nil {
			return fmt.Errorf("clear audit actor: %w", err)
		}
		counts.AuditActorClear = res.ModifiedCount

		if counts.Root, err = d.deleteMany(ctx, models.CollUsers, bson.M{"_id": id}, 0); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return Counts{}, &CascadeError{Entity: "user", ID: id.Hex(), Err: err}
	}
	d.log.Info("user cascade deleted",
		zap.String("user_id", id.Hex()),
		zap.Int64("complaints", counts.Complaints),
		zap.Int64("official_requests", counts.OfficialRequests),
		zap.Int64("reviewer_cleared", counts.ReviewerCleared),
		zap.Int64("assignee_cleared", counts.AssigneeCleared))
	return counts, nil
}

// deleteComplaintTree deletes the complaints matched by filter along with
// everything that references them.
func (d *Deleter) deleteComplaintTree(ctx context.Context, filter bson.M, counts *Counts) error {
	cur, err := d.db.Collection(models.CollComplaints).Find(ctx, filter)
	if err != nil {
		return fmt.Errorf("find complaints: %w", err)
	}
	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return fmt.Errorf("read complaints: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}

	byComplaint := bson.M{"complaint_id": bson.M{"$in": ids}}
	if counts.Media, err = d.deleteMany(ctx, models.CollComplaintMedia, byComplaint, counts.Media); err != nil {
		return err
	}
	if counts.Updates, err = d.deleteMany(ctx, models.CollComplaintUpdates, byComplaint, counts.Updates); err != nil {
		return err
	}
	if counts.Feedback, err = d.deleteMany(ctx, models.CollFeedback, byComplaint, counts.Feedback); err != nil {
		return err
	}
	if counts.Notifications, err = d.deleteMany(ctx, models.CollNotifications, byComplaint, counts.Notifications); err != nil {
		return err
	}
	if counts.Complaints, err = d.deleteMany(ctx, models.CollComplaints, bson.M{"_id": bson.M{"$in": ids}}, counts.Complaints); err != nil {
		return err
	}
	return nil
}

// deleteMany deletes and returns prior+deleted.
func (d *Deleter) deleteMany(ctx context.Context, coll string, filter bson.M, prior int64) (int64, error) {
	res, err := d.db.Collection(coll).DeleteMany(ctx, filter)
	if err != nil {
		return prior, fmt.Errorf("delete %s: %w", coll, err)
	}
	return prior + res.DeletedCount, nil
}
