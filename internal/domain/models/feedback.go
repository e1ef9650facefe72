// internal/domain/models/feedback.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Feedback is the author's rating of a resolved complaint. At most one per
// complaint (unique index on complaint_id).
type Feedback struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	ComplaintID primitive.ObjectID `bson:"complaint_id" json:"complaint_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating      int                `bson:"rating" json:"rating"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt   string             `bson:"created_at" json:"created_at"`
}
