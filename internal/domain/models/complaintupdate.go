// internal/domain/models/complaintupdate.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ComplaintUpdate is one append-only entry in a complaint's status history.
type ComplaintUpdate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	ComplaintID primitive.ObjectID `bson:"complaint_id" json:"complaint_id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Status      string             `bson:"status" json:"status"`
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	CreatedAt   string             `bson:"created_at" json:"created_at"`
}
