// internal/domain/models/notification.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Notification is a message for one user. ComplaintID links it to the
// complaint it is about, if any, so complaint deletes can clean it up.
type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LegacyID    uint                `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	UserID      primitive.ObjectID  `bson:"user_id" json:"user_id"`
	ComplaintID *primitive.ObjectID `bson:"complaint_id,omitempty" json:"complaint_id,omitempty"`
	Title       string              `bson:"title" json:"title"`
	Message     string              `bson:"message" json:"message"`
	IsRead      bool                `bson:"is_read" json:"is_read"`
	CreatedAt   string              `bson:"created_at" json:"created_at"`
}
