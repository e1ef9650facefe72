// internal/domain/models/complaintmedia.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ComplaintMedia points at an uploaded image or video.
type ComplaintMedia struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	ComplaintID primitive.ObjectID `bson:"complaint_id" json:"complaint_id"`
	FilePath    string             `bson:"file_path" json:"file_path"`
	MediaType   string             `bson:"media_type" json:"media_type"` // image | video
	CreatedAt   string             `bson:"created_at" json:"created_at"`
}
