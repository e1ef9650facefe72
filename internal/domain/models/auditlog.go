// internal/domain/models/auditlog.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// AuditLog records who did what to which resource.
//
// UserID is cleared when the acting user is deleted; the entry itself stays.
type AuditLog struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LegacyID     uint                `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	UserID       *primitive.ObjectID `bson:"user_id,omitempty" json:"user_id,omitempty"`
	Action       string              `bson:"action" json:"action"`
	ResourceType string              `bson:"resource_type" json:"resource_type"`
	ResourceID   string              `bson:"resource_id,omitempty" json:"resource_id,omitempty"`
	Details      string              `bson:"details,omitempty" json:"details,omitempty"`
	IPAddress    string              `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	CreatedAt    string              `bson:"created_at" json:"created_at"`
}
