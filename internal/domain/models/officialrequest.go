// internal/domain/models/officialrequest.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// OfficialRequest is a citizen's application to become an official.
type OfficialRequest struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	LegacyID      uint                `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	UserID        primitive.ObjectID  `bson:"user_id" json:"user_id"`
	Department    string              `bson:"department" json:"department"`
	Position      string              `bson:"position" json:"position"`
	EmployeeID    string              `bson:"employee_id" json:"employee_id"`
	OfficePhone   string              `bson:"office_phone,omitempty" json:"office_phone,omitempty"`
	Justification string              `bson:"justification" json:"justification"`
	Status        string              `bson:"status" json:"status"` // pending | approved | rejected
	ReviewedBy    *primitive.ObjectID `bson:"reviewed_by,omitempty" json:"reviewed_by,omitempty"`
	ReviewedAt    *string             `bson:"reviewed_at,omitempty" json:"reviewed_at,omitempty"`
	ReviewNotes   string              `bson:"review_notes,omitempty" json:"review_notes,omitempty"`
	CreatedAt     string              `bson:"created_at" json:"created_at"`
	UpdatedAt     string              `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
