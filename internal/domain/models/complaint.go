// internal/domain/models/complaint.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Complaint is a citizen-filed issue.
//
// AuthorName, AssigneeName and CategoryName are denormalized copies taken at
// write time; readers refresh them from users/categories.
// ResolvedAt is set iff Status == resolved.
type Complaint struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Location    string             `bson:"location,omitempty" json:"location,omitempty"`
	Latitude    *float64           `bson:"latitude,omitempty" json:"latitude,omitempty"`
	Longitude   *float64           `bson:"longitude,omitempty" json:"longitude,omitempty"`

	CategoryID   primitive.ObjectID  `bson:"category_id" json:"category_id"`
	CategoryName string              `bson:"category_name,omitempty" json:"category_name,omitempty"`
	UserID       primitive.ObjectID  `bson:"user_id" json:"user_id"`
	AuthorName   string              `bson:"author_name,omitempty" json:"author_name,omitempty"`
	AssignedTo   *primitive.ObjectID `bson:"assigned_to,omitempty" json:"assigned_to,omitempty"`
	AssigneeName string              `bson:"assignee_name,omitempty" json:"assignee_name,omitempty"`

	Status   string `bson:"status" json:"status"`
	Priority string `bson:"priority" json:"priority"`

	CreatedAt  string  `bson:"created_at" json:"created_at"`
	UpdatedAt  string  `bson:"updated_at" json:"updated_at"`
	AssignedAt *string `bson:"assigned_at,omitempty" json:"assigned_at,omitempty"`
	ResolvedAt *string `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
