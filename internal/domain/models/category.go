// internal/domain/models/category.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category groups complaints and routes them to a department.
type Category struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID    uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Department  string             `bson:"department,omitempty" json:"department,omitempty"`
	Icon        string             `bson:"icon,omitempty" json:"icon,omitempty"`

	CreatedAt string `bson:"created_at" json:"created_at"`
	UpdatedAt string `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}
