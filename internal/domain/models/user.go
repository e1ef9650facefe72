// internal/domain/models/user.go
package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a citizen, official, or admin.
//
// Department is set only for officials. Timestamps are ISO-8601 text
// (see system/isotime).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	LegacyID     uint               `bson:"legacy_id,omitempty" json:"legacy_id,omitempty"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	UsernameCI   string             `bson:"username_ci" json:"-"` // folded for uniqueness
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // citizen | official | admin
	Department   *string            `bson:"department,omitempty" json:"department,omitempty"`
	IsActive     bool               `bson:"is_active" json:"is_active"`
	IsOnline     bool               `bson:"is_online" json:"is_online"`

	CreatedAt string  `bson:"created_at" json:"created_at"`
	UpdatedAt string  `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
	LastLogin *string `bson:"last_login,omitempty" json:"last_login,omitempty"`
}
