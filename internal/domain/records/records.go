// internal/domain/records/records.go
//
// Package records defines the relational schema. Foreign keys and their
// ON DELETE behavior are declared on the belongs-to associations so that
// AutoMigrate creates the constraints in PostgreSQL.
package records

import (
	"time"

	"github.com/dalemusser/cityseva/internal/domain/models"
	"github.com/dalemusser/cityseva/internal/domain/rules"
	"gorm.io/gorm"
)

// User is the relational user row.
type User struct {
	ID           uint       `gorm:"primaryKey"`
	Email        string     `gorm:"size:120;uniqueIndex;not null"`
	Username     string     `gorm:"size:80;uniqueIndex;not null"`
	PasswordHash string     `gorm:"size:255;not null"`
	Role         string     `gorm:"size:20;not null;default:citizen"`
	Department   *string    `gorm:"size:100"`
	IsActive     bool       `gorm:"not null;default:true"`
	IsOnline     bool       `gorm:"not null;default:false"`
	CreatedAt    time.Time  `gorm:"not null"`
	LastLogin    *time.Time
}

func (User) TableName() string { return "users" }

// Category is the relational category row. Complaints reference it with
// ON DELETE RESTRICT.
type Category struct {
	ID          uint      `gorm:"primaryKey"`
	Name        string    `gorm:"size:100;uniqueIndex;not null"`
	Description string    `gorm:"type:text"`
	Department  string    `gorm:"size:100"`
	Icon        string    `gorm:"size:50"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (Category) TableName() string { return "categories" }

// Complaint is the relational complaint row.
type Complaint struct {
	ID          uint    `gorm:"primaryKey"`
	Title       string  `gorm:"size:200;not null"`
	Description string  `gorm:"type:text;not null"`
	Location    string  `gorm:"size:255"`
	Latitude    *float64
	Longitude   *float64

	CategoryID uint  `gorm:"not null;index"`
	UserID     uint  `gorm:"not null;index"`
	AssignedTo *uint `gorm:"index"`

	Status   string `gorm:"size:20;not null;default:pending;index"`
	Priority string `gorm:"size:20;not null;default:medium"`

	CreatedAt  time.Time `gorm:"not null;index"`
	UpdatedAt  time.Time `gorm:"not null"`
	AssignedAt *time.Time
	ResolvedAt *time.Time

	Category Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT"`
	Author   User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Assignee *User    `gorm:"foreignKey:AssignedTo;constraint:OnDelete:SET NULL"`
}

func (Complaint) TableName() string { return "complaints" }

// BeforeSave keeps resolved_at consistent with status for writes that went
// around rules.ApplyStatus (seed data, admin fixes).
func (c *Complaint) BeforeSave(tx *gorm.DB) error {
	if rules.ResolutionConsistent(c.Status, c.ResolvedAt) {
		return nil
	}
	if c.Status == models.StatusResolved {
		now := time.Now().UTC()
		c.ResolvedAt = &now
	} else {
		c.ResolvedAt = nil
	}
	return nil
}

// ComplaintUpdate is the relational status-history row.
type ComplaintUpdate struct {
	ID          uint      `gorm:"primaryKey"`
	ComplaintID uint      `gorm:"not null;index"`
	UserID      uint      `gorm:"not null;index"`
	Status      string    `gorm:"size:20;not null"`
	Comment     string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`

	Complaint Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (ComplaintUpdate) TableName() string { return "complaint_updates" }

// Feedback is the relational feedback row; complaint_id is unique.
type Feedback struct {
	ID          uint      `gorm:"primaryKey"`
	ComplaintID uint      `gorm:"not null;uniqueIndex"`
	UserID      uint      `gorm:"not null;index"`
	Rating      int       `gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment     string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`

	Complaint Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (Feedback) TableName() string { return "feedback" }

// ComplaintMedia is the relational media row.
type ComplaintMedia struct {
	ID          uint      `gorm:"primaryKey"`
	ComplaintID uint      `gorm:"not null;index"`
	FilePath    string    `gorm:"size:500;not null"`
	MediaType   string    `gorm:"size:20;not null"`
	CreatedAt   time.Time `gorm:"not null"`

	Complaint Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
}

func (ComplaintMedia) TableName() string { return "complaint_media" }

// Notification is the relational notification row.
type Notification struct {
	ID          uint      `gorm:"primaryKey"`
	UserID      uint      `gorm:"not null;index"`
	ComplaintID *uint     `gorm:"index"`
	Title       string    `gorm:"size:200;not null"`
	Message     string    `gorm:"type:text;not null"`
	IsRead      bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null;index"`

	User      User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Complaint *Complaint `gorm:"foreignKey:ComplaintID;constraint:OnDelete:CASCADE"`
}

func (Notification) TableName() string { return "notifications" }

// AuditLog is the relational audit row. The actor is nulled when the user is deleted.
type AuditLog struct {
	ID           uint      `gorm:"primaryKey"`
	UserID       *uint     `gorm:"index"`
	Action       string    `gorm:"size:100;not null"`
	ResourceType string    `gorm:"size:50;not null"`
	ResourceID   string    `gorm:"size:64"`
	Details      string    `gorm:"type:text"`
	IPAddress    string    `gorm:"size:45"`
	CreatedAt    time.Time `gorm:"not null;index"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
}

func (AuditLog) TableName() string { return "audit_logs" }

// OfficialRequest is the relational official-request row.
type OfficialRequest struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;index"`
	Department    string `gorm:"size:100;not null"`
	Position      string `gorm:"size:100;not null"`
	EmployeeID    string `gorm:"size:50;not null"`
	OfficePhone   string `gorm:"size:20"`
	Justification string `gorm:"type:text;not null"`
	Status        string `gorm:"size:20;not null;default:pending;index"`
	ReviewedBy    *uint
	ReviewedAt    *time.Time
	ReviewNotes   string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`

	User     User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Reviewer *User `gorm:"foreignKey:ReviewedBy;constraint:OnDelete:SET NULL"`
}

func (OfficialRequest) TableName() string { return "official_requests" }

// All lists every model in creation order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Complaint{},
		&ComplaintUpdate{},
		&Feedback{},
		&ComplaintMedia{},
		&Notification{},
		&AuditLog{},
		&OfficialRequest{},
	}
}
