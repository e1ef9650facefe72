// internal/app/sqlstore/source.go
package sqlstore

import (
	"context"

	"github.com/dalemusser/cityseva/internal/domain/records"
	"gorm.io/gorm"
)

// Source reads whole tables in primary-key order for the migration.
type Source struct {
	db *gorm.DB
}

func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

func (s *Source) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

func all[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Source) Users(ctx context.Context) ([]records.User, error) {
	return all[records.User](ctx, s.db)
}

func (s *Source) Categories(ctx context.Context) ([]records.Category, error) {
	return all[records.Category](ctx, s.db)
}

func (s *Source) Complaints(ctx context.Context) ([]records.Complaint, error) {
	return all[records.Complaint](ctx, s.db)
}

func (s *Source) Media(ctx context.Context) ([]records.ComplaintMedia, error) {
	return all[records.ComplaintMedia](ctx, s.db)
}

func (s *Source) Updates(ctx context.Context) ([]records.ComplaintUpdate, error) {
	return all[records.ComplaintUpdate](ctx, s.db)
}

func (s *Source) Feedback(ctx context.Context) ([]records.Feedback, error) {
	return all[records.Feedback](ctx, s.db)
}

func (s *Source) AuditLogs(ctx context.Context) ([]records.AuditLog, error) {
	return all[records.AuditLog](ctx, s.db)
}

func (s *Source) Notifications(ctx context.Context) ([]records.Notification, error) {
	return all[records.Notification](ctx, s.db)
}

func (s *Source) OfficialRequests(ctx context.Context) ([]records.OfficialRequest, error) {
	return all[records.OfficialRequest](ctx, s.db)
}
