// Package activity is the append-only "who did what" record written by
// every mutation path. Writes are best-effort: a failed insert must
// never fail the request that produced it.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/edunest/school-back/internal/logger"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/store"
)

const (
	ActionCreate = "create"
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionImport = "import"
	ActionLogin  = "login"
	ActionLogout = "logout"

	StatusSuccess        = "success"
	StatusFailed         = "failed"
	StatusPartialSuccess = "partial_success"
)

type Entry struct {
	Action      string
	Resource    string
	ResourceID  string
	UserID      string
	UserName    string
	Description string
	Status      string
	IPAddress   string
	PerformBy   string
}

// Recorder is what call sites depend on; Sink is the gorm-backed
// implementation.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type Sink struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewSink(conn *gorm.DB) *Sink {
	return &Sink{db: conn, log: logger.With("activity")}
}

// Record appends one entry. Failure to write is logged and swallowed.
func (s *Sink) Record(ctx context.Context, e Entry) {
	row := models.ActivityLog{
		ID:          uuid.NewString(),
		Action:      e.Action,
		Resource:    e.Resource,
		ResourceID:  e.ResourceID,
		UserID:      e.UserID,
		UserName:    e.UserName,
		Description: e.Description,
		Status:      e.Status,
		IPAddress:   e.IPAddress,
		PerformBy:   e.PerformBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		s.log.Error().Err(err).
			Str("action", e.Action).
			Str("resource", e.Resource).
			Msg("activity log write failed")
	}
}

// List returns one page of entries, newest first, with a
// case-insensitive substring search over action, user name and
// description.
func (s *Sink) List(ctx context.Context, page, limit int, search string) ([]models.ActivityLog, store.Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	tx := s.db.WithContext(ctx).Model(&models.ActivityLog{})
	if search != "" {
		pattern := "%" + search + "%"
		tx = tx.Where(
			s.db.Where("action ILIKE ?", pattern).
				Or("user_name ILIKE ?", pattern).
				Or("description ILIKE ?", pattern),
		)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, store.Page{}, err
	}

	var entries []models.ActivityLog
	err := tx.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, store.Page{}, err
	}

	return entries, store.NewPage(total, page, limit), nil
}

// Trim deletes entries older than the retention window. Called by the
// nightly cleanup job.
func (s *Sink) Trim(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	res := s.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.ActivityLog{})
	return res.RowsAffected, res.Error
}
