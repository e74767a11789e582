package api

import (
	"context"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/config"
	"github.com/edunest/school-back/internal/importer"
	"github.com/edunest/school-back/internal/logger"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/store"
)

// EntityStore is the persistence surface the handlers use. The gorm
// store satisfies it in production; tests plug in an in-memory one.
type EntityStore interface {
	Create(ctx context.Context, model any) error
	FindByID(ctx context.Context, ent store.Entity, id string) (any, error)
	Save(ctx context.Context, model any) error
	DeleteByID(ctx context.Context, ent store.Entity, id string) error
	List(ctx context.Context, ent store.Entity, q store.ListQuery) (any, store.Page, error)
}

// BatchImporter runs one uploaded file through the import pipeline.
type BatchImporter interface {
	Run(ctx context.Context, entity, path string) (importer.Result, error)
}

// Notifier fans mutations out to live clients.
type Notifier interface {
	ScheduleChanged(ctx context.Context, cls *models.Class)
	ClassDeleted(ctx context.Context, cls *models.Class)
	ExamEvent(ctx context.Context, exam *models.Exam, action string)
}

// ActivityLog is the sink plus its read surface.
type ActivityLog interface {
	activity.Recorder
	List(ctx context.Context, page, limit int, search string) ([]models.ActivityLog, store.Page, error)
}

type Server struct {
	cfg      *config.Config
	store    EntityStore
	importer BatchImporter
	notifier Notifier
	activity ActivityLog
	ws       gin.HandlerFunc
	ping     func() error
	log      zerolog.Logger
}

func NewServer(
	cfg *config.Config,
	st EntityStore,
	imp BatchImporter,
	notifier Notifier,
	act ActivityLog,
	ws gin.HandlerFunc,
	ping func() error,
) *Server {
	return &Server{
		cfg:      cfg,
		store:    st,
		importer: imp,
		notifier: notifier,
		activity: act,
		ws:       ws,
		ping:     ping,
		log:      logger.With("api"),
	}
}

// logActivity is the shared after-mutation hook: every handler funnels
// its audit entry through here with the actor taken from the request.
func (s *Server) logActivity(c *gin.Context, action, resource, resourceID, description, status string) {
	s.activity.Record(c.Request.Context(), activity.Entry{
		Action:      action,
		Resource:    resource,
		ResourceID:  resourceID,
		UserID:      c.GetString("userID"),
		UserName:    c.GetString("userName"),
		Description: description,
		Status:      status,
		IPAddress:   c.ClientIP(),
		PerformBy:   c.GetString("role"),
	})
}

// assignID gives a freshly bound model a new id and returns it.
func assignID(model any) string {
	id := uuid.NewString()
	setID(model, id)
	return id
}

func setID(model any, id string) {
	f := reflect.ValueOf(model).Elem().FieldByName("ID")
	if f.IsValid() && f.Kind() == reflect.String {
		f.SetString(id)
	}
}

func getID(model any) string {
	f := reflect.ValueOf(model).Elem().FieldByName("ID")
	if f.IsValid() && f.Kind() == reflect.String {
		return f.String()
	}
	return ""
}
