package store

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"github.com/edunest/school-back/internal/models"
)

var ErrNotFound = errors.New("record not found")

// Entity describes one importable/manageable domain noun. Model and
// Slice return fresh pointers so gorm can infer the table and scan
// results without the handlers knowing concrete types.
type Entity struct {
	Name         string // singular, e.g. "student"
	Plural       string // route segment, e.g. "students"
	Model        func() any
	Slice        func() any
	SearchFields []string
}

var Entities = map[string]Entity{
	"student": {
		Name:         "student",
		Plural:       "students",
		Model:        func() any { return &models.Student{} },
		Slice:        func() any { return &[]models.Student{} },
		SearchFields: []string{"name", "email", "roll_number"},
	},
	"teacher": {
		Name:         "teacher",
		Plural:       "teachers",
		Model:        func() any { return &models.Teacher{} },
		Slice:        func() any { return &[]models.Teacher{} },
		SearchFields: []string{"name", "email"},
	},
	"class": {
		Name:         "class",
		Plural:       "classes",
		Model:        func() any { return &models.Class{} },
		Slice:        func() any { return &[]models.Class{} },
		SearchFields: []string{"name", "section"},
	},
	"subject": {
		Name:         "subject",
		Plural:       "subjects",
		Model:        func() any { return &models.Subject{} },
		Slice:        func() any { return &[]models.Subject{} },
		SearchFields: []string{"name", "code"},
	},
	"exam": {
		Name:         "exam",
		Plural:       "exams",
		Model:        func() any { return &models.Exam{} },
		Slice:        func() any { return &[]models.Exam{} },
		SearchFields: []string{"name"},
	},
	"library": {
		Name:         "library",
		Plural:       "library",
		Model:        func() any { return &models.LibraryResource{} },
		Slice:        func() any { return &[]models.LibraryResource{} },
		SearchFields: []string{"title", "author", "category"},
	},
	"event": {
		Name:         "event",
		Plural:       "events",
		Model:        func() any { return &models.Event{} },
		Slice:        func() any { return &[]models.Event{} },
		SearchFields: []string{"title", "description", "location"},
	},
}

type ListQuery struct {
	Page   int
	Limit  int
	Search string
}

type Page struct {
	Total           int64 `json:"total"`
	TotalPages      int   `json:"totalPages"`
	CurrentPage     int   `json:"currentPage"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
}

type Store struct {
	db *gorm.DB
}

func New(conn *gorm.DB) *Store {
	return &Store{db: conn}
}

func (s *Store) Create(ctx context.Context, model any) error {
	return s.db.WithContext(ctx).Create(model).Error
}

func (s *Store) FindByID(ctx context.Context, ent Entity, id string) (any, error) {
	m := ent.Model()
	err := s.db.WithContext(ctx).First(m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) Save(ctx context.Context, model any) error {
	return s.db.WithContext(ctx).Save(model).Error
}

func (s *Store) DeleteByID(ctx context.Context, ent Entity, id string) error {
	res := s.db.WithContext(ctx).Delete(ent.Model(), "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of an entity's rows, newest first, with an
// optional case-insensitive substring search over the entity's
// configured search columns.
func (s *Store) List(ctx context.Context, ent Entity, q ListQuery) (any, Page, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}

	tx := s.db.WithContext(ctx).Model(ent.Model())
	if q.Search != "" {
		pattern := "%" + q.Search + "%"
		cond := s.db.Where(fmt.Sprintf("%s ILIKE ?", ent.SearchFields[0]), pattern)
		for _, f := range ent.SearchFields[1:] {
			cond = cond.Or(fmt.Sprintf("%s ILIKE ?", f), pattern)
		}
		tx = tx.Where(cond)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, Page{}, err
	}

	dest := ent.Slice()
	err := tx.Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(dest).Error
	if err != nil {
		return nil, Page{}, err
	}

	return dest, NewPage(total, q.Page, q.Limit), nil
}

func NewPage(total int64, page, limit int) Page {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Page{
		Total:           total,
		TotalPages:      totalPages,
		CurrentPage:     page,
		HasNextPage:     page < totalPages,
		HasPreviousPage: page > 1,
	}
}

// Directory lookups used by the notification dispatcher.

func (s *Store) GetClass(ctx context.Context, id string) (*models.Class, error) {
	var cls models.Class
	err := s.db.WithContext(ctx).First(&cls, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cls, nil
}

func (s *Store) GetTeacher(ctx context.Context, id string) (*models.Teacher, error) {
	var t models.Teacher
	err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) StudentsByClass(ctx context.Context, classID string) ([]models.Student, error) {
	var students []models.Student
	err := s.db.WithContext(ctx).Where("class = ?", classID).Find(&students).Error
	return students, err
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) TouchLastLogin(ctx context.Context, userID string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("last_login_at", gorm.Expr("NOW()")).Error
}
