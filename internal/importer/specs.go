package importer

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/edunest/school-back/internal/models"
)

var validate = validator.New()

// Specs holds the per-entity import descriptors, keyed by entity name.
var Specs = map[string]Spec{
	"student": {
		Name:     "student",
		Label:    "name",
		Required: []string{"name", "email", "class"},
		JSONs:    []string{"guardian"},
		Dates:    []string{"date_of_birth"},
		IDs:      []string{"class"},
		New:      newStudent,
	},
	"teacher": {
		Name:     "teacher",
		Label:    "name",
		Required: []string{"name", "email"},
		Lists:    []string{"subjects", "classes"},
		JSONs:    []string{"weeklySchedule"},
		Dates:    []string{"hire_date"},
		Numbers:  []string{"salary"},
		New:      newTeacher,
	},
	"class": {
		Name:     "class",
		Label:    "name",
		Required: []string{"name"},
		Lists:    []string{"subjects"},
		JSONs:    []string{"weeklySchedule"},
		IDs:      []string{"teacher"},
		New:      newClass,
	},
	"subject": {
		Name:     "subject",
		Label:    "name",
		Required: []string{"name", "code", "teacher", "credits", "classes"},
		Lists:    []string{"teacher", "classes"},
		Numbers:  []string{"credits"},
		New:      newSubject,
	},
	"exam": {
		Name:     "exam",
		Label:    "name",
		Required: []string{"name", "class", "subject", "examDate"},
		Dates:    []string{"examDate"},
		Numbers:  []string{"maxMarks"},
		IDs:      []string{"class", "subject", "teacher"},
		New:      newExam,
	},
	"library": {
		Name:     "library",
		Label:    "title",
		Required: []string{"title", "author"},
		Numbers:  []string{"copies"},
		New:      newLibraryResource,
	},
	"event": {
		Name:     "event",
		Label:    "title",
		Required: []string{"title", "date"},
		JSONs:    []string{"attendees"},
		Dates:    []string{"date", "createdAt"},
		New:      newEvent,
	},
}

func newStudent(rec Record) (any, error) {
	s := &models.Student{
		ID:          uuid.NewString(),
		Name:        rec.Str("name"),
		Email:       rec.Str("email"),
		Class:       rec.Str("class"),
		RollNumber:  rec.Str("rollNumber"),
		Gender:      rec.Str("gender"),
		DateOfBirth: rec.Time("date_of_birth"),
		Guardian:    datatypes.JSON(rec.Raw("guardian")),
	}
	if err := validate.Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

func newTeacher(rec Record) (any, error) {
	sched, err := scheduleFromRaw(rec.Raw("weeklySchedule"))
	if err != nil {
		return nil, err
	}
	t := &models.Teacher{
		ID:             uuid.NewString(),
		Name:           rec.Str("name"),
		Email:          rec.Str("email"),
		Subjects:       rec.Strs("subjects"),
		Classes:        rec.Strs("classes"),
		HireDate:       rec.Time("hire_date"),
		Salary:         rec.Float("salary"),
		WeeklySchedule: sched,
	}
	if err := validate.Struct(t); err != nil {
		return nil, err
	}
	return t, nil
}

func newClass(rec Record) (any, error) {
	sched, err := scheduleFromRaw(rec.Raw("weeklySchedule"))
	if err != nil {
		return nil, err
	}
	c := &models.Class{
		ID:             uuid.NewString(),
		Name:           rec.Str("name"),
		Section:        rec.Str("section"),
		Teacher:        rec.Str("teacher"),
		Subjects:       rec.Strs("subjects"),
		WeeklySchedule: sched,
	}
	if err := validate.Struct(c); err != nil {
		return nil, err
	}
	return c, nil
}

func newSubject(rec Record) (any, error) {
	s := &models.Subject{
		ID:       uuid.NewString(),
		Name:     rec.Str("name"),
		Code:     rec.Str("code"),
		Teachers: rec.Strs("teacher"),
		Credits:  rec.Float("credits"),
		Classes:  rec.Strs("classes"),
	}
	if err := validate.Struct(s); err != nil {
		return nil, err
	}
	return s, nil
}

func newExam(rec Record) (any, error) {
	e := &models.Exam{
		ID:       uuid.NewString(),
		Name:     rec.Str("name"),
		Class:    rec.Str("class"),
		Subject:  rec.Str("subject"),
		Teacher:  rec.Str("teacher"),
		ExamDate: rec.Time("examDate"),
		MaxMarks: rec.Float("maxMarks"),
	}
	if err := validate.Struct(e); err != nil {
		return nil, err
	}
	return e, nil
}

func newLibraryResource(rec Record) (any, error) {
	l := &models.LibraryResource{
		ID:       uuid.NewString(),
		Title:    rec.Str("title"),
		Author:   rec.Str("author"),
		Category: rec.Str("category"),
		ISBN:     rec.Str("isbn"),
		Copies:   rec.Float("copies"),
	}
	if err := validate.Struct(l); err != nil {
		return nil, err
	}
	return l, nil
}

func newEvent(rec Record) (any, error) {
	e := &models.Event{
		ID:          uuid.NewString(),
		Title:       rec.Str("title"),
		Description: rec.Str("description"),
		Location:    rec.Str("location"),
		Date:        rec.Time("date"),
		Attendees:   datatypes.JSON(rec.Raw("attendees")),
	}
	if err := validate.Struct(e); err != nil {
		return nil, err
	}
	return e, nil
}

func scheduleFromRaw(raw json.RawMessage) ([]models.WeeklyScheduleEntry, error) {
	if raw == nil {
		return nil, nil
	}
	var sched []models.WeeklyScheduleEntry
	if err := json.Unmarshal(raw, &sched); err != nil {
		return nil, FieldError{Field: "weeklySchedule", Value: string(raw), Message: "not a schedule array"}
	}
	return sched, nil
}
