package models

import (
	"time"

	"gorm.io/datatypes"
)

// WeeklyScheduleEntry is one slot of a class's (or a teacher's) weekly
// timetable. Slot order inside the slice is meaningful: the schedule
// change detection compares entries position by position.
type WeeklyScheduleEntry struct {
	Day       string `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday Sunday"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Teacher   string `json:"teacher,omitempty"`
}

type User struct {
	ID           string     `gorm:"primaryKey;size:36" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         string     `gorm:"not null;default:student" json:"role"` // admin, teacher, student
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type Student struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Name        string         `gorm:"not null" json:"name" validate:"required"`
	Email       string         `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Class       string         `gorm:"size:36;index" json:"class" validate:"required"`
	RollNumber  string         `json:"rollNumber"`
	Gender      string         `json:"gender"`
	DateOfBirth *time.Time     `json:"date_of_birth,omitempty"`
	Guardian    datatypes.JSON `json:"guardian,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type Teacher struct {
	ID             string                `gorm:"primaryKey;size:36" json:"id"`
	Name           string                `gorm:"not null" json:"name" validate:"required"`
	Email          string                `gorm:"uniqueIndex;not null" json:"email" validate:"required,email"`
	Subjects       []string              `gorm:"serializer:json" json:"subjects"`
	Classes        []string              `gorm:"serializer:json" json:"classes"`
	HireDate       *time.Time            `json:"hire_date,omitempty"`
	Salary         float64               `json:"salary"`
	WeeklySchedule []WeeklyScheduleEntry `gorm:"serializer:json" json:"weeklySchedule"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type Class struct {
	ID             string                `gorm:"primaryKey;size:36" json:"id"`
	Name           string                `gorm:"not null" json:"name" validate:"required"`
	Section        string                `json:"section"`
	Teacher        string                `gorm:"size:36;index" json:"teacher"`
	Subjects       []string              `gorm:"serializer:json" json:"subjects"`
	WeeklySchedule []WeeklyScheduleEntry `gorm:"serializer:json" json:"weeklySchedule"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

type Subject struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"not null" json:"name" validate:"required"`
	Code      string    `gorm:"uniqueIndex;not null" json:"code" validate:"required"`
	Teachers  []string  `gorm:"serializer:json" json:"teacher" validate:"required,min=1"`
	Credits   float64   `json:"credits" validate:"required"`
	Classes   []string  `gorm:"serializer:json" json:"classes" validate:"required,min=1"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Exam struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Name      string     `gorm:"not null" json:"name" validate:"required"`
	Class     string     `gorm:"size:36;index" json:"class" validate:"required"`
	Subject   string     `gorm:"size:36" json:"subject" validate:"required"`
	Teacher   string     `gorm:"size:36" json:"teacher"`
	ExamDate  *time.Time `json:"examDate" validate:"required"`
	MaxMarks  float64    `json:"maxMarks"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type LibraryResource struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Title     string    `gorm:"not null" json:"title" validate:"required"`
	Author    string    `gorm:"not null" json:"author" validate:"required"`
	Category  string    `json:"category"`
	ISBN      string    `json:"isbn"`
	Copies    float64   `json:"copies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Event struct {
	ID          string         `gorm:"primaryKey;size:36" json:"id"`
	Title       string         `gorm:"not null" json:"title" validate:"required"`
	Description string         `json:"description"`
	Location    string         `json:"location"`
	Date        *time.Time     `json:"date" validate:"required"`
	Attendees   datatypes.JSON `json:"attendees,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// ActivityLog is an append-only audit row. Rows are only ever inserted
// by the sink and trimmed by the retention job, never updated.
type ActivityLog struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Action      string    `gorm:"not null;index" json:"action"` // create, read, update, delete, import, login, logout
	Resource    string    `gorm:"not null" json:"resource"`
	ResourceID  string    `json:"resourceId"`
	UserID      string    `gorm:"size:36" json:"userId"`
	UserName    string    `json:"userName"`
	Description string    `json:"description"`
	Status      string    `gorm:"not null" json:"status"` // success, failed, partial_success
	IPAddress   string    `json:"ipAddress"`
	PerformBy   string    `json:"performBy"` // admin, teacher, student
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
}
