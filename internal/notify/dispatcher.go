// Package notify fans entity mutations out to live clients and to
// email. Dispatch is fire-and-forget relative to the HTTP response
// that triggered it: failures are logged and swallowed, nothing is
// queued or retried.
package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/edunest/school-back/internal/email"
	"github.com/edunest/school-back/internal/logger"
	"github.com/edunest/school-back/internal/models"
)

// Transport is the realtime side of dispatch. Injected rather than
// imported so handlers and tests never touch a live socket server.
type Transport interface {
	Broadcast(event string, payload any)
	SendToUser(userID, event string, payload any)
}

// Directory resolves the recipients of targeted notifications.
type Directory interface {
	GetClass(ctx context.Context, id string) (*models.Class, error)
	GetTeacher(ctx context.Context, id string) (*models.Teacher, error)
	StudentsByClass(ctx context.Context, classID string) ([]models.Student, error)
}

type Dispatcher struct {
	transport Transport
	dir       Directory
	mail      email.Service
	log       zerolog.Logger
}

func NewDispatcher(transport Transport, dir Directory, mail email.Service) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		dir:       dir,
		mail:      mail,
		log:       logger.With("notify"),
	}
}

// ScheduleChanged broadcasts the updated timetable and emails the
// class's teacher and students.
func (d *Dispatcher) ScheduleChanged(ctx context.Context, cls *models.Class) {
	d.transport.Broadcast("classScheduleUpdated", map[string]any{
		"message":         fmt.Sprintf("Schedule for class %s has been updated", cls.Name),
		"classId":         cls.ID,
		"updatedSchedule": cls.WeeklySchedule,
	})

	recipients := d.classRecipients(ctx, cls)
	if len(recipients) > 0 {
		d.mail.Send(email.Message{
			To:      recipients,
			Subject: fmt.Sprintf("Schedule updated for class %s", cls.Name),
			Body:    fmt.Sprintf("The weekly schedule for class %s has changed. Please check the dashboard.", cls.Name),
		})
	}
}

// ClassDeleted broadcasts that a class is gone.
func (d *Dispatcher) ClassDeleted(ctx context.Context, cls *models.Class) {
	d.transport.Broadcast("classDeleted", map[string]any{
		"message": fmt.Sprintf("Class %s has been deleted", cls.Name),
		"classId": cls.ID,
	})
}

// ExamEvent resolves the exam's class into its teacher and students and
// emits one examNotification per recipient room, plus an email each.
// An unresolvable class abandons the whole attempt.
func (d *Dispatcher) ExamEvent(ctx context.Context, exam *models.Exam, action string) {
	cls, err := d.dir.GetClass(ctx, exam.Class)
	if err != nil {
		d.log.Error().Err(err).
			Str("exam_id", exam.ID).
			Str("class_id", exam.Class).
			Msg("exam notification abandoned: class not resolvable")
		return
	}

	payload := map[string]any{
		"message":  fmt.Sprintf("Exam %s for class %s has been %s", exam.Name, cls.Name, action),
		"examId":   exam.ID,
		"classId":  cls.ID,
		"action":   action,
		"examDate": exam.ExamDate,
	}

	var addresses []string

	if cls.Teacher != "" {
		if t, err := d.dir.GetTeacher(ctx, cls.Teacher); err == nil {
			d.transport.SendToUser(t.ID, "examNotification", payload)
			addresses = append(addresses, t.Email)
		} else {
			d.log.Warn().Err(err).Str("teacher_id", cls.Teacher).Msg("skipping unresolvable teacher")
		}
	}

	students, err := d.dir.StudentsByClass(ctx, cls.ID)
	if err != nil {
		d.log.Warn().Err(err).Str("class_id", cls.ID).Msg("skipping student fan-out")
	}
	for _, s := range students {
		d.transport.SendToUser(s.ID, "examNotification", payload)
		addresses = append(addresses, s.Email)
	}

	if len(addresses) > 0 {
		d.mail.Send(email.Message{
			To:      addresses,
			Subject: fmt.Sprintf("Exam %s %s", exam.Name, action),
			Body:    fmt.Sprintf("Exam %s for class %s has been %s.", exam.Name, cls.Name, action),
		})
	}
}

func (d *Dispatcher) classRecipients(ctx context.Context, cls *models.Class) []string {
	var addresses []string
	if cls.Teacher != "" {
		if t, err := d.dir.GetTeacher(ctx, cls.Teacher); err == nil {
			addresses = append(addresses, t.Email)
		}
	}
	students, err := d.dir.StudentsByClass(ctx, cls.ID)
	if err != nil {
		d.log.Warn().Err(err).Str("class_id", cls.ID).Msg("skipping student emails")
		return addresses
	}
	for _, s := range students {
		addresses = append(addresses, s.Email)
	}
	return addresses
}
