package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/school-back/internal/email"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/store"
)

type sentEvent struct {
	userID  string // "" for broadcast
	event   string
	payload map[string]any
}

type fakeTransport struct {
	events []sentEvent
}

func (f *fakeTransport) Broadcast(event string, payload any) {
	f.events = append(f.events, sentEvent{event: event, payload: payload.(map[string]any)})
}

func (f *fakeTransport) SendToUser(userID, event string, payload any) {
	f.events = append(f.events, sentEvent{userID: userID, event: event, payload: payload.(map[string]any)})
}

type fakeDirectory struct {
	classes  map[string]*models.Class
	teachers map[string]*models.Teacher
	students map[string][]models.Student
}

func (f *fakeDirectory) GetClass(_ context.Context, id string) (*models.Class, error) {
	if c, ok := f.classes[id]; ok {
		return c, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDirectory) GetTeacher(_ context.Context, id string) (*models.Teacher, error) {
	if t, ok := f.teachers[id]; ok {
		return t, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDirectory) StudentsByClass(_ context.Context, classID string) ([]models.Student, error) {
	return f.students[classID], nil
}

type fakeMail struct {
	messages []email.Message
}

func (f *fakeMail) Send(messages ...email.Message) {
	f.messages = append(f.messages, messages...)
}

func fixtureDirectory() *fakeDirectory {
	return &fakeDirectory{
		classes: map[string]*models.Class{
			"class-1": {ID: "class-1", Name: "10A", Teacher: "teacher-1"},
		},
		teachers: map[string]*models.Teacher{
			"teacher-1": {ID: "teacher-1", Name: "Ms Poppins", Email: "poppins@school.local"},
		},
		students: map[string][]models.Student{
			"class-1": {
				{ID: "student-1", Email: "s1@school.local", Class: "class-1"},
				{ID: "student-2", Email: "s2@school.local", Class: "class-1"},
			},
		},
	}
}

func TestScheduleChanged_BroadcastsOnce(t *testing.T) {
	tr := &fakeTransport{}
	mail := &fakeMail{}
	d := NewDispatcher(tr, fixtureDirectory(), mail)

	cls := &models.Class{
		ID:   "class-1",
		Name: "10A",
		WeeklySchedule: []models.WeeklyScheduleEntry{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:00", Subject: "math"},
		},
		Teacher: "teacher-1",
	}
	d.ScheduleChanged(context.Background(), cls)

	require.Len(t, tr.events, 1)
	ev := tr.events[0]
	assert.Equal(t, "", ev.userID)
	assert.Equal(t, "classScheduleUpdated", ev.event)
	assert.Equal(t, "class-1", ev.payload["classId"])
	assert.Equal(t, cls.WeeklySchedule, ev.payload["updatedSchedule"])
	assert.Contains(t, ev.payload["message"], "10A")

	require.Len(t, mail.messages, 1)
	assert.ElementsMatch(t,
		[]string{"poppins@school.local", "s1@school.local", "s2@school.local"},
		mail.messages[0].To)
}

func TestClassDeleted_Broadcasts(t *testing.T) {
	tr := &fakeTransport{}
	d := NewDispatcher(tr, fixtureDirectory(), &fakeMail{})

	d.ClassDeleted(context.Background(), &models.Class{ID: "class-1", Name: "10A"})

	require.Len(t, tr.events, 1)
	assert.Equal(t, "classDeleted", tr.events[0].event)
	assert.Equal(t, "class-1", tr.events[0].payload["classId"])
}

func TestExamEvent_FansOutPerRecipient(t *testing.T) {
	tr := &fakeTransport{}
	mail := &fakeMail{}
	d := NewDispatcher(tr, fixtureDirectory(), mail)

	exam := &models.Exam{ID: "exam-1", Name: "Midterm", Class: "class-1"}
	d.ExamEvent(context.Background(), exam, "created")

	require.Len(t, tr.events, 3)
	var recipients []string
	for _, ev := range tr.events {
		assert.Equal(t, "examNotification", ev.event)
		assert.Equal(t, "exam-1", ev.payload["examId"])
		assert.Equal(t, "created", ev.payload["action"])
		recipients = append(recipients, ev.userID)
	}
	assert.ElementsMatch(t, []string{"teacher-1", "student-1", "student-2"}, recipients)

	require.Len(t, mail.messages, 1)
	assert.Len(t, mail.messages[0].To, 3)
}

func TestExamEvent_UnresolvableClassAbandons(t *testing.T) {
	tr := &fakeTransport{}
	mail := &fakeMail{}
	d := NewDispatcher(tr, fixtureDirectory(), mail)

	exam := &models.Exam{ID: "exam-1", Name: "Midterm", Class: "missing-class"}
	d.ExamEvent(context.Background(), exam, "deleted")

	assert.Empty(t, tr.events)
	assert.Empty(t, mail.messages)
}

func TestExamEvent_ClassWithoutTeacher(t *testing.T) {
	dir := fixtureDirectory()
	dir.classes["class-1"].Teacher = ""

	tr := &fakeTransport{}
	d := NewDispatcher(tr, dir, &fakeMail{})

	d.ExamEvent(context.Background(), &models.Exam{ID: "exam-1", Name: "Midterm", Class: "class-1"}, "updated")

	require.Len(t, tr.events, 2) // students only
}
