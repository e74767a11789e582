package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/school-back/internal/activity"
	"github.com/edunest/school-back/internal/config"
	"github.com/edunest/school-back/internal/importer"
	"github.com/edunest/school-back/internal/models"
	"github.com/edunest/school-back/internal/store"
)

// memStore keeps entities in nested maps, keyed by entity name then id.
type memStore struct {
	data map[string]map[string]any
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]any)}
}

func entityOf(model any) string {
	switch model.(type) {
	case *models.Student:
		return "student"
	case *models.Teacher:
		return "teacher"
	case *models.Class:
		return "class"
	case *models.Subject:
		return "subject"
	case *models.Exam:
		return "exam"
	case *models.LibraryResource:
		return "library"
	case *models.Event:
		return "event"
	}
	return ""
}

func (m *memStore) put(model any) {
	name := entityOf(model)
	if m.data[name] == nil {
		m.data[name] = make(map[string]any)
	}
	m.data[name][getID(model)] = model
}

func (m *memStore) Create(_ context.Context, model any) error {
	m.put(model)
	return nil
}

func (m *memStore) FindByID(_ context.Context, ent store.Entity, id string) (any, error) {
	if model, ok := m.data[ent.Name][id]; ok {
		return model, nil
	}
	return nil, store.ErrNotFound
}

func (m *memStore) Save(_ context.Context, model any) error {
	m.put(model)
	return nil
}

func (m *memStore) DeleteByID(_ context.Context, ent store.Entity, id string) error {
	if _, ok := m.data[ent.Name][id]; !ok {
		return store.ErrNotFound
	}
	delete(m.data[ent.Name], id)
	return nil
}

func (m *memStore) List(_ context.Context, ent store.Entity, q store.ListQuery) (any, store.Page, error) {
	var rows []any
	var ids []string
	for id := range m.data[ent.Name] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		rows = append(rows, m.data[ent.Name][id])
	}
	return rows, store.NewPage(int64(len(rows)), q.Page, q.Limit), nil
}

type notifierCall struct {
	kind   string
	class  *models.Class
	exam   *models.Exam
	action string
}

type fakeNotifier struct {
	calls []notifierCall
}

func (f *fakeNotifier) ScheduleChanged(_ context.Context, cls *models.Class) {
	f.calls = append(f.calls, notifierCall{kind: "scheduleChanged", class: cls})
}

func (f *fakeNotifier) ClassDeleted(_ context.Context, cls *models.Class) {
	f.calls = append(f.calls, notifierCall{kind: "classDeleted", class: cls})
}

func (f *fakeNotifier) ExamEvent(_ context.Context, exam *models.Exam, action string) {
	f.calls = append(f.calls, notifierCall{kind: "examEvent", exam: exam, action: action})
}

type fakeActivityLog struct {
	entries []activity.Entry
}

func (f *fakeActivityLog) Record(_ context.Context, e activity.Entry) {
	f.entries = append(f.entries, e)
}

func (f *fakeActivityLog) List(_ context.Context, page, limit int, search string) ([]models.ActivityLog, store.Page, error) {
	var out []models.ActivityLog
	for _, e := range f.entries {
		if search == "" || strings.Contains(e.Description, search) || strings.Contains(e.Action, search) {
			out = append(out, models.ActivityLog{
				Action:      e.Action,
				Resource:    e.Resource,
				Description: e.Description,
				Status:      e.Status,
			})
		}
	}
	return out, store.NewPage(int64(len(out)), page, limit), nil
}

type testEnv struct {
	router    *gin.Engine
	store     *memStore
	notifier  *fakeNotifier
	activity  *fakeActivityLog
	uploadDir string
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mem := newMemStore()
	notifier := &fakeNotifier{}
	act := &fakeActivityLog{}
	cfg := &config.Config{UploadDir: t.TempDir()}

	s := NewServer(cfg, mem, importer.New(mem), notifier, act,
		func(c *gin.Context) {}, func() error { return nil })

	r := gin.New()
	r.PUT("/classes/update-class/:id", s.updateClass)
	r.DELETE("/classes/delete-class/:id", s.deleteClass)
	r.POST("/exams/create-exam", s.createExam)
	r.POST("/subjects/import-subjects", s.importHandler(store.Entities["subject"]))
	r.GET("/activity-log", s.listActivity)

	ent := store.Entities["student"]
	r.POST("/students/create-student", s.createHandler(ent))
	r.GET("/students/get-students", s.listHandler(ent))
	r.GET("/students/get-student/:id", s.getHandler(ent))

	return &testEnv{router: r, store: mem, notifier: notifier, activity: act, uploadDir: cfg.UploadDir}
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seedClass(env *testEnv) *models.Class {
	cls := &models.Class{
		ID:   "class-1",
		Name: "10A",
		WeeklySchedule: []models.WeeklyScheduleEntry{
			{Day: "Monday", StartTime: "08:00", EndTime: "09:00", Subject: "math"},
			{Day: "Tuesday", StartTime: "10:00", EndTime: "11:00", Subject: "physics"},
		},
	}
	env.store.put(cls)
	return cls
}

func TestUpdateClass_UnchangedScheduleDoesNotNotify(t *testing.T) {
	env := setup(t)
	cls := seedClass(env)

	same := append([]models.WeeklyScheduleEntry(nil), cls.WeeklySchedule...)
	rec := doJSON(t, env.router, http.MethodPut, "/classes/update-class/class-1",
		gin.H{"weeklySchedule": same})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.notifier.calls)
}

func TestUpdateClass_ReorderedScheduleNotifiesOnce(t *testing.T) {
	env := setup(t)
	cls := seedClass(env)

	reordered := []models.WeeklyScheduleEntry{cls.WeeklySchedule[1], cls.WeeklySchedule[0]}
	rec := doJSON(t, env.router, http.MethodPut, "/classes/update-class/class-1",
		gin.H{"weeklySchedule": reordered})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, env.notifier.calls, 1)
	call := env.notifier.calls[0]
	assert.Equal(t, "scheduleChanged", call.kind)

	// The notified schedule matches the persisted state.
	persisted := env.store.data["class"]["class-1"].(*models.Class)
	assert.Equal(t, reordered, persisted.WeeklySchedule)
	assert.Equal(t, persisted.WeeklySchedule, call.class.WeeklySchedule)
}

func TestUpdateClass_NameOnlyChangeDoesNotNotify(t *testing.T) {
	env := setup(t)
	seedClass(env)

	rec := doJSON(t, env.router, http.MethodPut, "/classes/update-class/class-1",
		gin.H{"name": "10B"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.notifier.calls)
	assert.Equal(t, "10B", env.store.data["class"]["class-1"].(*models.Class).Name)
}

func TestUpdateClass_NotFound(t *testing.T) {
	env := setup(t)
	rec := doJSON(t, env.router, http.MethodPut, "/classes/update-class/nope", gin.H{"name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteClass_Notifies(t *testing.T) {
	env := setup(t)
	seedClass(env)

	rec := doJSON(t, env.router, http.MethodDelete, "/classes/delete-class/class-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, env.notifier.calls, 1)
	assert.Equal(t, "classDeleted", env.notifier.calls[0].kind)
	assert.Empty(t, env.store.data["class"])
}

func TestCreateExam_Notifies(t *testing.T) {
	env := setup(t)

	rec := doJSON(t, env.router, http.MethodPost, "/exams/create-exam", gin.H{
		"name":     "Midterm",
		"class":    "class-1",
		"subject":  "subject-1",
		"examDate": "2026-09-15T09:00:00Z",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, env.notifier.calls, 1)
	assert.Equal(t, "examEvent", env.notifier.calls[0].kind)
	assert.Equal(t, "created", env.notifier.calls[0].action)
}

func importFile(t *testing.T, r *gin.Engine, path, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestImportSubjects_PartialFailure(t *testing.T) {
	env := setup(t)

	csv := "name,code,teacher,credits,classes\n" +
		"Algebra,MATH101,t1,3,c1\n" +
		"Physics,,t1,4,c1\n" +
		"Chemistry,CHEM101,t2,4,c2\n"
	rec := importFile(t, env.router, "/subjects/import-subjects", "subjects.csv", csv)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Progress int      `json:"progress"`
		Message  string   `json:"message"`
		Errors   []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 67, body.Progress)
	assert.Contains(t, body.Message, "2 processed")
	require.Len(t, body.Errors, 1)
	assert.Contains(t, body.Errors[0], "Error processing subject Physics")

	assert.Len(t, env.store.data["subject"], 2)

	// One batch, one activity entry.
	require.Len(t, env.activity.entries, 1)
	assert.Equal(t, activity.ActionImport, env.activity.entries[0].Action)
	assert.Equal(t, activity.StatusPartialSuccess, env.activity.entries[0].Status)
}

func TestImportSubjects_NoFile(t *testing.T) {
	env := setup(t)
	rec := doJSON(t, env.router, http.MethodPost, "/subjects/import-subjects", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.activity.entries)
}

func TestImportSubjects_UnsupportedExtension(t *testing.T) {
	env := setup(t)
	rec := importFile(t, env.router, "/subjects/import-subjects", "subjects.pdf", "data")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.store.data["subject"])
}

func TestImportSubjects_UploadDeletedAfterProcessing(t *testing.T) {
	env := setup(t)

	csv := "name,code,teacher,credits,classes\nAlgebra,MATH101,t1,3,c1\n"
	rec := importFile(t, env.router, "/subjects/import-subjects", "subjects.csv", csv)
	require.Equal(t, http.StatusOK, rec.Code)

	entries, err := os.ReadDir(env.uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateAndGetStudent(t *testing.T) {
	env := setup(t)

	rec := doJSON(t, env.router, http.MethodPost, "/students/create-student", gin.H{
		"name":  "Ada",
		"email": "ada@school.local",
		"class": "class-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	got := doJSON(t, env.router, http.MethodGet, "/students/get-student/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, got.Code)

	missing := doJSON(t, env.router, http.MethodGet, "/students/get-student/nope", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestListActivityLog(t *testing.T) {
	env := setup(t)
	seedClass(env)

	doJSON(t, env.router, http.MethodDelete, "/classes/delete-class/class-1", nil)

	rec := doJSON(t, env.router, http.MethodGet, "/activity-log?page=1&limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data            []models.ActivityLog `json:"data"`
		TotalPages      int                  `json:"totalPages"`
		HasNextPage     bool                 `json:"hasNextPage"`
		HasPreviousPage bool                 `json:"hasPreviousPage"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "delete", body.Data[0].Action)
	assert.Equal(t, 1, body.TotalPages)
	assert.False(t, body.HasNextPage)
	assert.False(t, body.HasPreviousPage)
}
