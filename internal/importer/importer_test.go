package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunest/school-back/internal/models"
)

type fakeStore struct {
	created []any
	failOn  func(model any) error
}

func (f *fakeStore) Create(_ context.Context, model any) error {
	if f.failOn != nil {
		if err := f.failOn(model); err != nil {
			return err
		}
	}
	f.created = append(f.created, model)
	return nil
}

func TestRun_UnknownEntity(t *testing.T) {
	imp := New(&fakeStore{})
	_, err := imp.Run(context.Background(), "invoice", "whatever.csv")
	assert.Error(t, err)
}

func TestRun_ParseFailureCreatesNothing(t *testing.T) {
	st := &fakeStore{}
	imp := New(st)

	path := writeFile(t, "subjects.pdf", "nope")
	_, err := imp.Run(context.Background(), "subject", path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.Empty(t, st.created)
}

func TestRun_EmptyFile(t *testing.T) {
	st := &fakeStore{}
	imp := New(st)

	path := writeFile(t, "subjects.csv", "name,code,teacher,credits,classes\n")
	res, err := imp.Run(context.Background(), "subject", path)
	require.NoError(t, err)

	assert.Equal(t, 0, res.TotalRecords)
	assert.Equal(t, 100, res.ProgressPercent)
	assert.Equal(t, "success", res.Status())
	assert.Empty(t, st.created)
}

func TestRun_PartialFailure(t *testing.T) {
	st := &fakeStore{}
	imp := New(st)

	// Row 2 is missing its code; only that row fails.
	path := writeFile(t, "subjects.csv",
		"name,code,teacher,credits,classes\n"+
			"Algebra,MATH101,t1,3,c1\n"+
			"Physics,,t1,4,c1\n"+
			"Chemistry,CHEM101,t2,4,c2\n")

	res, err := imp.Run(context.Background(), "subject", path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalRecords)
	assert.Equal(t, 2, res.ProcessedRecords)
	assert.Equal(t, 67, res.ProgressPercent)
	assert.Equal(t, "partial_success", res.Status())
	assert.Contains(t, res.Message, "2 processed")

	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Error processing subject Physics")

	// Every row is accounted for as success or logged failure.
	assert.Equal(t, res.TotalRecords, res.ProcessedRecords+len(res.Errors))

	require.Len(t, st.created, 2)
	first := st.created[0].(*models.Subject)
	assert.Equal(t, "Algebra", first.Name)
	assert.Equal(t, []string{"t1"}, first.Teachers)
	assert.Equal(t, 3.0, first.Credits)
}

func TestRun_AllRowsFail(t *testing.T) {
	st := &fakeStore{}
	imp := New(st)

	path := writeFile(t, "subjects.csv",
		"name,code,teacher,credits,classes\n"+
			"Algebra,,t1,3,c1\n"+
			"Physics,,t1,4,c1\n")

	res, err := imp.Run(context.Background(), "subject", path)
	require.NoError(t, err)

	assert.Equal(t, 0, res.ProgressPercent)
	assert.Len(t, res.Errors, 2)
	assert.Empty(t, st.created)
}

func TestRun_PersistenceConflictIsRowFailure(t *testing.T) {
	st := &fakeStore{
		failOn: func(model any) error {
			if s, ok := model.(*models.Subject); ok && s.Code == "MATH101" {
				return errors.New("duplicate key value violates unique constraint")
			}
			return nil
		},
	}
	imp := New(st)

	path := writeFile(t, "subjects.csv",
		"name,code,teacher,credits,classes\n"+
			"Algebra,MATH101,t1,3,c1\n"+
			"Chemistry,CHEM101,t2,4,c2\n")

	res, err := imp.Run(context.Background(), "subject", path)
	require.NoError(t, err)

	assert.Equal(t, 1, res.ProcessedRecords)
	assert.Equal(t, 50, res.ProgressPercent)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "duplicate key")
	require.Len(t, st.created, 1)
}

func TestRun_ErrorsPreserveRowIndex(t *testing.T) {
	st := &fakeStore{}
	imp := New(st)

	path := writeFile(t, "subjects.csv",
		"name,code,teacher,credits,classes\n"+
			"Algebra,MATH101,t1,3,c1\n"+
			"Physics,,t1,4,c1\n")

	res, err := imp.Run(context.Background(), "subject", path)
	require.NoError(t, err)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "(row 2)")
}
