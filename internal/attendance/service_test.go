package attendance

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
	"github.com/schooladmin/schooladmin/internal/students"
	"github.com/schooladmin/schooladmin/internal/testutil"
)

var (
	jan10 = model.Date{Year: 2024, Month: 1, Day: 10}
	jan11 = model.Date{Year: 2024, Month: 1, Day: 11}
)

func setup(t *testing.T) (*Recorder, *Viewer, *store.DB) {
	db := testutil.OpenDB(t)
	repo := NewRepository(db)
	rec := NewRecorder(students.NewRepository(db), repo, testutil.Logger(t))
	return rec, NewViewer(repo), db
}

type failingRoster struct{ err error }

func (f failingRoster) List(context.Context) ([]model.Student, error) { return nil, f.err }

func TestSheetDefaultsEveryoneToPresent(t *testing.T) {
	rec, _, db := setup(t)
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	ben := testutil.CreateStudent(t, db, "002", "Ben", "5A")

	sheet, err := rec.Sheet(context.Background(), jan10)
	require.NoError(t, err)
	assert.Equal(t, jan10, sheet.Date)
	assert.Equal(t, map[int64]model.AttendanceStatus{asha.ID: model.Present, ben.ID: model.Present}, sheet.Statuses)
	require.Len(t, sheet.Students, 2)
	assert.Equal(t, "001", sheet.Students[0].RollNumber)
}

func TestSheetSet(t *testing.T) {
	sheet := NewSheet(jan10, []model.Student{{ID: 7}, {ID: 3}})

	require.NoError(t, sheet.Set(7, model.Late))
	assert.True(t, errors.Is(sheet.Set(99, model.Absent), ErrUnknownStudent))
	assert.True(t, errors.Is(sheet.Set(3, model.AttendanceStatus("excused")), model.ErrInvalidEnum))

	assert.Equal(t, []model.AttendanceRecord{
		{StudentID: 3, Date: jan10, Status: model.Present},
		{StudentID: 7, Date: jan10, Status: model.Late},
	}, sheet.Records())
}

func TestMarkAndViewScenario(t *testing.T) {
	rec, view, db := setup(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	ben := testutil.CreateStudent(t, db, "002", "Ben", "5A")

	_, err := rec.Mark(ctx, jan10, map[int64]model.AttendanceStatus{asha.ID: model.Absent})
	require.NoError(t, err)

	got, err := view.ByDate(ctx, jan10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, asha.ID, got[0].StudentID)
	assert.Equal(t, model.Absent, got[0].Status)
	assert.Equal(t, &model.StudentRef{Name: "Asha", RollNumber: "001", Class: "5A"}, got[0].Student)
	assert.Equal(t, ben.ID, got[1].StudentID)
	assert.Equal(t, model.Present, got[1].Status)
	assert.Equal(t, jan10, got[1].Date)

	none, err := view.ByDate(ctx, jan11)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMarkingTwiceOverwrites(t *testing.T) {
	rec, view, db := setup(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	_, err := rec.Mark(ctx, jan10, map[int64]model.AttendanceStatus{asha.ID: model.Absent})
	require.NoError(t, err)
	_, err = rec.Mark(ctx, jan10, map[int64]model.AttendanceStatus{asha.ID: model.Late})
	require.NoError(t, err)

	got, err := view.ByDate(ctx, jan10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.Late, got[0].Status)

	n, err := db.Count(ctx, store.Query{Table: store.Attendance})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestMarkRejectsUnknownStudentWithoutWriting(t *testing.T) {
	rec, view, db := setup(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	_, err := rec.Mark(ctx, jan10, map[int64]model.AttendanceStatus{asha.ID + 1: model.Absent})
	assert.True(t, errors.Is(err, ErrUnknownStudent))

	got, err := view.ByDate(ctx, jan10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSubmitEmptySheetIsNoop(t *testing.T) {
	rec, _, _ := setup(t)
	assert.NoError(t, rec.Submit(context.Background(), NewSheet(jan10, nil)))
}

func TestRosterFailureSurfaces(t *testing.T) {
	db := testutil.OpenDB(t)
	boom := errors.New("store unreachable")
	rec := NewRecorder(failingRoster{err: boom}, NewRepository(db), testutil.Logger(t))

	_, err := rec.Mark(context.Background(), jan10, nil)
	assert.True(t, errors.Is(err, boom))
}
