package store_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
	"github.com/schooladmin/schooladmin/internal/testutil"
)

type attendanceRow struct {
	StudentID int64
	Date      model.Date
	Status    string
	Name      sql.NullString
}

func scanAttendance(r store.Row) (attendanceRow, error) {
	var a attendanceRow
	err := r.Scan(&a.StudentID, &a.Date, &a.Status, &a.Name)
	return a, err
}

func attendanceByDate(t *testing.T, db *store.DB, date string) []attendanceRow {
	t.Helper()
	rows, err := store.Select(context.Background(), db, store.Query{
		Table:   store.Attendance,
		Columns: []string{"student_id", "date", "status"},
		Join:    &store.Join{Table: store.Students, On: "student_id", Columns: []string{"name"}},
		Filters: []store.Filter{store.Eq("date", date)},
		Order:   []store.Ordering{store.Asc("student_id")},
	}, scanAttendance)
	require.NoError(t, err)
	return rows
}

func TestSelectOrderingAndEmptyResult(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	testutil.CreateStudent(t, db, "003", "Cara", "5B")
	testutil.CreateStudent(t, db, "001", "Asha", "5A")
	testutil.CreateStudent(t, db, "002", "Ben", "5A")

	rolls, err := store.Select(ctx, db, store.Query{
		Table:   store.Students,
		Columns: []string{"roll_number"},
		Order:   []store.Ordering{store.Asc("roll_number")},
	}, func(r store.Row) (string, error) {
		var s string
		return s, r.Scan(&s)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"001", "002", "003"}, rolls)

	none, err := store.Select(ctx, db, store.Query{
		Table:   store.Students,
		Columns: []string{"roll_number"},
		Filters: []store.Filter{store.Eq("class", "9Z")},
	}, func(r store.Row) (string, error) {
		var s string
		return s, r.Scan(&s)
	})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestUpsertOverwritesOnConflictKey(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	row := func(status string) []store.Values {
		return []store.Values{{"student_id": asha.ID, "date": "2024-01-10", "status": status}}
	}
	require.NoError(t, db.Upsert(ctx, store.Attendance, row("present"), "student_id", "date"))
	require.NoError(t, db.Upsert(ctx, store.Attendance, row("late"), "student_id", "date"))

	rows := attendanceByDate(t, db, "2024-01-10")
	require.Len(t, rows, 1)
	assert.Equal(t, "late", rows[0].Status)
	assert.Equal(t, "Asha", rows[0].Name.String)

	n, err := db.Count(ctx, store.Query{Table: store.Attendance})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpsertBatchKeepsLastDuplicate(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	err := db.Upsert(ctx, store.Attendance, []store.Values{
		{"student_id": asha.ID, "date": "2024-01-10", "status": "present"},
		{"student_id": asha.ID, "date": "2024-01-10", "status": "absent"},
	}, "student_id", "date")
	require.NoError(t, err)

	rows := attendanceByDate(t, db, "2024-01-10")
	require.Len(t, rows, 1)
	assert.Equal(t, "absent", rows[0].Status)
}

func TestUpsertIsAllOrNothing(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	ben := testutil.CreateStudent(t, db, "002", "Ben", "5A")

	// the CHECK constraint rejects the second row, so the first must not land either
	err := db.Upsert(ctx, store.Attendance, []store.Values{
		{"student_id": asha.ID, "date": "2024-01-10", "status": "present"},
		{"student_id": ben.ID, "date": "2024-01-10", "status": "asleep"},
	}, "student_id", "date")
	require.Error(t, err)
	assert.Empty(t, attendanceByDate(t, db, "2024-01-10"))
}

func TestUpsertRejectsMismatchedRows(t *testing.T) {
	db := testutil.OpenDB(t)
	err := db.Upsert(context.Background(), store.Attendance, []store.Values{
		{"student_id": 1, "date": "2024-01-10", "status": "present"},
		{"student_id": 2, "date": "2024-01-10"},
	}, "student_id", "date")
	assert.True(t, errors.Is(err, store.ErrRowShape))
}

func TestJoinKeepsOrphans(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	testutil.CreateAttendance(t, db, asha.ID, "2024-01-10", model.Present)

	n, err := db.Delete(ctx, store.Students, store.Eq("id", asha.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	rows := attendanceByDate(t, db, "2024-01-10")
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Name.Valid)
}

func TestCountAndSum(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	testutil.CreatePayment(t, db, asha.ID, 100.25, model.Pending, "2024-01-01", "")
	testutil.CreatePayment(t, db, asha.ID, 200.50, model.Pending, "2024-02-01", "2024-03-01")
	testutil.CreatePayment(t, db, asha.ID, 999, model.Paid, "2024-02-01", "")

	sum, err := db.Sum(ctx, store.Query{
		Table:   store.FeePayments,
		Filters: []store.Filter{store.Eq("status", "pending")},
	}, "amount")
	require.NoError(t, err)
	assert.InDelta(t, 300.75, sum, 1e-9)

	sum, err = db.Sum(ctx, store.Query{
		Table:   store.FeePayments,
		Filters: []store.Filter{store.Eq("status", "overdue")},
	}, "amount")
	require.NoError(t, err)
	assert.Zero(t, sum)

	n, err := db.Count(ctx, store.Query{
		Table:   store.FeePayments,
		Filters: []store.Filter{store.Eq("payment_date", "2024-02-01"), store.Eq("status", "paid")},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpdate(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")

	n, err := db.Update(ctx, store.Students, store.Values{"class": "6A"}, store.Eq("id", asha.ID))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = db.Update(ctx, store.Students, store.Values{"class": "6A"}, store.Eq("id", asha.ID+100))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGuards(t *testing.T) {
	db := testutil.OpenDB(t)
	ctx := context.Background()

	_, err := db.Delete(ctx, store.Students)
	assert.True(t, errors.Is(err, store.ErrUnfiltered))

	_, err = db.Update(ctx, store.Students, store.Values{"name": "x"})
	assert.True(t, errors.Is(err, store.ErrUnfiltered))

	_, err = db.Count(ctx, store.Query{Table: "students; DROP TABLE students"})
	assert.True(t, errors.Is(err, store.ErrUnknownColumn))

	_, err = db.Insert(ctx, store.Students, store.Values{"nickname": "x"})
	assert.True(t, errors.Is(err, store.ErrUnknownColumn))

	_, err = store.Select(ctx, db, store.Query{
		Table: store.Students,
		Order: []store.Ordering{store.Desc("password")},
	}, func(r store.Row) (int, error) { return 0, nil })
	assert.True(t, errors.Is(err, store.ErrUnknownColumn))
}

func TestOrderingString(t *testing.T) {
	assert.Equal(t, `"roll_number" ASC`, store.Asc("roll_number").String())
	assert.Equal(t, `"due_date" DESC`, store.Desc("due_date").String())
}

func TestSelectScanFailureIsBadRow(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.CreateStudent(t, db, "001", "Asha", "5A")
	decodeErr := errors.New("unexpected value")

	_, err := store.Select(context.Background(), db, store.Query{Table: store.Students},
		func(store.Row) (int, error) { return 0, decodeErr })
	assert.True(t, errors.Is(err, store.ErrBadRow))
	assert.True(t, errors.Is(err, decodeErr))
	assert.Contains(t, err.Error(), "scan students")
}
