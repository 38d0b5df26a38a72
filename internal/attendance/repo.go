package attendance

import (
	"context"
	"database/sql"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

// conflictKey is the pair an attendance row is unique on.
var conflictKey = []string{"student_id", "date"}

// Repository persists attendance data through the generic store client.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// Upsert writes records in one batch; a record for an existing (student, date)
// pair overwrites its status.
func (r *Repository) Upsert(ctx context.Context, records []model.AttendanceRecord) error {
	rows := make([]store.Values, len(records))
	for i, rec := range records {
		rows[i] = store.Values{
			"student_id": rec.StudentID,
			"date":       rec.Date.String(),
			"status":     string(rec.Status),
		}
	}
	return r.db.Upsert(ctx, store.Attendance, rows, conflictKey...)
}

// ByDate returns the records of one date with each student's identity embedded,
// ordered by student id.
func (r *Repository) ByDate(ctx context.Context, date model.Date) ([]model.AttendanceRecord, error) {
	return store.Select(ctx, r.db, store.Query{
		Table:   store.Attendance,
		Columns: []string{"id", "student_id", "date", "status"},
		Join: &store.Join{
			Table:   store.Students,
			On:      "student_id",
			Columns: []string{"name", "roll_number", "class"},
		},
		Filters: []store.Filter{store.Eq("date", date.String())},
		Order:   []store.Ordering{store.Asc("student_id")},
	}, scanJoinedRecord)
}

func scanJoinedRecord(r store.Row) (model.AttendanceRecord, error) {
	var (
		rec               model.AttendanceRecord
		name, roll, class sql.NullString
	)
	if err := r.Scan(&rec.ID, &rec.StudentID, &rec.Date, &rec.Status, &name, &roll, &class); err != nil {
		return rec, err
	}
	if name.Valid {
		rec.Student = &model.StudentRef{Name: name.String, RollNumber: roll.String, Class: class.String}
	}
	return rec, nil
}
