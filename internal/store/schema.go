package store

import (
	"context"

	"github.com/pkg/errors"
)

// Table names.
const (
	Students    = "students"
	Attendance  = "attendance"
	FeePayments = "fee_payments"
)

// columns lists, per table, the identifiers a Query may reference.
var columns = map[string][]string{
	Students:    {"id", "roll_number", "name", "class", "email", "phone", "created_at"},
	Attendance:  {"id", "student_id", "date", "status"},
	FeePayments: {"id", "student_id", "amount", "fee_type", "payment_date", "due_date", "status"},
}

// Rows referencing students carry no foreign key: deleting a student leaves
// its attendance and fee rows in place.
var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id          BIGSERIAL PRIMARY KEY,
		roll_number TEXT NOT NULL,
		name        TEXT NOT NULL,
		"class"     TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_roll ON students(roll_number)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         BIGSERIAL PRIMARY KEY,
		student_id BIGINT NOT NULL,
		date       DATE NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('present', 'absent', 'late')),
		UNIQUE (student_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date)`,
	`CREATE TABLE IF NOT EXISTS fee_payments (
		id           BIGSERIAL PRIMARY KEY,
		student_id   BIGINT NOT NULL,
		amount       NUMERIC(12, 2) NOT NULL CHECK (amount >= 0),
		fee_type     TEXT NOT NULL CHECK (fee_type IN ('tuition', 'transport', 'exam', 'library', 'sports', 'other')),
		payment_date DATE NOT NULL,
		due_date     DATE,
		status       TEXT NOT NULL CHECK (status IN ('paid', 'pending', 'overdue'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fee_payments_student ON fee_payments(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fee_payments_status ON fee_payments(status, payment_date)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS students (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		roll_number TEXT NOT NULL,
		name        TEXT NOT NULL,
		"class"     TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_students_roll ON students(roll_number)`,
	`CREATE TABLE IF NOT EXISTS attendance (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id INTEGER NOT NULL,
		date       DATE NOT NULL,
		status     TEXT NOT NULL CHECK (status IN ('present', 'absent', 'late')),
		UNIQUE (student_id, date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance(date)`,
	`CREATE TABLE IF NOT EXISTS fee_payments (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id   INTEGER NOT NULL,
		amount       REAL NOT NULL CHECK (amount >= 0),
		fee_type     TEXT NOT NULL CHECK (fee_type IN ('tuition', 'transport', 'exam', 'library', 'sports', 'other')),
		payment_date DATE NOT NULL,
		due_date     DATE,
		status       TEXT NOT NULL CHECK (status IN ('paid', 'pending', 'overdue'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_fee_payments_student ON fee_payments(student_id)`,
	`CREATE INDEX IF NOT EXISTS idx_fee_payments_status ON fee_payments(status, payment_date)`,
}

// Migrate creates the schema if it does not exist yet.
func (d *DB) Migrate(ctx context.Context) error {
	schema := postgresSchema
	if d.Dialect == SQLite {
		schema = sqliteSchema
	}
	for _, stmt := range schema {
		if _, err := d.Client.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "migrating database")
		}
	}
	return nil
}
