// Package testutil provides fixtures shared by package tests: a migrated
// in-memory database and helpers that seed it.
package testutil

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

var dbSeq atomic.Int64

// OpenDB returns a freshly migrated private in-memory SQLite database, closed when t ends.
func OpenDB(t testing.TB) *store.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=private", dbSeq.Add(1))
	db, err := store.NewDB(store.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("OpenDB() migrate failed: %v", err)
	}
	return db
}

// Logger returns a zap logger writing through t.Log.
func Logger(t testing.TB) *zap.Logger {
	return zaptest.NewLogger(t)
}

// CreateStudent inserts a student row and returns it with its id.
func CreateStudent(t testing.TB, db *store.DB, roll, name, class string) model.Student {
	t.Helper()
	id, err := db.Insert(context.Background(), store.Students, store.Values{
		"roll_number": roll,
		"name":        name,
		"class":       class,
		"email":       "",
		"phone":       "",
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return model.Student{ID: id, RollNumber: roll, Name: name, Class: class}
}

// CreateAttendance inserts one attendance row.
func CreateAttendance(t testing.TB, db *store.DB, studentID int64, date string, status model.AttendanceStatus) {
	t.Helper()
	_, err := db.Insert(context.Background(), store.Attendance, store.Values{
		"student_id": studentID,
		"date":       date,
		"status":     string(status),
	})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
}

// CreatePayment inserts one fee payment row. An empty due date is stored as NULL.
func CreatePayment(t testing.TB, db *store.DB, studentID int64, amount float64, status model.FeeStatus, paymentDate, dueDate string) int64 {
	t.Helper()
	var due any
	if dueDate != "" {
		due = dueDate
	}
	id, err := db.Insert(context.Background(), store.FeePayments, store.Values{
		"student_id":   studentID,
		"amount":       amount,
		"fee_type":     string(model.Tuition),
		"payment_date": paymentDate,
		"due_date":     due,
		"status":       string(status),
	})
	if err != nil {
		t.Fatalf("CreatePayment() failed: %v", err)
	}
	return id
}
