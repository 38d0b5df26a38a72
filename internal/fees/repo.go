package fees

import (
	"context"
	"database/sql"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

// Repository persists fee payments through the generic store client.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes one payment and returns it with its id.
func (r *Repository) Insert(ctx context.Context, p model.FeePayment) (model.FeePayment, error) {
	var due any
	if p.DueDate != nil && !p.DueDate.IsZero() {
		due = p.DueDate.String()
	}
	id, err := r.db.Insert(ctx, store.FeePayments, store.Values{
		"student_id":   p.StudentID,
		"amount":       p.Amount,
		"fee_type":     string(p.FeeType),
		"payment_date": p.PaymentDate.String(),
		"due_date":     due,
		"status":       string(p.Status),
	})
	if err != nil {
		return model.FeePayment{}, err
	}
	p.ID = id
	return p, nil
}

// List returns payments with the paying student's name and roll number embedded,
// latest due date first. A non-empty status restricts the rows server-side.
func (r *Repository) List(ctx context.Context, status model.FeeStatus) ([]model.FeePayment, error) {
	q := store.Query{
		Table:   store.FeePayments,
		Columns: []string{"id", "student_id", "amount", "fee_type", "payment_date", "due_date", "status"},
		Join: &store.Join{
			Table:   store.Students,
			On:      "student_id",
			Columns: []string{"name", "roll_number"},
		},
		Order: []store.Ordering{store.Desc("due_date")},
	}
	if status != "" {
		q.Filters = append(q.Filters, store.Eq("status", string(status)))
	}
	return store.Select(ctx, r.db, q, scanJoinedPayment)
}

func scanJoinedPayment(r store.Row) (model.FeePayment, error) {
	var (
		p          model.FeePayment
		name, roll sql.NullString
	)
	err := r.Scan(&p.ID, &p.StudentID, &p.Amount, &p.FeeType, &p.PaymentDate, &p.DueDate, &p.Status, &name, &roll)
	if err != nil {
		return p, err
	}
	if name.Valid {
		p.Student = &model.StudentRef{Name: name.String, RollNumber: roll.String}
	}
	return p, nil
}
