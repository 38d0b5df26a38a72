package students

import (
	"context"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

// Repository persists students through the generic store client.
type Repository struct {
	db *store.DB
}

// NewRepository creates a repo.
func NewRepository(db *store.DB) *Repository {
	return &Repository{db: db}
}

func scanStudent(r store.Row) (model.Student, error) {
	var s model.Student
	err := r.Scan(&s.ID, &s.RollNumber, &s.Name, &s.Class, &s.Email, &s.Phone, &s.CreatedAt)
	return s, err
}

// List returns every student ordered by roll number.
func (r *Repository) List(ctx context.Context) ([]model.Student, error) {
	return store.Select(ctx, r.db, store.Query{
		Table: store.Students,
		Order: []store.Ordering{store.Asc("roll_number")},
	}, scanStudent)
}

// Get returns a student by id, or nil when none exists.
func (r *Repository) Get(ctx context.Context, id int64) (*model.Student, error) {
	res, err := store.Select(ctx, r.db, store.Query{
		Table:   store.Students,
		Filters: []store.Filter{store.Eq("id", id)},
	}, scanStudent)
	if err != nil || len(res) == 0 {
		return nil, err
	}
	return &res[0], nil
}

// Create inserts a student and returns the stored row.
func (r *Repository) Create(ctx context.Context, s model.Student) (model.Student, error) {
	id, err := r.db.Insert(ctx, store.Students, values(s))
	if err != nil {
		return model.Student{}, err
	}
	created, err := r.Get(ctx, id)
	if err != nil || created == nil {
		s.ID = id
		return s, err
	}
	return *created, nil
}

// Update overwrites the editable fields of s. It reports false when no row has s.ID.
func (r *Repository) Update(ctx context.Context, s model.Student) (bool, error) {
	n, err := r.db.Update(ctx, store.Students, values(s), store.Eq("id", s.ID))
	return n > 0, err
}

// Delete removes a student by id. Attendance and fee rows of the student are left untouched.
func (r *Repository) Delete(ctx context.Context, id int64) (int64, error) {
	return r.db.Delete(ctx, store.Students, store.Eq("id", id))
}

func values(s model.Student) store.Values {
	return store.Values{
		"roll_number": s.RollNumber,
		"name":        s.Name,
		"class":       s.Class,
		"email":       s.Email,
		"phone":       s.Phone,
	}
}
