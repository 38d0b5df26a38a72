package students

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/validate"
)

var (
	ErrConfirmationRequired = errors.New("deleting a student must be confirmed")
	ErrNotFound             = errors.New("student not found")
)

// Input carries the editable fields of a student from the add and edit forms.
// Roll numbers are not checked for uniqueness.
type Input struct {
	RollNumber string `json:"roll_number" form:"roll_number" validate:"required,max=32"`
	Name       string `json:"name" form:"name" validate:"required,max=120"`
	Class      string `json:"class" form:"class" validate:"required,max=32"`
	Email      string `json:"email" form:"email" validate:"omitempty,email"`
	Phone      string `json:"phone" form:"phone" validate:"omitempty,max=32"`
}

func (in Input) trim() Input {
	return Input{
		RollNumber: strings.TrimSpace(in.RollNumber),
		Name:       strings.TrimSpace(in.Name),
		Class:      strings.TrimSpace(in.Class),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
	}
}

func (in Input) student() model.Student {
	return model.Student{
		RollNumber: in.RollNumber,
		Name:       in.Name,
		Class:      in.Class,
		Email:      in.Email,
		Phone:      in.Phone,
	}
}

// Service manages the roster.
type Service struct {
	repo     *Repository
	validate *validate.Validator
	log      *zap.Logger
}

// NewService creates a service backed by a repository.
func NewService(repo *Repository, v *validate.Validator, log *zap.Logger) *Service {
	return &Service{repo: repo, validate: v, log: log.Named("students")}
}

// List returns the full roster ordered by roll number.
func (s *Service) List(ctx context.Context) ([]model.Student, error) {
	return s.repo.List(ctx)
}

// Search fetches the roster and narrows it with Filter.
func (s *Service) Search(ctx context.Context, query string) ([]model.Student, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, query), nil
}

// Filter keeps the students whose name, roll number or class contains query,
// ignoring case. An empty query keeps everyone. Order is preserved.
func Filter(students []model.Student, query string) []model.Student {
	q := strings.ToLower(query)
	res := make([]model.Student, 0, len(students))
	for _, st := range students {
		if strings.Contains(strings.ToLower(st.Name), q) ||
			strings.Contains(strings.ToLower(st.RollNumber), q) ||
			strings.Contains(strings.ToLower(st.Class), q) {
			res = append(res, st)
		}
	}
	return res
}

// Get returns one student or ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (model.Student, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return model.Student{}, err
	}
	if st == nil {
		return model.Student{}, ErrNotFound
	}
	return *st, nil
}

// Create validates in and adds a student.
func (s *Service) Create(ctx context.Context, in Input) (model.Student, error) {
	in = in.trim()
	if err := s.validate.Struct(in); err != nil {
		return model.Student{}, err
	}
	st, err := s.repo.Create(ctx, in.student())
	if err != nil {
		return model.Student{}, err
	}
	s.log.Info("student created", zap.Int64("id", st.ID), zap.String("roll_number", st.RollNumber))
	return st, nil
}

// Update validates in and overwrites the student with id.
func (s *Service) Update(ctx context.Context, id int64, in Input) (model.Student, error) {
	in = in.trim()
	if err := s.validate.Struct(in); err != nil {
		return model.Student{}, err
	}
	st := in.student()
	st.ID = id
	ok, err := s.repo.Update(ctx, st)
	if err != nil {
		return model.Student{}, err
	}
	if !ok {
		return model.Student{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes the student with id once confirmed, then returns the refreshed roster.
// Removing an id that does not exist is not an error.
func (s *Service) Delete(ctx context.Context, id int64, confirmed bool) ([]model.Student, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("student deleted", zap.Int64("id", id), zap.Int64("rows", n))
	return s.repo.List(ctx)
}
