package fees

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/model"
)

// ErrUnknownStudent is returned when a payment names a student that does not exist.
var ErrUnknownStudent = errors.New("student does not exist")

// StatusAll disables the ledger's status filter.
const StatusAll = "all"

// Roster looks students up for the collection form.
type Roster interface {
	List(ctx context.Context) ([]model.Student, error)
	Get(ctx context.Context, id int64) (*model.Student, error)
}

// Collector records new fee payments.
type Collector struct {
	roster Roster
	repo   *Repository
	log    *zap.Logger
}

// NewCollector creates a collector.
func NewCollector(roster Roster, repo *Repository, log *zap.Logger) *Collector {
	return &Collector{roster: roster, repo: repo, log: log.Named("fees")}
}

// Students returns the students a payment can be recorded for, ordered by roll number.
func (c *Collector) Students(ctx context.Context) ([]model.Student, error) {
	return c.roster.List(ctx)
}

// Collect validates the form and stores exactly one payment.
// On failure nothing is written and the form can be resubmitted as is.
func (c *Collector) Collect(ctx context.Context, form Form) (model.FeePayment, error) {
	p, err := form.Payment()
	if err != nil {
		return model.FeePayment{}, err
	}

	st, err := c.roster.Get(ctx, p.StudentID)
	if err != nil {
		return model.FeePayment{}, err
	}
	if st == nil {
		return model.FeePayment{}, errors.Wrapf(ErrUnknownStudent, "student %d", p.StudentID)
	}

	saved, err := c.repo.Insert(ctx, p)
	if err != nil {
		c.log.Error("recording payment failed", zap.Int64("student_id", p.StudentID), zap.Error(err))
		return model.FeePayment{}, errors.Wrap(err, "recording payment")
	}
	p = saved
	p.Student = &model.StudentRef{Name: st.Name, RollNumber: st.RollNumber}
	c.log.Info("payment recorded",
		zap.Int64("id", p.ID),
		zap.Int64("student_id", p.StudentID),
		zap.Float64("amount", p.Amount),
		zap.String("status", string(p.Status)),
	)
	return p, nil
}

// Filter narrows the ledger. Status is a fee status or "all"; Search matches
// the student's name or roll number.
type Filter struct {
	Status string `form:"status"`
	Search string `form:"search"`
}

func (f Filter) status() (model.FeeStatus, error) {
	s := strings.TrimSpace(f.Status)
	if s == "" || strings.EqualFold(s, StatusAll) {
		return "", nil
	}
	return model.ParseFeeStatus(s)
}

// Ledger lists recorded payments.
type Ledger struct {
	repo *Repository
}

// NewLedger creates a ledger.
func NewLedger(repo *Repository) *Ledger {
	return &Ledger{repo: repo}
}

// List returns payments ordered by due date, latest first. The status filter
// runs in the store, the search runs over the fetched rows.
func (l *Ledger) List(ctx context.Context, f Filter) ([]model.FeePayment, error) {
	status, err := f.status()
	if err != nil {
		return nil, err
	}
	payments, err := l.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return Search(payments, f.Search), nil
}

// Search keeps the payments whose student name or roll number contains query,
// ignoring case. Payments of deleted students only survive an empty query.
func Search(payments []model.FeePayment, query string) []model.FeePayment {
	q := strings.ToLower(query)
	res := make([]model.FeePayment, 0, len(payments))
	for _, p := range payments {
		if q == "" {
			res = append(res, p)
			continue
		}
		if p.Student == nil {
			continue
		}
		if strings.Contains(strings.ToLower(p.Student.Name), q) ||
			strings.Contains(strings.ToLower(p.Student.RollNumber), q) {
			res = append(res, p)
		}
	}
	return res
}
