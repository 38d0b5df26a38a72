// Package dashboard computes the four headline figures of the school.
package dashboard

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
)

// Metric names, also used as the label of the failure counter.
const (
	MetricTotalStudents  = "total_students"
	MetricPresentToday   = "present_today"
	MetricPendingFees    = "pending_fees"
	MetricCollectedToday = "collected_today"
)

// Stats are the dashboard figures. A figure whose query failed reads zero.
type Stats struct {
	Date           model.Date `json:"date"`
	TotalStudents  int64      `json:"total_students"`
	PresentToday   int64      `json:"present_today"`
	PendingFees    float64    `json:"pending_fees"`
	CollectedToday float64    `json:"collected_today"`
}

// Service runs the dashboard queries.
type Service struct {
	db       *store.DB
	log      *zap.Logger
	failures *prometheus.CounterVec
}

// NewService creates a service. The failure counter is registered with reg when reg is not nil.
func NewService(db *store.DB, log *zap.Logger, reg prometheus.Registerer) *Service {
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "schooladmin",
		Subsystem: "dashboard",
		Name:      "metric_failures_total",
		Help:      "Dashboard figures that fell back to zero because their query failed.",
	}, []string{"metric"})
	if reg != nil {
		reg.MustRegister(failures)
	}
	return &Service{db: db, log: log.Named("dashboard"), failures: failures}
}

// Stats computes the figures for today. The four queries run concurrently and
// independently: a failing one is logged and reported as zero while the others
// still count.
func (s *Service) Stats(ctx context.Context, today model.Date) Stats {
	day := today.String()
	stats := Stats{Date: today}

	var wg sync.WaitGroup
	count := func(metric string, dst *int64, q store.Query) {
		defer wg.Done()
		n, err := s.db.Count(ctx, q)
		if err != nil {
			s.fail(metric, err)
			return
		}
		*dst = n
	}
	sum := func(metric string, dst *float64, q store.Query) {
		defer wg.Done()
		v, err := s.db.Sum(ctx, q, "amount")
		if err != nil {
			s.fail(metric, err)
			return
		}
		*dst = model.FromCents(model.Cents(v))
	}

	wg.Add(4)
	go count(MetricTotalStudents, &stats.TotalStudents, store.Query{Table: store.Students})
	go count(MetricPresentToday, &stats.PresentToday, store.Query{
		Table:   store.Attendance,
		Filters: []store.Filter{store.Eq("date", day), store.Eq("status", string(model.Present))},
	})
	go sum(MetricPendingFees, &stats.PendingFees, store.Query{
		Table:   store.FeePayments,
		Filters: []store.Filter{store.Eq("status", string(model.Pending))},
	})
	go sum(MetricCollectedToday, &stats.CollectedToday, store.Query{
		Table:   store.FeePayments,
		Filters: []store.Filter{store.Eq("payment_date", day), store.Eq("status", string(model.Paid))},
	})
	wg.Wait()

	return stats
}

func (s *Service) fail(metric string, err error) {
	s.failures.WithLabelValues(metric).Inc()
	s.log.Warn("dashboard metric unavailable", zap.String("metric", metric), zap.Error(err))
}
