package attendance

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/model"
)

// ErrUnknownStudent is returned when a status is set for a student not on the sheet.
var ErrUnknownStudent = errors.New("student is not on the attendance sheet")

// Roster lists every student ordered by roll number.
type Roster interface {
	List(ctx context.Context) ([]model.Student, error)
}

// Sheet is the attendance being prepared for one date: every student on the
// roster with the status currently selected for them.
type Sheet struct {
	Date     model.Date                       `json:"date"`
	Students []model.Student                  `json:"students"`
	Statuses map[int64]model.AttendanceStatus `json:"statuses"`
}

// NewSheet returns a sheet marking every student present.
func NewSheet(date model.Date, students []model.Student) *Sheet {
	statuses := make(map[int64]model.AttendanceStatus, len(students))
	for _, st := range students {
		statuses[st.ID] = model.Present
	}
	return &Sheet{Date: date, Students: students, Statuses: statuses}
}

// Set selects status for the student with id.
func (s *Sheet) Set(studentID int64, status model.AttendanceStatus) error {
	if !status.Valid() {
		return errors.Wrapf(model.ErrInvalidEnum, "attendance status %q", string(status))
	}
	if _, ok := s.Statuses[studentID]; !ok {
		return errors.Wrapf(ErrUnknownStudent, "student %d", studentID)
	}
	s.Statuses[studentID] = status
	return nil
}

// Records turns the sheet into one record per student, ordered by student id.
func (s *Sheet) Records() []model.AttendanceRecord {
	ids := make([]int64, 0, len(s.Statuses))
	for id := range s.Statuses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	records := make([]model.AttendanceRecord, len(ids))
	for i, id := range ids {
		records[i] = model.AttendanceRecord{StudentID: id, Date: s.Date, Status: s.Statuses[id]}
	}
	return records
}

// Recorder prepares and submits attendance sheets.
type Recorder struct {
	roster Roster
	repo   *Repository
	log    *zap.Logger
}

// NewRecorder creates a recorder.
func NewRecorder(roster Roster, repo *Repository, log *zap.Logger) *Recorder {
	return &Recorder{roster: roster, repo: repo, log: log.Named("attendance")}
}

// Sheet fetches the roster and returns a fresh sheet for date with everyone present.
func (r *Recorder) Sheet(ctx context.Context, date model.Date) (*Sheet, error) {
	students, err := r.roster.List(ctx)
	if err != nil {
		return nil, err
	}
	return NewSheet(date, students), nil
}

// Submit stores the sheet as a single batch. Marking a date again overwrites the
// earlier statuses instead of adding rows.
func (r *Recorder) Submit(ctx context.Context, sheet *Sheet) error {
	records := sheet.Records()
	if len(records) == 0 {
		return nil
	}
	if err := r.repo.Upsert(ctx, records); err != nil {
		r.log.Error("marking attendance failed", zap.Stringer("date", sheet.Date), zap.Error(err))
		return errors.Wrap(err, "marking attendance")
	}
	r.log.Info("attendance marked", zap.Stringer("date", sheet.Date), zap.Int("students", len(records)))
	return nil
}

// Mark builds the sheet for date, applies the selected statuses and submits it.
// Students without a selection are marked present.
func (r *Recorder) Mark(ctx context.Context, date model.Date, selected map[int64]model.AttendanceStatus) (*Sheet, error) {
	sheet, err := r.Sheet(ctx, date)
	if err != nil {
		return nil, err
	}
	for id, status := range selected {
		if err := sheet.Set(id, status); err != nil {
			return nil, err
		}
	}
	if err := r.Submit(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Viewer reads stored attendance.
type Viewer struct {
	repo *Repository
}

// NewViewer creates a viewer.
func NewViewer(repo *Repository) *Viewer {
	return &Viewer{repo: repo}
}

// ByDate returns the attendance of date with student identity, ordered by student id.
// A date with no attendance yields an empty slice.
func (v *Viewer) ByDate(ctx context.Context, date model.Date) ([]model.AttendanceRecord, error) {
	return v.repo.ByDate(ctx, date)
}
