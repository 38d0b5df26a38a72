package model

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidEnum is returned when a string does not name a known variant.
var ErrInvalidEnum = errors.New("invalid value")

// Badge is the label and color a status is rendered with.
type Badge struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// AttendanceStatus is the state recorded for a student on a date.
type AttendanceStatus string

const (
	Present AttendanceStatus = "present"
	Absent  AttendanceStatus = "absent"
	Late    AttendanceStatus = "late"
)

func AllAttendanceStatuses() []AttendanceStatus {
	return []AttendanceStatus{Present, Absent, Late}
}

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	st := AttendanceStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.Wrapf(ErrInvalidEnum, "attendance status %q", s)
	}
	return st, nil
}

func (s AttendanceStatus) Valid() bool {
	switch s {
	case Present, Absent, Late:
		return true
	}
	return false
}

func (s *AttendanceStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseAttendanceStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s AttendanceStatus) Badge() Badge {
	switch s {
	case Present:
		return Badge{Label: "Present", Color: "green"}
	case Absent:
		return Badge{Label: "Absent", Color: "red"}
	case Late:
		return Badge{Label: "Late", Color: "yellow"}
	}
	panic(fmt.Sprintf("model: no badge for attendance status %q", string(s)))
}

// FeeStatus is the settlement state of a fee payment.
type FeeStatus string

const (
	Paid    FeeStatus = "paid"
	Pending FeeStatus = "pending"
	Overdue FeeStatus = "overdue"
)

func AllFeeStatuses() []FeeStatus {
	return []FeeStatus{Paid, Pending, Overdue}
}

func ParseFeeStatus(s string) (FeeStatus, error) {
	st := FeeStatus(strings.ToLower(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", errors.Wrapf(ErrInvalidEnum, "fee status %q", s)
	}
	return st, nil
}

func (s FeeStatus) Valid() bool {
	switch s {
	case Paid, Pending, Overdue:
		return true
	}
	return false
}

func (s *FeeStatus) UnmarshalText(b []byte) error {
	parsed, err := ParseFeeStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s FeeStatus) Badge() Badge {
	switch s {
	case Paid:
		return Badge{Label: "Paid", Color: "green"}
	case Pending:
		return Badge{Label: "Pending", Color: "yellow"}
	case Overdue:
		return Badge{Label: "Overdue", Color: "red"}
	}
	panic(fmt.Sprintf("model: no badge for fee status %q", string(s)))
}

// FeeType is the category a payment is collected for.
type FeeType string

const (
	Tuition   FeeType = "tuition"
	Transport FeeType = "transport"
	Exam      FeeType = "exam"
	Library   FeeType = "library"
	Sports    FeeType = "sports"
	OtherFee  FeeType = "other"
)

func AllFeeTypes() []FeeType {
	return []FeeType{Tuition, Transport, Exam, Library, Sports, OtherFee}
}

func ParseFeeType(s string) (FeeType, error) {
	ft := FeeType(strings.ToLower(strings.TrimSpace(s)))
	if !ft.Valid() {
		return "", errors.Wrapf(ErrInvalidEnum, "fee type %q", s)
	}
	return ft, nil
}

func (t FeeType) Valid() bool {
	switch t {
	case Tuition, Transport, Exam, Library, Sports, OtherFee:
		return true
	}
	return false
}

func (t *FeeType) UnmarshalText(b []byte) error {
	parsed, err := ParseFeeType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Label is the display name of the fee type.
func (t FeeType) Label() string {
	switch t {
	case Tuition:
		return "Tuition Fee"
	case Transport:
		return "Transport Fee"
	case Exam:
		return "Exam Fee"
	case Library:
		return "Library Fee"
	case Sports:
		return "Sports Fee"
	case OtherFee:
		return "Other"
	}
	panic(fmt.Sprintf("model: no label for fee type %q", string(t)))
}

// Stored values pass through the same parsing as user input, so a row outside
// the enumeration fails the scan instead of reaching Badge or Label.

func (s *AttendanceStatus) Scan(src any) error {
	text, err := scanText(src, "attendance status")
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}

func (s *FeeStatus) Scan(src any) error {
	text, err := scanText(src, "fee status")
	if err != nil {
		return err
	}
	return s.UnmarshalText([]byte(text))
}

func (t *FeeType) Scan(src any) error {
	text, err := scanText(src, "fee type")
	if err != nil {
		return err
	}
	return t.UnmarshalText([]byte(text))
}

func scanText(src any, what string) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", errors.Wrapf(ErrInvalidEnum, "%s is NULL", what)
	}
	return "", errors.Errorf("cannot scan %T into %s", src, what)
}
