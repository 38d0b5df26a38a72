package fees

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/validate"
)

var plainAmount = regexp.MustCompile(`^(\d+(\.\d{0,2})?|\.\d{1,2})$`)

// Field is a form value as the user typed it. JSON numbers are accepted and kept verbatim.
type Field string

func (f *Field) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*f = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = Field(s)
	default:
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = Field(n)
	}
	return nil
}

func (f Field) trimmed() string { return strings.TrimSpace(string(f)) }

// Form is the fee collection form in its textual representation.
type Form struct {
	StudentID   Field `json:"student_id" form:"student_id"`
	FeeType     Field `json:"fee_type" form:"fee_type"`
	Amount      Field `json:"amount" form:"amount"`
	PaymentDate Field `json:"payment_date" form:"payment_date"`
	DueDate     Field `json:"due_date" form:"due_date"`
	Status      Field `json:"status" form:"status"`
}

// NewForm returns a blank form with its defaults: tuition, paid today.
func NewForm(today model.Date) Form {
	return Form{
		FeeType:     Field(model.Tuition),
		PaymentDate: Field(today.String()),
		Status:      Field(model.Paid),
	}
}

// WithDefaults fills the fields a submitted form left empty with NewForm's values.
func (f Form) WithDefaults(today model.Date) Form {
	def := NewForm(today)
	if f.FeeType.trimmed() == "" {
		f.FeeType = def.FeeType
	}
	if f.PaymentDate.trimmed() == "" {
		f.PaymentDate = def.PaymentDate
	}
	if f.Status.trimmed() == "" {
		f.Status = def.Status
	}
	return f
}

const requiredText = "this field is required"

// Payment coerces the form into a payment, reporting every invalid field at once.
func (f Form) Payment() (model.FeePayment, error) {
	var (
		p    model.FeePayment
		verr = &validate.ValidationError{}
	)

	switch s := f.StudentID.trimmed(); {
	case s == "":
		verr.Add("student_id", requiredText)
	default:
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			verr.Add("student_id", "must be a valid student id")
		}
		p.StudentID = id
	}

	if s := f.FeeType.trimmed(); s == "" {
		verr.Add("fee_type", requiredText)
	} else if ft, err := model.ParseFeeType(s); err != nil {
		verr.Add("fee_type", "must be one of tuition, transport, exam, library, sports, other")
	} else {
		p.FeeType = ft
	}

	if s := f.Amount.trimmed(); s == "" {
		verr.Add("amount", requiredText)
	} else if amount, err := strconv.ParseFloat(s, 64); err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		verr.Add("amount", "must be a number")
	} else if amount < 0 {
		verr.Add("amount", "must be 0 or more")
	} else if !plainAmount.MatchString(s) {
		verr.Add("amount", "must have at most two decimal places")
	} else {
		p.Amount = amount
	}

	if s := f.PaymentDate.trimmed(); s == "" {
		verr.Add("payment_date", requiredText)
	} else if d, err := model.ParseDate(s); err != nil {
		verr.Add("payment_date", "must be a date formatted YYYY-MM-DD")
	} else {
		p.PaymentDate = d
	}

	if s := f.DueDate.trimmed(); s != "" {
		if d, err := model.ParseDate(s); err != nil {
			verr.Add("due_date", "must be a date formatted YYYY-MM-DD")
		} else {
			p.DueDate = &d
		}
	}

	if s := f.Status.trimmed(); s == "" {
		verr.Add("status", requiredText)
	} else if st, err := model.ParseFeeStatus(s); err != nil {
		verr.Add("status", "must be one of paid, pending, overdue")
	} else {
		p.Status = st
	}

	if err := verr.Err(); err != nil {
		return model.FeePayment{}, err
	}
	return p, nil
}
