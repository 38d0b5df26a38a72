package httpapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/testutil"
)

type ledgerResponse struct {
	Count    int `json:"count"`
	Payments []struct {
		ID             int64             `json:"id"`
		Amount         float64           `json:"amount"`
		Status         model.FeeStatus   `json:"status"`
		Badge          model.Badge       `json:"badge"`
		FeeTypeLabel   string            `json:"fee_type_label"`
		DueDateDisplay string            `json:"due_date_display"`
		Student        *model.StudentRef `json:"students"`
	} `json:"payments"`
}

func TestFeesAPI(t *testing.T) {
	h, db := newServer(t)
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	ben := testutil.CreateStudent(t, db, "002", "Ben", "5B")
	testutil.CreatePayment(t, db, ben.ID, 120, model.Pending, "2024-01-02", "2024-03-05")

	runTests(t, h, []httpTest{
		{name: "unknown status filter", method: http.MethodGet, path: "/api/fees?status=refunded", wantCode: http.StatusBadRequest},
		{name: "no match", method: http.MethodGet, path: "/api/fees?status=overdue", wantCode: http.StatusOK,
			wantData: `{"payments":[],"count":0}`},
	})

	t.Run("form defaults", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/fees/form", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Form     map[string]string `json:"form"`
			Students []model.Student   `json:"students"`
			FeeTypes []option          `json:"fee_types"`
		}
		decode(t, rec, &body)
		assert.Equal(t, "tuition", body.Form["fee_type"])
		assert.Equal(t, "paid", body.Form["status"])
		assert.Equal(t, "2024-01-10", body.Form["payment_date"])
		assert.Len(t, body.Students, 2)
		assert.Equal(t, option{Value: "tuition", Label: "Tuition Fee"}, body.FeeTypes[0])
	})

	t.Run("invalid submission echoes the form", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/fees", fmt.Sprintf(`{"student_id":%d,"amount":"-3"}`, asha.ID))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body struct {
			httpErr
			Form map[string]string `json:"form"`
		}
		decode(t, rec, &body)
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "amount", body.Fields[0].Field)
		assert.Equal(t, "-3", body.Form["amount"])
		assert.Equal(t, "paid", body.Form["status"])
	})

	t.Run("unknown student", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/fees", `{"student_id":999,"amount":10}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body httpErr
		decode(t, rec, &body)
		require.Len(t, body.Fields, 1)
		assert.Equal(t, "student_id", body.Fields[0].Field)
	})

	t.Run("collect as json", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/fees",
			fmt.Sprintf(`{"student_id":"%d","amount":500.00,"due_date":"2024-02-01"}`, asha.ID))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "/api/fees", rec.Header().Get("Location"))

		rec = do(t, h, http.MethodGet, "/api/fees?status=paid&search=ASHA", "")
		var body ledgerResponse
		decode(t, rec, &body)
		require.Equal(t, 1, body.Count)
		p := body.Payments[0]
		assert.Equal(t, 500.0, p.Amount)
		assert.Equal(t, model.Badge{Label: "Paid", Color: "green"}, p.Badge)
		assert.Equal(t, "Tuition Fee", p.FeeTypeLabel)
		assert.Equal(t, "01 Feb 2024", p.DueDateDisplay)
		assert.Equal(t, "001", p.Student.RollNumber)
	})

	t.Run("collect as form", func(t *testing.T) {
		v := url.Values{}
		v.Set("student_id", fmt.Sprint(ben.ID))
		v.Set("amount", "75.5")
		v.Set("fee_type", "transport")
		v.Set("status", "pending")
		req := httptest.NewRequest(http.MethodPost, "/api/fees", strings.NewReader(v.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		rec = do(t, h, http.MethodGet, "/api/fees", "")
		var body ledgerResponse
		decode(t, rec, &body)
		require.Equal(t, 3, body.Count)
		// the payment without a due date has an empty display value
		var noDue int
		for _, p := range body.Payments {
			if p.DueDateDisplay == "" {
				noDue++
			}
		}
		assert.Equal(t, 1, noDue)
	})
}

func TestCollectFeeStoreFailureKeepsForm(t *testing.T) {
	h, db := newServer(t)
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	recreate(t, db, `DROP TABLE fee_payments`)

	rec := do(t, h, http.MethodPost, "/api/fees", fmt.Sprintf(`{"student_id":"%d","amount":"500.00"}`, asha.ID))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body struct {
		httpErr
		Form map[string]string `json:"form"`
	}
	decode(t, rec, &body)
	assert.Contains(t, body.Error, "fee_payments")
	assert.Empty(t, body.Fields)
	assert.Equal(t, fmt.Sprint(asha.ID), body.Form["student_id"])
	assert.Equal(t, "500.00", body.Form["amount"])
	assert.Equal(t, "2024-01-10", body.Form["payment_date"])
}
