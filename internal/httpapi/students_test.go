package httpapi

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/testutil"
)

type rosterResponse struct {
	Students []model.Student `json:"students"`
	Count    int             `json:"count"`
}

func TestStudentsAPI(t *testing.T) {
	h, db := newServer(t)
	asha := testutil.CreateStudent(t, db, "001", "Asha", "5A")
	testutil.CreateStudent(t, db, "002", "Ben", "5B")

	runTests(t, h, []httpTest{
		{name: "bad id", method: http.MethodGet, path: "/api/students/abc", wantCode: http.StatusBadRequest},
		{name: "missing", method: http.MethodGet, path: "/api/students/999", wantCode: http.StatusNotFound,
			wantData: `{"error":"student not found"}`},
		{name: "delete unconfirmed", method: http.MethodDelete, path: fmt.Sprintf("/api/students/%d", asha.ID),
			wantCode: http.StatusPreconditionRequired, wantData: `{"error":"deleting a student must be confirmed"}`},
		{name: "create invalid", method: http.MethodPost, path: "/api/students", body: `{"roll_number":"003","class":"5A"}`,
			wantCode: http.StatusBadRequest,
			wantData: `{"error":"validation failed","fields":[{"field":"name","error":"this field is required"}]}`},
		{name: "malformed body", method: http.MethodPost, path: "/api/students", body: `{"name":`,
			wantCode: http.StatusBadRequest},
		{name: "update missing", method: http.MethodPut, path: "/api/students/999",
			body: `{"roll_number":"9","name":"X","class":"1A"}`, wantCode: http.StatusNotFound},
	})

	t.Run("list and search", func(t *testing.T) {
		var body rosterResponse
		rec := do(t, h, http.MethodGet, "/api/students", "")
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &body)
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, "Asha", body.Students[0].Name)

		rec = do(t, h, http.MethodGet, "/api/students?q=5b", "")
		decode(t, rec, &body)
		require.Len(t, body.Students, 1)
		assert.Equal(t, "Ben", body.Students[0].Name)

		rec = do(t, h, http.MethodGet, "/api/students?q=zzz", "")
		assert.JSONEq(t, `{"students":[],"count":0}`, rec.Body.String())
	})

	t.Run("create, update, delete", func(t *testing.T) {
		rec := do(t, h, http.MethodPost, "/api/students", `{"roll_number":"003","name":"Cara","class":"6A"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var cara model.Student
		decode(t, rec, &cara)
		path := fmt.Sprintf("/api/students/%d", cara.ID)
		assert.Equal(t, path, rec.Header().Get("Location"))

		rec = do(t, h, http.MethodPut, path, `{"roll_number":"003","name":"Cara N","class":"6B"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var updated model.Student
		decode(t, rec, &updated)
		assert.Equal(t, "6B", updated.Class)

		rec = do(t, h, http.MethodDelete, path+"?confirm=true", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var body rosterResponse
		decode(t, rec, &body)
		assert.Equal(t, 2, body.Count)

		rec = do(t, h, http.MethodGet, path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
