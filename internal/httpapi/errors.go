package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/attendance"
	"github.com/schooladmin/schooladmin/internal/fees"
	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/store"
	"github.com/schooladmin/schooladmin/internal/students"
	"github.com/schooladmin/schooladmin/internal/validate"
)

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return errors.Wrapf(errBadRequest, format, args...)
}

// status maps an error to its HTTP status. Anything unrecognised is a store failure.
func status(err error) int {
	var verr *validate.ValidationError
	switch {
	case errors.Is(err, store.ErrBadRow):
		return http.StatusInternalServerError
	case errors.As(err, &verr),
		errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrInvalidEnum),
		errors.Is(err, attendance.ErrUnknownStudent),
		errors.Is(err, fees.ErrUnknownStudent):
		return http.StatusBadRequest
	case errors.Is(err, students.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, students.ErrConfirmationRequired):
		return http.StatusPreconditionRequired
	}
	return http.StatusInternalServerError
}

// errorBody renders err as {error, fields}.
func errorBody(err error) gin.H {
	body := gin.H{"error": err.Error()}
	var verr *validate.ValidationError
	if errors.As(err, &verr) {
		body["error"] = validate.ErrInvalid.Error()
		body["fields"] = verr.Fields
	}
	return body
}

func (h *handler) fail(c *gin.Context, err error) {
	code := status(err)
	if code >= http.StatusInternalServerError {
		h.log.Error("request failed",
			zap.String("route", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(code, errorBody(err))
}

func idParam(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// dateQuery reads the date query parameter, defaulting to today.
func (h *handler) dateQuery(c *gin.Context) (model.Date, error) {
	s := c.Query("date")
	if s == "" {
		return h.today(), nil
	}
	d, err := model.ParseDate(s)
	if err != nil {
		return model.Date{}, badRequest("%v", err)
	}
	return d, nil
}
