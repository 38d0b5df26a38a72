package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schooladmin/schooladmin/internal/model"
)

type attendanceView struct {
	model.AttendanceRecord
	Badge model.Badge `json:"badge"`
}

func (h *handler) viewAttendance(c *gin.Context) {
	date, err := h.dateQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	records, err := h.Viewer.ByDate(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]attendanceView, len(records))
	for i, rec := range records {
		views[i] = attendanceView{AttendanceRecord: rec, Badge: rec.Status.Badge()}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "records": views, "count": len(views)})
}

func (h *handler) attendanceSheet(c *gin.Context) {
	date, err := h.dateQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	sheet, err := h.Recorder.Sheet(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":     sheet.Date,
		"students": sheet.Students,
		"statuses": sheet.Statuses,
		"options":  model.AllAttendanceStatuses(),
	})
}

type markRequest struct {
	Date     string            `json:"date"`
	Statuses map[string]string `json:"statuses"`
}

// markAttendance stores a whole sheet. Students left out of statuses are present.
func (h *handler) markAttendance(c *gin.Context) {
	var req markRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, badRequest("%v", err))
		return
	}

	date := h.today()
	if req.Date != "" {
		d, err := model.ParseDate(req.Date)
		if err != nil {
			h.fail(c, badRequest("%v", err))
			return
		}
		date = d
	}

	selected := make(map[int64]model.AttendanceStatus, len(req.Statuses))
	for key, value := range req.Statuses {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			h.fail(c, badRequest("invalid student id %q", key))
			return
		}
		st, err := model.ParseAttendanceStatus(value)
		if err != nil {
			h.fail(c, err)
			return
		}
		selected[id] = st
	}

	sheet, err := h.Recorder.Mark(c.Request.Context(), date, selected)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", "/api/attendance?date="+date.String())
	c.JSON(http.StatusCreated, gin.H{"date": date, "marked": len(sheet.Statuses)})
}
