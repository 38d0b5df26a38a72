package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/students"
)

func rosterBody(list []model.Student) gin.H {
	return gin.H{"students": list, "count": len(list)}
}

func (h *handler) listStudents(c *gin.Context) {
	list, err := h.Students.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rosterBody(list))
}

func (h *handler) getStudent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	st, err := h.Students.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *handler) createStudent(c *gin.Context) {
	var in students.Input
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, badRequest("%v", err))
		return
	}
	st, err := h.Students.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Location", "/api/students/"+strconv.FormatInt(st.ID, 10))
	c.JSON(http.StatusCreated, st)
}

func (h *handler) updateStudent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var in students.Input
	if err := c.ShouldBind(&in); err != nil {
		h.fail(c, badRequest("%v", err))
		return
	}
	st, err := h.Students.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// deleteStudent needs ?confirm=true and answers with the refreshed roster.
func (h *handler) deleteStudent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	confirmed, _ := strconv.ParseBool(c.Query("confirm"))
	list, err := h.Students.Delete(c.Request.Context(), id, confirmed)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, rosterBody(list))
}
