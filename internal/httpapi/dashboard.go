package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *handler) dashboard(c *gin.Context) {
	date, err := h.dateQuery(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Dashboard.Stats(c.Request.Context(), date))
}
