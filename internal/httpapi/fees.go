package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/schooladmin/schooladmin/internal/fees"
	"github.com/schooladmin/schooladmin/internal/model"
	"github.com/schooladmin/schooladmin/internal/validate"
)

type paymentView struct {
	model.FeePayment
	Badge          model.Badge `json:"badge"`
	FeeTypeLabel   string      `json:"fee_type_label"`
	DueDateDisplay string      `json:"due_date_display"`
}

func newPaymentView(p model.FeePayment) paymentView {
	v := paymentView{FeePayment: p, Badge: p.Status.Badge(), FeeTypeLabel: p.FeeType.Label()}
	if p.DueDate != nil {
		v.DueDateDisplay = p.DueDate.Display()
	}
	return v
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

func feeTypeOptions() []option {
	opts := make([]option, 0, len(model.AllFeeTypes()))
	for _, ft := range model.AllFeeTypes() {
		opts = append(opts, option{Value: string(ft), Label: ft.Label()})
	}
	return opts
}

func (h *handler) listFees(c *gin.Context) {
	var f fees.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		h.fail(c, badRequest("%v", err))
		return
	}
	payments, err := h.Ledger.List(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]paymentView, len(payments))
	for i, p := range payments {
		views[i] = newPaymentView(p)
	}
	c.JSON(http.StatusOK, gin.H{"payments": views, "count": len(views)})
}

func (h *handler) feeForm(c *gin.Context) {
	list, err := h.Collector.Students(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"form":      fees.NewForm(h.today()),
		"students":  list,
		"fee_types": feeTypeOptions(),
		"statuses":  model.AllFeeStatuses(),
	})
}

// collectFee records one payment. Any failure is answered with the form as
// received so it can be corrected or simply sent again.
func (h *handler) collectFee(c *gin.Context) {
	var form fees.Form
	if err := c.ShouldBind(&form); err != nil {
		h.fail(c, badRequest("%v", err))
		return
	}
	form = form.WithDefaults(h.today())

	p, err := h.Collector.Collect(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, fees.ErrUnknownStudent) {
			verr := &validate.ValidationError{}
			verr.Add("student_id", "must be an existing student")
			err = verr
		}
		code := status(err)
		if code >= http.StatusInternalServerError {
			h.log.Error("collecting fee failed",
				zap.String("request_id", c.GetString("request_id")),
				zap.Error(err),
			)
		}
		body := errorBody(err)
		body["form"] = form
		c.AbortWithStatusJSON(code, body)
		return
	}
	c.Header("Location", "/api/fees")
	c.JSON(http.StatusCreated, newPaymentView(p))
}
