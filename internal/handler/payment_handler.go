package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cverve/internal/ledgerexport"
	"cverve/internal/service"
)

// PaymentHandler handles payment verification and ledger export endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
	exportService  service.ExportService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService service.PaymentService, exportService service.ExportService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, exportService: exportService}
}

// ProcessPayment handles POST /api/v1/process-payment
// @Summary Verify a payment screenshot and credit the user
// @Description Reads receiver, amount and transaction id from the screenshot, validates them and records the payment once
// @Tags payments
// @Accept json
// @Produce json
// @Param request body ProcessPaymentRequest true "Payment proof"
// @Success 200 {object} Response{data=service.ProcessPaymentOutput} "Payment credited"
// @Failure 400 {object} ErrorResponseBody "Rejected or unreadable payment"
// @Failure 409 {object} ErrorResponseBody "Payment id already used"
// @Router /process-payment [post]
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var input service.ProcessPaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	out, err := h.paymentService.ProcessPayment(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, out)
}

// Export handles GET /api/v1/admin/payments/export
// @Summary Export the payment ledger
// @Description Download every recorded payment as xlsx (default) or csv (admin only)
// @Tags payments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "Export format" Enums(xlsx, csv) default(xlsx)
// @Success 200 {file} binary "Ledger file"
// @Failure 400 {object} ErrorResponseBody "Unsupported format"
// @Failure 401 {object} ErrorResponseBody "Unauthorized"
// @Failure 403 {object} ErrorResponseBody "Forbidden - admin only"
// @Security BearerAuth
// @Router /admin/payments/export [get]
func (h *PaymentHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", ledgerexport.FormatXLSX)
	if format != ledgerexport.FormatXLSX && format != ledgerexport.FormatCSV {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "format must be xlsx or csv")
		return
	}

	filename := ledgerexport.BuildFilename("payments", format, time.Now())
	c.Header("Content-Type", ledgerexport.ContentType(format))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := h.exportService.ExportPayments(c.Request.Context(), format, c.Writer); err != nil {
		// Headers are already sent; the client sees a truncated file.
		requestID, _ := c.Get("request_id")
		log.Printf("[%s] PaymentHandler.Export: %v", requestID, err)
	}
}
