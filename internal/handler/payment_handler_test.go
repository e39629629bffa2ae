package handler_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"cverve/internal/domain"
	"cverve/internal/handler"
	"cverve/internal/ledgerexport"
	"cverve/internal/service"
	"cverve/internal/validator"
	"cverve/mocks"
)

func newPaymentHandler() (*handler.PaymentHandler, *mocks.MockPaymentService, *mocks.MockExportService) {
	paySvc := new(mocks.MockPaymentService)
	exportSvc := new(mocks.MockExportService)
	return handler.NewPaymentHandler(paySvc, exportSvc), paySvc, exportSvc
}

func paymentBody() map[string]string {
	return map[string]string{
		"userId":         "0911223344",
		"screenshotData": "iVBORw0KGgo=",
		"screenshotType": "image/png",
	}
}

func TestPaymentHandler_ProcessPayment_Success(t *testing.T) {
	h, paySvc, _ := newPaymentHandler()

	paySvc.On("ProcessPayment", mock.Anything, mock.MatchedBy(func(in service.ProcessPaymentInput) bool {
		return in.UserID == "0911223344" && in.ScreenshotType == "image/png"
	})).Return(&service.ProcessPaymentOutput{
		NewBalance:    130,
		TransactionID: "FT25ABC123",
		Amount:        50,
		ReceiverName:  "Cverve Trading",
		Source:        domain.ClaimSourceLLM,
	}, nil)

	w, c := jsonRequest(t, http.MethodPost, "/api/v1/process-payment", paymentBody())

	h.ProcessPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	data := resp.Data.(map[string]interface{})
	assert.EqualValues(t, 130, data["newBalance"])
	assert.Equal(t, "FT25ABC123", data["transactionId"])
	paySvc.AssertExpectations(t)
}

func TestPaymentHandler_ProcessPayment_MissingUser(t *testing.T) {
	h, paySvc, _ := newPaymentHandler()

	body := paymentBody()
	delete(body, "userId")
	w, c := jsonRequest(t, http.MethodPost, "/api/v1/process-payment", body)

	h.ProcessPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	paySvc.AssertNotCalled(t, "ProcessPayment", mock.Anything, mock.Anything)
}

func TestPaymentHandler_ProcessPayment_Duplicate(t *testing.T) {
	h, paySvc, _ := newPaymentHandler()

	paySvc.On("ProcessPayment", mock.Anything, mock.Anything).Return(nil, domain.ErrDuplicatePayment)

	w, c := jsonRequest(t, http.MethodPost, "/api/v1/process-payment", paymentBody())

	h.ProcessPayment(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "DUPLICATE_PAYMENT", resp.Error.Code)
	assert.Equal(t, "Payment failed: This payment ID has already been used.", resp.Error.Message)
}

func TestPaymentHandler_ProcessPayment_Rejected(t *testing.T) {
	h, paySvc, _ := newPaymentHandler()

	paySvc.On("ProcessPayment", mock.Anything, mock.Anything).
		Return(nil, &validator.RejectionError{Message: "Payment failed: Invalid amount."})

	w, c := jsonRequest(t, http.MethodPost, "/api/v1/process-payment", paymentBody())

	h.ProcessPayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "PAYMENT_REJECTED", resp.Error.Code)
	assert.Equal(t, "Payment failed: Invalid amount.", resp.Error.Message)
}

func TestPaymentHandler_Export_CSV(t *testing.T) {
	h, _, exportSvc := newPaymentHandler()

	exportSvc.On("ExportPayments", mock.Anything, ledgerexport.FormatCSV, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(2).(io.Writer)
			_, _ = io.WriteString(w, "transaction_id\nFT1\n")
		}).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export?format=csv", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledgerexport.ContentTypeCSV, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	assert.Contains(t, w.Body.String(), "FT1")
	exportSvc.AssertExpectations(t)
}

func TestPaymentHandler_Export_DefaultsToXLSX(t *testing.T) {
	h, _, exportSvc := newPaymentHandler()

	exportSvc.On("ExportPayments", mock.Anything, ledgerexport.FormatXLSX, mock.Anything).Return(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ledgerexport.ContentTypeXLSX, w.Header().Get("Content-Type"))
	exportSvc.AssertExpectations(t)
}

func TestPaymentHandler_Export_BadFormat(t *testing.T) {
	h, _, exportSvc := newPaymentHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export?format=pdf", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	exportSvc.AssertNotCalled(t, "ExportPayments", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentHandler_Export_StreamErrorKeepsStatus(t *testing.T) {
	h, _, exportSvc := newPaymentHandler()

	exportSvc.On("ExportPayments", mock.Anything, ledgerexport.FormatCSV, mock.Anything).Return(errors.New("db gone"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export?format=csv", http.NoBody)

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
