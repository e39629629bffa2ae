package router_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cverve/internal/auth"
	"cverve/internal/config"
	"cverve/internal/domain"
	"cverve/internal/handler"
	"cverve/internal/ledgerexport"
	"cverve/internal/router"
	"cverve/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }

type fixture struct {
	engine    *gin.Engine
	verifier  *auth.TokenVerifier
	userSvc   *mocks.MockUserService
	exportSvc *mocks.MockExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	verifier, err := auth.NewTokenVerifier(&config.JWTConfig{Secret: "router-secret"})
	require.NoError(t, err)

	userSvc := new(mocks.MockUserService)
	exportSvc := new(mocks.MockExportService)
	engine := router.Setup(
		router.Options{AllowedOrigins: []string{"*"}, MaxBodyBytes: 1024},
		verifier,
		handler.NewExtractionHandler(new(mocks.MockExtractionService)),
		handler.NewPaymentHandler(new(mocks.MockPaymentService), exportSvc),
		handler.NewUserHandler(userSvc),
		handler.NewHealthHandler(okPinger{}),
	)
	return &fixture{engine: engine, verifier: verifier, userSvc: userSvc, exportSvc: exportSvc}
}

func TestSetup_HealthRoutes(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
		f.engine.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestSetup_UserLookupRoute(t *testing.T) {
	f := newFixture(t)
	f.userSvc.On("GetByID", mock.Anything, "0911").Return(&domain.UserBalance{UserID: "0911", Balance: 5}, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/lookup", strings.NewReader(`{"userId":"0911"}`))
	req.Header.Set("Content-Type", "application/json")
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestSetup_BodyLimit(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	body := `{"userId":"` + strings.Repeat("9", 2048) + `"}`
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/users/lookup", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	f.userSvc.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestSetup_ExportRequiresAdmin(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export", http.NoBody)
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	f.exportSvc.AssertNotCalled(t, "ExportPayments", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetup_ExportWithAdminToken(t *testing.T) {
	f := newFixture(t)
	f.exportSvc.On("ExportPayments", mock.Anything, ledgerexport.FormatCSV, mock.Anything).Return(nil)
	token, err := f.verifier.Issue("ops", auth.RoleAdmin, time.Minute)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/admin/payments/export?format=csv", http.NoBody)
	req.Header.Set("Authorization", "Bearer "+token)
	f.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	f.exportSvc.AssertExpectations(t)
}
