package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	httpmiddleware "github.com/agendamoz/barber-platform/internal/http/middleware"
	"github.com/agendamoz/barber-platform/internal/payments"
	"github.com/agendamoz/barber-platform/internal/tenancy"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

type stubStore struct{}

func (stubStore) GetAppointment(context.Context, string, uuid.UUID) (*payments.Appointment, error) {
	return nil, payments.ErrAppointmentNotFound
}

func (stubStore) InsertConfirmation(context.Context, payments.ConfirmationRecord) (bool, error) {
	return true, nil
}

func (stubStore) MarkAppointmentPaid(context.Context, string, uuid.UUID) error {
	return nil
}

func newTestRouter(t *testing.T, adminSecret string) http.Handler {
	t.Helper()

	logger := logging.Default()
	service := payments.NewConfirmService(stubStore{}, nil, nil, nil, logger)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	velocity := payments.NewVelocityChecker(client, payments.DefaultVelocityConfig(), logger)

	cfg := &Config{
		Logger:          logger,
		PaymentsHandler: payments.NewHandler(service, nil, logger),
		AdminPayments:   payments.NewAdminHandler(velocity, logger),
		AdminAuthSecret: adminSecret,
	}

	return New(cfg)
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := newTestRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}

	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestRouterParseRequiresTenantHeader(t *testing.T) {
	router := newTestRouter(t, "")

	body := bytes.NewBufferString(`{"message":"Confirmado DAT2IVYA7R0. Transferiste 50.00MT"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/parse", body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without tenant header, got %d", rr.Code)
	}
}

func TestRouterParseWithTenantHeader(t *testing.T) {
	router := newTestRouter(t, "")

	body := bytes.NewBufferString(`{"message":"Confirmado DAT2IVYA7R0. Transferiste 50.00MT para 258841234567.","expected_amount":"50.00","expected_recipient":"258841234567"}`)
	req := httptest.NewRequest(http.MethodPost, "/payments/parse", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(tenancy.HeaderBarbershopID, "shop-1")
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Validation struct {
			IsReady bool `json:"is_ready"`
		} `json:"validation"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode parse response: %v", err)
	}
	if !resp.Validation.IsReady {
		t.Errorf("expected validation ready")
	}
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(t, "test-secret")

	req := httptest.NewRequest(http.MethodDelete, "/admin/barbershops/shop-1/appointments/appt-1/velocity", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}
}

func TestRouterAdminVelocityReset(t *testing.T) {
	router := newTestRouter(t, "test-secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    httpmiddleware.AdminIssuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/barbershops/shop-1/appointments/appt-1/velocity", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", rr.Code, rr.Body.String())
	}
}
