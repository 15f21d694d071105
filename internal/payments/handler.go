package payments

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/agendamoz/barber-platform/internal/observability/metrics"
	"github.com/agendamoz/barber-platform/internal/tenancy"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

// Handler exposes the parsing helpers and the confirm RPC over HTTP.
type Handler struct {
	service *ConfirmService
	metrics *metrics.PaymentMetrics
	logger  *logging.Logger
}

// parseRequest is the stateless per-keystroke helper the booking UI calls
// while the client pastes a confirmation message.
type parseRequest struct {
	Message           string          `json:"message"`
	PreferredMethod   string          `json:"preferred_method,omitempty"`
	ExpectedAmount    decimal.Decimal `json:"expected_amount"`
	ExpectedRecipient string          `json:"expected_recipient"`
}

type parseResponse struct {
	Code       *ExtractedCode   `json:"code,omitempty"`
	Amount     *decimal.Decimal `json:"amount,omitempty"`
	Phone      string           `json:"phone,omitempty"`
	Method     Method           `json:"method"`
	Validation ValidationResult `json:"validation"`
}

type manualCodeRequest struct {
	Code string `json:"code"`
}

// NewHandler creates the payments HTTP handler.
func NewHandler(service *ConfirmService, m *metrics.PaymentMetrics, logger *logging.Logger) *Handler {
	if service == nil {
		panic("payments: service required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, metrics: m, logger: logger}
}

// Parse runs extraction plus validation over pasted text without touching
// any state. POST /payments/parse
func (h *Handler) Parse(w http.ResponseWriter, r *http.Request) {
	if _, ok := tenancy.BarbershopIDFromContext(r.Context()); !ok {
		http.Error(w, "missing barbershop context", http.StatusBadRequest)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	extracted := Extract(req.Message, ParseMethod(req.PreferredMethod))
	validation := Validate(extracted, req.ExpectedAmount, req.ExpectedRecipient)
	h.metrics.ObserveParse(string(extracted.Method), validation.IsReady)

	writeJSON(w, http.StatusOK, parseResponse{
		Code:       extracted.Code,
		Amount:     extracted.Amount,
		Phone:      extracted.Phone,
		Method:     extracted.Method,
		Validation: validation,
	})
}

// ManualCode format-checks a hand-typed transaction code.
// POST /payments/manual-code
func (h *Handler) ManualCode(w http.ResponseWriter, r *http.Request) {
	var req manualCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, ValidateManualCode(req.Code))
}

// Confirm is the authoritative confirm-payment RPC.
// POST /payments/confirm
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	shopID, ok := tenancy.BarbershopIDFromContext(r.Context())
	if !ok {
		http.Error(w, "missing barbershop context", http.StatusBadRequest)
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.BarbershopID == "" {
		req.BarbershopID = shopID
	}
	if req.BarbershopID != shopID {
		http.Error(w, "barbershop mismatch", http.StatusForbidden)
		return
	}

	resp, err := h.service.Confirm(r.Context(), req)
	if err != nil {
		h.logger.Error("confirm payment failed", "error", err, "appointment_id", req.AppointmentID)
		http.Error(w, "failed to confirm payment", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
