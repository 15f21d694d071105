package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendamoz/barber-platform/internal/notify"
	"github.com/agendamoz/barber-platform/internal/observability/metrics"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

var paymentsTracer = otel.Tracer("agenda.internal.payments")

// Rejection codes on the confirm wire contract. These are fixed values the
// booking UI maps onto distinct user-facing messages.
const (
	CodeReused           = "CODE_REUSED"
	CodeAlreadyConfirmed = "ALREADY_CONFIRMED"
	CodeValidationFailed = "VALIDATION_FAILED"
)

// ConfirmRequest is the confirm-payment wire request.
type ConfirmRequest struct {
	AppointmentID    string           `json:"appointment_id"`
	BarbershopID     string           `json:"barbershop_id"`
	PaymentMethod    string           `json:"payment_method"`
	PhoneExpected    string           `json:"phone_expected"`
	AmountExpected   decimal.Decimal  `json:"amount_expected"`
	ConfirmationText string           `json:"confirmation_text"`
	TransactionCode  string           `json:"transaction_code"`
	AmountDetected   *decimal.Decimal `json:"amount_detected,omitempty"`
	PhoneDetected    string           `json:"phone_detected,omitempty"`
	MaxHours         int              `json:"max_hours"`
}

// ConfirmResponse is the confirm-payment wire response.
type ConfirmResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// confirmationStore is the slice of Repository the service needs.
type confirmationStore interface {
	GetAppointment(ctx context.Context, barbershopID string, id uuid.UUID) (*Appointment, error)
	InsertConfirmation(ctx context.Context, rec ConfirmationRecord) (bool, error)
	MarkAppointmentPaid(ctx context.Context, barbershopID string, id uuid.UUID) error
}

// receiptEnqueuer publishes post-confirmation receipts.
type receiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, receipt notify.Receipt) error
}

// ConfirmService is the authoritative side of payment confirmation. The
// client-side Validate call is a UX pre-filter only; everything is
// re-extracted and re-validated here before an appointment is marked paid.
type ConfirmService struct {
	store              confirmationStore
	velocity           *VelocityChecker
	receipts           receiptEnqueuer
	metrics            *metrics.PaymentMetrics
	logger             *logging.Logger
	now                func() time.Time
	defaultWindowHours int
}

// NewConfirmService wires the confirm flow. velocity, receipts and metrics
// may be nil; the corresponding steps are skipped.
func NewConfirmService(store confirmationStore, velocity *VelocityChecker, receipts receiptEnqueuer, m *metrics.PaymentMetrics, logger *logging.Logger) *ConfirmService {
	if store == nil {
		panic("payments: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfirmService{
		store:    store,
		velocity: velocity,
		receipts: receipts,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithConfirmWindow sets the fallback confirmation window applied when a
// request does not carry max_hours. Zero disables the fallback.
func (s *ConfirmService) WithConfirmWindow(hours int) *ConfirmService {
	s.defaultWindowHours = hours
	return s
}

// Confirm re-validates the pasted confirmation text against what the
// barbershop expects and, when everything holds, burns the transaction code
// and marks the appointment paid. The returned error is reserved for
// infrastructure failures; every business rejection comes back as a
// structured response.
func (s *ConfirmService) Confirm(ctx context.Context, req ConfirmRequest) (ConfirmResponse, error) {
	start := s.now()
	ctx, span := paymentsTracer.Start(ctx, "payments.confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("agenda.barbershop_id", req.BarbershopID),
		attribute.String("agenda.appointment_id", req.AppointmentID),
	)

	resp, err := s.confirm(ctx, req)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !resp.Success && resp.Code != "":
		outcome = strings.ToLower(resp.Code)
	case !resp.Success:
		outcome = "rejected"
	}
	s.metrics.ObserveConfirm(outcome, s.now().Sub(start).Seconds())
	span.SetAttributes(attribute.String("payments.outcome", outcome))
	return resp, err
}

func (s *ConfirmService) confirm(ctx context.Context, req ConfirmRequest) (ConfirmResponse, error) {
	if req.BarbershopID == "" {
		return rejected("barbershop_id em falta", CodeValidationFailed), nil
	}
	if _, err := uuid.Parse(req.BarbershopID); err != nil {
		return rejected("barbershop_id inválido", CodeValidationFailed), nil
	}
	appointmentID, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return rejected("appointment_id inválido", CodeValidationFailed), nil
	}

	if s.velocity != nil {
		check, err := s.velocity.CheckConfirmAttempts(ctx, req.BarbershopID, req.AppointmentID)
		if err == nil && !check.Allowed {
			return rejected("Demasiadas tentativas de confirmação. Tente novamente mais tarde.", ""), nil
		}
	}

	extracted := Extract(req.ConfirmationText, ParseMethod(req.PaymentMethod))
	manual := strings.ToUpper(strings.TrimSpace(req.TransactionCode))
	if extracted.Code == nil && manual != "" {
		// Extraction found no code; a grammar-valid hand-typed one stands in
		// for it. Amount and recipient still have to come from the message.
		if result := ValidateManualCode(manual); result.Valid {
			extracted.Code = &ExtractedCode{Code: manual, Method: result.Method, Confidence: ConfidenceLow}
			if !extracted.Method.Known() {
				extracted.Method = result.Method
			}
		}
	}
	verdict := Validate(extracted, req.AmountExpected, req.PhoneExpected)
	if !verdict.IsReady {
		return rejected(verdict.ErrorMessage, CodeValidationFailed), nil
	}

	code := extracted.Code.Code
	if manual != "" && manual != code {
		// The user hand-corrected the code; it must still fit a provider grammar.
		result := ValidateManualCode(manual)
		if !result.Valid {
			return rejected("Código da transação com formato inválido.", CodeValidationFailed), nil
		}
		code = manual
	}

	if req.PhoneDetected != "" && req.PhoneDetected != extracted.Phone {
		s.logger.Warn("client-detected phone disagrees with server extraction",
			"barbershop_id", req.BarbershopID,
			"client", req.PhoneDetected,
			"server", extracted.Phone,
		)
	}

	appt, err := s.store.GetAppointment(ctx, req.BarbershopID, appointmentID)
	if errors.Is(err, ErrAppointmentNotFound) {
		return rejected("Marcação não encontrada.", CodeValidationFailed), nil
	}
	if err != nil {
		return ConfirmResponse{}, err
	}
	if appt.Paid {
		return rejected("Esta marcação já tem o pagamento confirmado.", CodeAlreadyConfirmed), nil
	}

	maxHours := req.MaxHours
	if maxHours <= 0 {
		maxHours = s.defaultWindowHours
	}
	if maxHours > 0 {
		window := time.Duration(maxHours) * time.Hour
		if s.now().Sub(appt.CreatedAt) > window {
			return rejected(
				fmt.Sprintf("A janela de confirmação de %d horas expirou.", maxHours),
				CodeValidationFailed,
			), nil
		}
	}

	inserted, err := s.store.InsertConfirmation(ctx, ConfirmationRecord{
		BarbershopID:     req.BarbershopID,
		AppointmentID:    appointmentID,
		Method:           extracted.Method,
		TransactionCode:  code,
		Amount:           *extracted.Amount,
		PhoneDetected:    extracted.Phone,
		ConfirmationText: req.ConfirmationText,
	})
	if err != nil {
		return ConfirmResponse{}, err
	}
	if !inserted {
		return rejected("Este código de transação já foi utilizado.", CodeReused), nil
	}

	if err := s.store.MarkAppointmentPaid(ctx, req.BarbershopID, appointmentID); err != nil {
		return ConfirmResponse{}, err
	}

	s.logger.Info("payment confirmed",
		"barbershop_id", req.BarbershopID,
		"appointment_id", req.AppointmentID,
		"method", extracted.Method,
		"code", code,
	)

	if s.receipts != nil && appt.ClientPhone != "" {
		receipt := notify.Receipt{
			BarbershopID: req.BarbershopID,
			ClientPhone:  appt.ClientPhone,
			AmountMT:     extracted.Amount.StringFixed(2),
			Code:         code,
			Method:       string(extracted.Method),
		}
		if err := s.receipts.EnqueueReceipt(ctx, receipt); err != nil {
			// Delivery is best-effort; the payment stays confirmed.
			s.logger.Error("receipt enqueue failed", "error", err, "appointment_id", req.AppointmentID)
		}
	}

	return ConfirmResponse{Success: true}, nil
}

func rejected(message, code string) ConfirmResponse {
	return ConfirmResponse{Success: false, Error: message, Code: code}
}
