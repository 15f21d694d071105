package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// ErrAppointmentNotFound is returned when the appointment does not exist or
// belongs to another barbershop.
var ErrAppointmentNotFound = errors.New("payments: appointment not found")

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository persists payment confirmations and the paid flag on
// appointments. Transaction-code one-time use is enforced here through the
// unique (barbershop_id, transaction_code) constraint.
type Repository struct {
	pool rowQuerier
}

// NewRepository creates a repository backed by pgx.
func NewRepository(pool *pgxpool.Pool) *Repository {
	if pool == nil {
		panic("payments: pgx pool required")
	}
	return &Repository{pool: pool}
}

func newRepositoryWithExec(exec rowQuerier) *Repository {
	if exec == nil {
		panic("payments: exec required")
	}
	return &Repository{pool: exec}
}

// Appointment is the slice of the appointments row the confirm flow needs.
type Appointment struct {
	ID           uuid.UUID
	BarbershopID string
	ClientPhone  string
	Paid         bool
	CreatedAt    time.Time
}

// ConfirmationRecord is one accepted payment confirmation.
type ConfirmationRecord struct {
	BarbershopID     string
	AppointmentID    uuid.UUID
	Method           Method
	TransactionCode  string
	Amount           decimal.Decimal
	PhoneDetected    string
	ConfirmationText string
}

// GetAppointment loads an appointment scoped to the barbershop.
func (r *Repository) GetAppointment(ctx context.Context, barbershopID string, id uuid.UUID) (*Appointment, error) {
	query := `
		SELECT id, barbershop_id, client_phone, paid, created_at
		FROM appointments
		WHERE id = $1 AND barbershop_id = $2
	`
	var appt Appointment
	err := r.pool.QueryRow(ctx, query, id, barbershopID).Scan(
		&appt.ID, &appt.BarbershopID, &appt.ClientPhone, &appt.Paid, &appt.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("payments: load appointment: %w", err)
	}
	return &appt, nil
}

// InsertConfirmation records a confirmation, returning false when the
// transaction code was already used for this barbershop.
func (r *Repository) InsertConfirmation(ctx context.Context, rec ConfirmationRecord) (bool, error) {
	query := `
		INSERT INTO payment_confirmations
			(id, barbershop_id, appointment_id, method, transaction_code, amount_mt, phone_detected, confirmation_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (barbershop_id, transaction_code) DO NOTHING
	`
	ct, err := r.pool.Exec(ctx, query,
		uuid.New(),
		rec.BarbershopID,
		rec.AppointmentID,
		string(rec.Method),
		rec.TransactionCode,
		rec.Amount.StringFixed(2),
		rec.PhoneDetected,
		rec.ConfirmationText,
	)
	if err != nil {
		return false, fmt.Errorf("payments: insert confirmation: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// MarkAppointmentPaid flips the paid flag on the appointment.
func (r *Repository) MarkAppointmentPaid(ctx context.Context, barbershopID string, id uuid.UUID) error {
	query := `
		UPDATE appointments
		SET paid = TRUE, updated_at = now()
		WHERE id = $1 AND barbershop_id = $2
	`
	ct, err := r.pool.Exec(ctx, query, id, barbershopID)
	if err != nil {
		return fmt.Errorf("payments: mark paid: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
