package payments

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"

	"github.com/agendamoz/barber-platform/pkg/logging"
)

// VelocityChecker rate-limits confirmation attempts so a stolen or guessed
// confirmation message cannot be brute-forced against an appointment.
type VelocityChecker struct {
	redis  *redis.Client
	logger *logging.Logger
	config VelocityConfig
}

// VelocityConfig contains the confirm-attempt limits.
type VelocityConfig struct {
	MaxAttemptsPerAppointment int
	WindowHours               int
	Enabled                   bool
}

// DefaultVelocityConfig returns the default limits.
func DefaultVelocityConfig() VelocityConfig {
	return VelocityConfig{
		MaxAttemptsPerAppointment: 10,
		WindowHours:               24,
		Enabled:                   true,
	}
}

// VelocityResult contains the result of a velocity check.
type VelocityResult struct {
	Allowed      bool
	CurrentCount int
	MaxAllowed   int
	WindowExpiry time.Time
	Message      string
}

// NewVelocityChecker creates a redis-backed velocity checker.
func NewVelocityChecker(redisClient *redis.Client, config VelocityConfig, logger *logging.Logger) *VelocityChecker {
	if logger == nil {
		logger = logging.Default()
	}
	return &VelocityChecker{
		redis:  redisClient,
		logger: logger,
		config: config,
	}
}

// CheckConfirmAttempts counts one confirmation attempt against the
// appointment and reports whether it is still allowed. Redis being down
// fails open: payment confirmation must not depend on the rate limiter.
func (v *VelocityChecker) CheckConfirmAttempts(ctx context.Context, barbershopID, appointmentID string) (*VelocityResult, error) {
	ctx, span := paymentsTracer.Start(ctx, "velocity.check_confirm")
	defer span.End()
	span.SetAttributes(
		attribute.String("agenda.barbershop_id", barbershopID),
		attribute.String("agenda.appointment_id", appointmentID),
	)

	if !v.config.Enabled {
		return &VelocityResult{Allowed: true}, nil
	}

	key := fmt.Sprintf("velocity:confirm:%s:%s", barbershopID, appointmentID)
	window := time.Duration(v.config.WindowHours) * time.Hour

	count, expiry, err := v.incrementAndGet(ctx, key, window)
	if err != nil {
		v.logger.Error("velocity check failed", "error", err, "key", key)
		return &VelocityResult{Allowed: true, Message: "velocity check unavailable"}, nil
	}

	result := &VelocityResult{
		Allowed:      count <= v.config.MaxAttemptsPerAppointment,
		CurrentCount: count,
		MaxAllowed:   v.config.MaxAttemptsPerAppointment,
		WindowExpiry: expiry,
	}

	if !result.Allowed {
		result.Message = fmt.Sprintf("exceeded %d confirmation attempts in %d hours", v.config.MaxAttemptsPerAppointment, v.config.WindowHours)
		v.logger.Warn("confirm velocity exceeded",
			"barbershop_id", barbershopID,
			"appointment_id", appointmentID,
			"count", count,
			"max", v.config.MaxAttemptsPerAppointment,
		)
		span.SetAttributes(attribute.Bool("velocity.exceeded", true))
	}

	return result, nil
}

// ResetConfirmAttempts clears the counter for an appointment (admin use).
func (v *VelocityChecker) ResetConfirmAttempts(ctx context.Context, barbershopID, appointmentID string) error {
	key := fmt.Sprintf("velocity:confirm:%s:%s", barbershopID, appointmentID)
	return v.redis.Del(ctx, key).Err()
}

func (v *VelocityChecker) incrementAndGet(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	count, err := v.redis.Incr(ctx, key).Result()
	if err != nil {
		return 0, time.Time{}, err
	}

	// Set expiry only on first increment
	if count == 1 {
		v.redis.Expire(ctx, key, window)
	}

	ttl, err := v.redis.TTL(ctx, key).Result()
	if err != nil {
		ttl = window
	}

	return int(count), time.Now().Add(ttl), nil
}
