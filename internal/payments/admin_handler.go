package payments

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agendamoz/barber-platform/internal/http/middleware"
	"github.com/agendamoz/barber-platform/pkg/logging"
)

// AdminHandler exposes operator endpoints for the anti-fraud limits.
type AdminHandler struct {
	velocity *VelocityChecker
	logger   *logging.Logger
}

// NewAdminHandler creates the admin payments handler.
func NewAdminHandler(velocity *VelocityChecker, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{velocity: velocity, logger: logger}
}

// ResetVelocity clears the confirm-attempt counter for one appointment so a
// legitimate client locked out by retries can confirm again.
// DELETE /admin/barbershops/{barbershopID}/appointments/{appointmentID}/velocity
func (h *AdminHandler) ResetVelocity(w http.ResponseWriter, r *http.Request) {
	barbershopID := chi.URLParam(r, "barbershopID")
	appointmentID := chi.URLParam(r, "appointmentID")
	if barbershopID == "" || appointmentID == "" {
		http.Error(w, "missing barbershop or appointment id", http.StatusBadRequest)
		return
	}
	if claims, ok := middleware.AdminClaimsFromContext(r.Context()); ok && !claims.AllowsBarbershop(barbershopID) {
		http.Error(w, "token not scoped to this barbershop", http.StatusForbidden)
		return
	}
	if err := h.velocity.ResetConfirmAttempts(r.Context(), barbershopID, appointmentID); err != nil {
		h.logger.Error("velocity reset failed", "error", err,
			"barbershop_id", barbershopID, "appointment_id", appointmentID)
		http.Error(w, "failed to reset attempts", http.StatusInternalServerError)
		return
	}
	h.logger.Info("confirm attempts reset",
		"barbershop_id", barbershopID, "appointment_id", appointmentID)
	w.WriteHeader(http.StatusNoContent)
}
