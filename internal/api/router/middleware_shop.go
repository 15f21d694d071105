package router

import (
	"net/http"
	"strings"

	"github.com/agendamoz/barber-platform/internal/tenancy"
)

// requireBarbershopID middleware enforces multi-tenancy headers for API requests.
func requireBarbershopID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		shopID := strings.TrimSpace(r.Header.Get(tenancy.HeaderBarbershopID))
		if shopID == "" {
			http.Error(w, "missing "+tenancy.HeaderBarbershopID, http.StatusBadRequest)
			return
		}
		ctx := tenancy.WithBarbershopID(r.Context(), shopID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// barbershopIDFromRequest exposes the tenant id for local handlers.
func barbershopIDFromRequest(r *http.Request) (string, bool) {
	return tenancy.BarbershopIDFromContext(r.Context())
}
