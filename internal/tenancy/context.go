package tenancy

import (
	"context"
)

type ctxKey string

const shopKey ctxKey = "agenda.barbershop_id"

// HeaderBarbershopID is the HTTP header the booking frontend sets on every
// tenant-scoped request.
const HeaderBarbershopID = "X-Barbershop-ID"

// WithBarbershopID stores the barbershop id in context.
func WithBarbershopID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, shopKey, id)
}

// BarbershopIDFromContext extracts the barbershop id if present.
func BarbershopIDFromContext(ctx context.Context) (string, bool) {
	val := ctx.Value(shopKey)
	if val == nil {
		return "", false
	}
	id, ok := val.(string)
	return id, ok && id != ""
}
