package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const adminClaimsKey contextKey = "adminClaims"

// AdminIssuer is the issuer every operator token must carry. Tokens minted
// for other services do not open the admin surface even when they share the
// signing secret.
const AdminIssuer = "agendamoz-admin"

// AdminClaims is the operator token payload. An empty BarbershopID grants
// platform-wide access; a set one confines the operator to that tenant.
type AdminClaims struct {
	BarbershopID string `json:"shop,omitempty"`
	jwt.RegisteredClaims
}

// AllowsBarbershop reports whether the token may act on the given tenant.
func (c AdminClaims) AllowsBarbershop(barbershopID string) bool {
	return c.BarbershopID == "" || c.BarbershopID == barbershopID
}

// AdminJWT enforces an HMAC-signed operator JWT: HS256 only, issued by
// AdminIssuer, not expired. Valid claims are stored on the request context
// for scope checks further down the chain.
func AdminJWT(secret string) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(AdminIssuer),
		jwt.WithExpirationRequired(),
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				http.Error(w, "admin auth disabled", http.StatusUnauthorized)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				http.Error(w, "missing authorization header", http.StatusUnauthorized)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := AdminClaims{}
			token, err := parser.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdminClaims(r.Context(), claims)))
		})
	}
}

// WithAdminClaims attaches operator claims to a context.
func WithAdminClaims(ctx context.Context, claims AdminClaims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, claims)
}

// AdminClaimsFromContext returns admin JWT claims if present.
func AdminClaimsFromContext(ctx context.Context) (AdminClaims, bool) {
	claims, ok := ctx.Value(adminClaimsKey).(AdminClaims)
	return claims, ok
}
