package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Temutjin2k/taxi-kpis/internal/domain/types"
	wrap "github.com/Temutjin2k/taxi-kpis/pkg/logger/wrapper"
)

var errAuthHeader = errors.New("invalid Authorization header format")

// RequireAdmin lets the request through only with a valid admin bearer token.
// With auth disabled it is a no-op.
func (h *Middleware) RequireAdmin(next http.HandlerFunc) http.Handler {
	if h.tokens == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := wrap.WithAction(r.Context(), "require_admin")

		header := r.Header.Get("Authorization")
		if header == "" {
			errorResponse(w, http.StatusUnauthorized, "authorization required")
			return
		}

		token, err := extractBearerToken(header)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		claims, err := h.tokens.Validate(ctx, token)
		if err != nil {
			h.log.Warn(ctx, "rejected admin token", "err", err.Error())
			if errors.Is(err, types.ErrForbidden) {
				errorResponse(w, http.StatusForbidden, "forbidden: insufficient role")
				return
			}
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		h.log.Debug(ctx, "admin authorized", "subject", claims.Subject)
		next.ServeHTTP(w, r)
	})
}

// --- header parser ---
func extractBearerToken(header string) (string, error) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errAuthHeader
	}
	return token, nil
}
