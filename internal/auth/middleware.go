package auth

import (
	"log/slog"
	"net/http"

	"github.com/fleetdesk/fleetdesk/internal/platform/httpx"
	"github.com/fleetdesk/fleetdesk/internal/shared"
)

// RequirePrincipal resolves the bearer token on every request and
// stores the principal in context. Requests without a valid token are
// rejected before any handler runs.
func RequirePrincipal(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				// Websocket clients cannot set headers from browsers,
				// so the token may arrive as a query parameter instead.
				if token := r.URL.Query().Get("token"); token != "" {
					header = "Bearer " + token
				}
			}
			if header == "" {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}

			tokenString, err := ExtractToken(header)
			if err != nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}

			p, _, err := service.ResolvePrincipal(r.Context(), tokenString)
			if err != nil {
				if logger != nil {
					logger.Debug("resolve principal", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}

			ctx := shared.ContextWithPrincipal(r.Context(), p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
