package identity

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/transflow/pkg/handlers"
)

// Middleware authenticates every request with provider and attaches the
// resulting Principal to the request context. Requests that fail
// authentication are rejected with 401.
func Middleware(provider Provider, logger *slog.Logger) func(http.Handler) http.Handler {
	logger = logger.With("middleware", "identity")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			p, err := provider.Authenticate(r)
			if err != nil {
				handlers.RespondError(w, logger, http.StatusUnauthorized, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}
