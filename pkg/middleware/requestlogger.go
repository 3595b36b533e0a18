package middleware

import (
	"log/slog"
	"net/http"

	"github.com/kaifgrit/Rifakat/pkg/logger"
)

// RequestLogger stores a request-scoped logger (correlation_id, subject,
// trace_id, span_id) in the context for logger.FromContext.
//
// Mount it after RequestLogging and Tracing, and once more after Auth on
// protected routes so the subject is picked up.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if subject := SubjectFromContext(ctx); subject != "" {
				ctx = logger.WithSubject(ctx, subject)
			}
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, base))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
