package middleware

import (
	"net/http"
	"time"

	"pawpals/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger inyecta un logger con request_id en el contexto y loguea cada request.
func RequestLogger(base logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			l := base.With(map[string]any{"request_id": chimw.GetReqID(r.Context())})
			ctx := logger.WithContext(r.Context(), l)

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"duration_ms": time.Since(start).Milliseconds(),
				"bytes":       ww.BytesWritten(),
			}

			switch {
			case status >= http.StatusInternalServerError:
				l.Error("http request", fields)
			case status >= http.StatusBadRequest:
				l.Warn("http request", fields)
			default:
				l.Info("http request", fields)
			}
		})
	}
}
