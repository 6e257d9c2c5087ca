package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Viperzz6988/NurvioV5-admin/pkg/logger"
)

type loggedResponse struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (lr *loggedResponse) WriteHeader(code int) {
	lr.status = code
	lr.ResponseWriter.WriteHeader(code)
}

func (lr *loggedResponse) Write(b []byte) (int, error) {
	n, err := lr.ResponseWriter.Write(b)
	lr.bytes += n
	return n, err
}

// RequestLogging emits one structured line per request and threads a
// correlation ID (inbound X-Correlation-ID, or a fresh UUID) through the
// request context, the response header, and every downstream log line.
// Server errors log at error level so they surface in alerting.
func RequestLogging(l *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			correlationID := r.Header.Get("X-Correlation-ID")
			if correlationID == "" {
				correlationID = uuid.New().String()
			}

			ctx := logger.WithCorrelationID(r.Context(), correlationID)
			ctx = logger.NewContext(ctx, logger.WithContext(ctx, l))
			r = r.WithContext(ctx)
			w.Header().Set("X-Correlation-ID", correlationID)

			lr := &loggedResponse{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(lr, r)

			level := slog.LevelInfo
			if lr.status >= 500 {
				level = slog.LevelError
			}

			l.LogAttrs(ctx, level, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", lr.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", lr.bytes),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("user_agent", r.UserAgent()),
				slog.String("correlation_id", correlationID),
			)
		})
	}
}
