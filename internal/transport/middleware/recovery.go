package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// panicBody matches the JSON error body of the REST handlers.
const panicBody = `{"error":"internal","message":"internal server error"}` + "\n"

// Recovery returns middleware that turns a handler panic into a 500 with a
// JSON error body and logs it with a stack trace. http.ErrAbortHandler is
// re-raised so net/http can drop the connection silently.
func Recovery(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				v := recover()
				if v == nil {
					return
				}
				if err, ok := v.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(v)
				}

				logger.ErrorContext(r.Context(), "panic recovered",
					slog.Any("error", v),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(panicBody))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
