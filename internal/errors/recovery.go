package errors

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/copyleftdev/hopbench/internal/logging"
)

// RecoveryMiddleware turns a panicking status handler into a 500 and logs
// the panic value with the handler's stack.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				err := Errorf("panic: %v", rec).WithOperation(r.Method + " " + r.URL.Path).WithComponent("server")
				logger.Error("recovered from panic", map[string]interface{}{
					"error": err.Error(),
					"stack": strings.Join(err.StackTrace(), "\n"),
				})
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// ErrorHandler logs every response with a 4xx or 5xx status.
func ErrorHandler(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			if status := ww.Status(); status >= http.StatusBadRequest {
				logger.Warn("request error", map[string]interface{}{
					"status": status,
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}
		})
	}
}
