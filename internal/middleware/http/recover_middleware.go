package http

import (
	"net/http"
	"runtime/debug"

	"civicdesk/internal/service"

	"go.uber.org/zap"
)

// NewRecoverMiddleware turns a handler panic into a 500 envelope.
func NewRecoverMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	log := logger.Named("HttpPanic")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					log.Error("Recovered from panic",
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.Any("panic", p),
						zap.ByteString("stack", debug.Stack()))
					service.WriteHttpError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
