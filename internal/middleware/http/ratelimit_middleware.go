package http

import (
	"net/http"

	"civicdesk/internal/helper"
	"civicdesk/internal/limiter"
	"civicdesk/internal/service"
)

// CreateRateLimitMiddleware is a generator function that creates a rate-limiting middleware for a specific policy.
// Requests are counted per operator, so it must run after the AuthMiddleware.
func CreateRateLimitMiddleware(limiterManager *limiter.Manager, policyName string) func(http.Handler) http.Handler {
	limiter := limiterManager.Get(policyName)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator, ok := helper.OperatorFromContext(r.Context())
			if !ok {
				service.WriteHttpError(w, http.StatusUnauthorized, "Unauthorized: operator not found in context.")
				return
			}

			allowed, err := limiter.Allow(r.Context(), operator.UserId.Hex())
			if err != nil {
				service.WriteHttpError(w, http.StatusInternalServerError, "Failed to check rate limit.")
				return
			}

			if !allowed {
				service.WriteHttpError(w, http.StatusTooManyRequests, "Too Many Requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
