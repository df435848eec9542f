package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/ratelimit"
	"github.com/zhouzirui/z-diet/backend/pkg/logger"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// RateLimit counts each request against the caller's budget for function.
// It must run after Authenticate.
func RateLimit(limiter *ratelimit.Limiter, function string) func(http.Handler) http.Handler {
	log := logger.Component("ratelimit")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserID(r.Context())
			if !ok {
				utils.RespondAppError(w, r, apperr.AuthenticationRequired(nil))
				return
			}

			allowed, err := limiter.Allow(r.Context(), userID, function)
			if err != nil {
				utils.RespondAppError(w, r, apperr.RateLimitCheckFailed(err))
				return
			}
			if !allowed {
				log.WithFields(logrus.Fields{
					"user_id":  userID,
					"function": function,
				}).Warn("rate limit exceeded")
				utils.RespondAppError(w, r, apperr.RateLimitExceeded())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
