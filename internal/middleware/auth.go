package middleware

import (
	"net/http"
	"strings"

	"github.com/zhouzirui/z-diet/backend/internal/apperr"
	"github.com/zhouzirui/z-diet/backend/internal/auth"
	"github.com/zhouzirui/z-diet/backend/internal/model/audit"
	"github.com/zhouzirui/z-diet/backend/pkg/utils"
)

// Authenticate rejects requests without a valid bearer token and stores the
// user id on the request context. Websocket upgrades may pass the token as
// the access_token query parameter instead.
func Authenticate(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := verifier.VerifyRequest(r)
			if err != nil && isWebsocketUpgrade(r) {
				if token := r.URL.Query().Get("access_token"); token != "" {
					userID, err = verifier.Verify(token)
				}
			}
			if err != nil {
				utils.RespondAppError(w, r, apperr.AuthenticationRequired(err))
				return
			}

			ctx := auth.WithUserID(r.Context(), userID)
			ctx = audit.WithClient(ctx, audit.Client{
				IPAddress: r.RemoteAddr,
				UserAgent: r.UserAgent(),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isWebsocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
