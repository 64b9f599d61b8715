package middlewares

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/babylonchain/staking-hub-service/internal/config"
)

// AdminAuthMiddleware guards the admin routes with the bearer token from the
// server config. The routes answer 404 when no token is configured.
func AdminAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return bearerAuth("admin", cfg.Server.AdminToken)
}

// RelayAuthMiddleware guards the routes that act on behalf of a chain sender.
// Only the relayer that observed the call on chain holds the token, so the
// sender and funds of the body are trusted behind it. The routes answer 404
// when no token is configured.
func RelayAuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return bearerAuth("relay", cfg.Server.RelayToken)
}

func bearerAuth(scope, expected string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if expected == "" {
				http.NotFound(w, r)
				return
			}
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(expected)) != 1 {
				log.Ctx(r.Context()).Warn().Str("scope", scope).Msg("request with invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
