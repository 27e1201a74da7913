package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/GregMSThompson/wifi-access-backend/pkg/logger"
)

// RouterKey guards the hotspot export with a shared secret passed as the
// "key" query parameter. An empty secret rejects every request.
func RouterKey(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.URL.Query().Get("key")
			if secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				logger.FromContext(r.Context()).Warn("router key rejected")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
