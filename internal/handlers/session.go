package handlers

import (
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/tokosetara/api/internal/platform/requestctx"
)

// SessionKeyHeader carries the guest checkout session key. A client without
// one is minted a fresh key, echoed back on the response so the client can
// persist it.
const SessionKeyHeader = "X-Session-Key"

const maxSessionKeyLength = 64

// SessionKeyMiddleware resolves or mints the checkout session key and stores
// it on the request context.
func SessionKeyMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(SessionKeyHeader))
			if key == "" || len(key) > maxSessionKeyLength {
				key = ulid.Make().String()
			}
			w.Header().Set(SessionKeyHeader, key)
			next.ServeHTTP(w, r.WithContext(requestctx.WithSessionKey(r.Context(), key)))
		})
	}
}

func sessionKeyFromRequest(r *http.Request) string {
	if key := requestctx.SessionKey(r.Context()); key != "" {
		return key
	}
	return strings.TrimSpace(r.Header.Get(SessionKeyHeader))
}
