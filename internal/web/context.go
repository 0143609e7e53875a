package web

import (
	"net/http"

	"github.com/JonMunkholm/stockmatch/internal/core"
	mw "github.com/JonMunkholm/stockmatch/internal/web/middleware"
)

// withClient records the caller's address and user agent for service logs.
// It must run after TrustedRealIP.
func withClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.ContextWithClient(r.Context(), core.ClientInfo{
			IP:        mw.ClientIP(r),
			UserAgent: r.UserAgent(),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
