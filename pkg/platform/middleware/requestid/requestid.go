// Package requestid assigns every request a UUID for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"rollcall/pkg/requestcontext"
)

// Header is the response header carrying the request ID.
const Header = "X-Request-Id"

// Middleware reuses an incoming request ID when the client supplies one and
// mints a fresh UUID otherwise.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(Header, reqID)
		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
