package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/novathreads/storefront-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// Ids the storefront frontend or a proxy may hand us. Anything else is
// replaced so log lines stay greppable.
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID tags every storefront request with an id. The id is echoed on the
// response, written back onto the inbound header for later middleware, and
// attached to the request logger.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := inboundRequestID(r)
			r.Header.Set(requestIDHeader, id)
			w.Header().Set(requestIDHeader, id)

			if logg != nil {
				r = r.WithContext(logg.WithRequestID(r.Context(), id))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func inboundRequestID(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); requestIDPattern.MatchString(id) {
		return id
	}
	return uuid.NewString()
}
