package middlewares

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// IPRateLimit is the transport-level per-IP limit. The submission-specific
// minute/day ceilings live in the usecase behind Redis counters; this only
// shields the process from a single noisy client.
func (m *Middlewares) IPRateLimit() func(next http.Handler) http.Handler {
	return httprate.LimitByIP(m.InternalConfig.App.MaxRequestsPerSecond, time.Second)
}
