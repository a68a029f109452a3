package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recepito_auth_attempts_total",
		Help: "Authentication operations by outcome.",
	}, []string{"operation", "outcome"})

	SocialToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recepito_social_toggles_total",
		Help: "Social graph toggle operations by resulting state.",
	}, []string{"operation", "state"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recepito_http_requests_total",
		Help: "HTTP requests by method and status.",
	}, []string{"method", "status"})
)

// Handler returns the handler for Prometheus scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
