package gateway

import (
	"net/http"

	autherrors "github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestsTotal counts round trips by response status class
	// ("2xx".."5xx", or "error" for transport failures).
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authclient_gateway_requests_total",
			Help: "Total outbound requests sent through the auth gateway by status class.",
		},
		[]string{"code_class"},
	)

	// InvalidationsTotal counts 401 responses that cleared the stored session.
	InvalidationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "authclient_gateway_invalidations_total",
			Help: "Total 401 responses that cleared stored credentials.",
		},
	)
)

// RegisterMetrics registers the gateway collectors with reg. Registering the
// same collectors twice is not an error.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{RequestsTotal, InvalidationsTotal} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if autherrors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}

func codeClass(resp *http.Response, err error) string {
	if err != nil || resp == nil {
		return "error"
	}
	switch {
	case resp.StatusCode >= 500:
		return "5xx"
	case resp.StatusCode >= 400:
		return "4xx"
	case resp.StatusCode >= 300:
		return "3xx"
	case resp.StatusCode >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
