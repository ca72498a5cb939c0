package metrics

import (
	"net/http"

	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the recorder's registry in the OpenMetrics exposition format.
// Scrape errors are reported in the response instead of panicking the server.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry(), promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}
