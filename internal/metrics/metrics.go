package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	requests    *prometheus.CounterVec
	statusCodes *prometheus.CounterVec
	apiErrors   *prometheus.CounterVec
)

func IncRequest(operation string) {
	requests.WithLabelValues(operation).Inc()
}

func IncStatusCode(code int) {
	statusCodes.WithLabelValues(strconv.Itoa(code)).Inc()
}

func IncAPIError(operation, code string) {
	apiErrors.WithLabelValues(operation, code).Inc()
}

// WriteTextfile dumps all client metrics in the format of the node exporter textfile collector.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}

func init() {
	requests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dep",
		Subsystem: "client",
		Name:      "requests",
		Help:      "Requests sent to the enrollment service per operation.",
	}, []string{"operation"})

	statusCodes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dep",
		Subsystem: "client",
		Name:      "status_codes",
		Help:      "HTTP status codes from the enrollment service.",
	}, []string{"code"})

	apiErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dep",
		Subsystem: "client",
		Name:      "api_errors",
		Help:      "Error codes extracted from enrollment service responses.",
	}, []string{"operation", "code"})

	Registry.MustRegister(
		requests,
		statusCodes,
		apiErrors,
	)
}
