package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type GatewayMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

// NewGatewayMetrics registers the gateway collectors on reg.
func NewGatewayMetrics(reg prometheus.Registerer) *GatewayMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "gateway",
		Name:      "requests_total",
		Help:      "Total number of backend requests issued by the gateway.",
	}, []string{"host", "method", "code"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "gateway",
		Name:      "request_duration_ms",
		Help:      "Backend request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"host"})

	reg.MustRegister(requests, latency)
	return &GatewayMetrics{Requests: requests, LatencyMS: latency}
}

// Observe records one request. A zero code means the request never got a response.
func (m *GatewayMetrics) Observe(host, method string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(host, method, codeLabel(code)).Inc()
	m.LatencyMS.WithLabelValues(host).Observe(float64(elapsed.Milliseconds()))
}

func codeLabel(code int) string {
	if code == 0 {
		return "network_error"
	}
	return strconv.Itoa(code)
}
