package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics definitions
var (
	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gowinrt_resolutions_total",
		Help: "Total number of declaration resolutions by declaration kind and result.",
	}, []string{"kind", "result"})

	ResolutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gowinrt_resolution_duration_seconds",
		Help:    "Time spent resolving a full name into a declaration.",
		Buckets: prometheus.DefBuckets,
	})

	NativeCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gowinrt_native_calls_total",
		Help: "Total number of native vtable calls by result.",
	}, []string{"result"})

	NativeCallDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "gowinrt_native_call_duration_seconds",
		Help:    "Latency of native vtable calls including argument marshaling.",
		Buckets: prometheus.DefBuckets,
	})

	ScopesOpened = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gowinrt_scopes_opened_total",
		Help: "Total number of metadata scopes opened.",
	})
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveResolution records one resolution of the given declaration kind
func ObserveResolution(kind string, started time.Time, err error) {
	if err != nil {
		kind = "unknown"
	}
	Resolutions.WithLabelValues(kind, result(err)).Inc()
	ResolutionDuration.Observe(time.Since(started).Seconds())
}

// ObserveNativeCall records one native call; failed is true for a failing HRESULT
// as well as for marshaling errors.
func ObserveNativeCall(started time.Time, failed bool) {
	label := ResultOK
	if failed {
		label = ResultError
	}
	NativeCalls.WithLabelValues(label).Inc()
	NativeCallDuration.Observe(time.Since(started).Seconds())
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
