// Package metrics exposes Prometheus counters for cmd/mavlink-gw: frames
// received and sent per endpoint address, relay drops and kicks, active
// endpoints, build info, and errors by where they occurred (endpoint
// read/write/dial, Redis publish). Frames the codec skips (CRC mismatch,
// resync, v1 parser rejects) are not counted. The frame and connection
// packages themselves never touch this package — only the ambient gateway
// does.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tellurian-uas/gomavlink/internal/logging"
)

// Prometheus counters
var (
	RxFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavlink_rx_frames_total",
		Help: "Total frames decoded, by endpoint address.",
	}, []string{"endpoint"})
	TxFrames = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavlink_tx_frames_total",
		Help: "Total frames written, by endpoint address.",
	}, []string{"endpoint"})
	RelayDroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_relay_dropped_frames_total",
		Help: "Total frames dropped by the relay hub due to a slow endpoint.",
	})
	RelayKickedEndpoints = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mavlink_relay_kicked_endpoints_total",
		Help: "Total endpoints disconnected due to backpressure kick policy.",
	})
	ActiveEndpoints = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mavlink_relay_active_endpoints",
		Help: "Current number of connected relay endpoints.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mavlink_errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrEndpointRead  = "endpoint_read"
	ErrEndpointWrite = "endpoint_write"
	ErrEndpointDial  = "endpoint_dial"
	ErrRedisPublish  = "redis_publish"
)

// StartHTTP serves Prometheus metrics at /metrics, plus /ready, on addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for easy logging (avoid Prometheus scraping in-process)
var (
	localRx       uint64
	localTx       uint64
	localDrops    uint64
	localKicks    uint64
	localErrors   uint64
	localEndpoint uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	Rx        uint64
	Tx        uint64
	Drops     uint64
	Kicks     uint64
	Errors    uint64
	Endpoints uint64
}

func Snap() Snapshot {
	return Snapshot{
		Rx:        atomic.LoadUint64(&localRx),
		Tx:        atomic.LoadUint64(&localTx),
		Drops:     atomic.LoadUint64(&localDrops),
		Kicks:     atomic.LoadUint64(&localKicks),
		Errors:    atomic.LoadUint64(&localErrors),
		Endpoints: atomic.LoadUint64(&localEndpoint),
	}
}

func IncRx(endpoint string) {
	RxFrames.WithLabelValues(endpoint).Inc()
	atomic.AddUint64(&localRx, 1)
}

func IncTx(endpoint string) {
	TxFrames.WithLabelValues(endpoint).Inc()
	atomic.AddUint64(&localTx, 1)
}

func IncDrop() {
	RelayDroppedFrames.Inc()
	atomic.AddUint64(&localDrops, 1)
}

func IncKick() {
	RelayKickedEndpoints.Inc()
	atomic.AddUint64(&localKicks, 1)
}

func SetActiveEndpoints(n int) {
	ActiveEndpoints.Set(float64(n))
	atomic.StoreUint64(&localEndpoint, uint64(n))
}

func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{ErrEndpointRead, ErrEndpointWrite, ErrEndpointDial, ErrRedisPublish} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}
