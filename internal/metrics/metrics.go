// Package metrics collects Prometheus metrics for the sync engine and the
// remote store's RPC surface, and serves them over HTTP.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Sync cycle results used as label values.
const (
	ResultOK         = "ok"
	ResultOffline    = "offline"
	ResultFailed     = "failed"
	ResultInProgress = "in_progress"
)

// SyncRecorder is what the sync engine reports to.
type SyncRecorder interface {
	RecordCycle(result string, d time.Duration)
	RecordPushed(n int)
	RecordPushFailure()
	SetPending(n int)
}

// NopSync discards sync metrics.
type NopSync struct{}

func (NopSync) RecordCycle(string, time.Duration) {}
func (NopSync) RecordPushed(int)                  {}
func (NopSync) RecordPushFailure()                {}
func (NopSync) SetPending(int)                    {}

// SyncCollector implements SyncRecorder with Prometheus metrics.
type SyncCollector struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	pushed        prometheus.Counter
	pushFailures  prometheus.Counter
	pending       prometheus.Gauge
}

// NewSyncCollector creates the collector and registers it on reg.
func NewSyncCollector(reg prometheus.Registerer) *SyncCollector {
	c := &SyncCollector{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "offsync_sync_cycles_total",
			Help: "Sync reconciliation cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "offsync_sync_cycle_duration_seconds",
			Help:    "Duration of sync reconciliation cycles.",
			Buckets: prometheus.DefBuckets,
		}),
		pushed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offsync_sync_records_pushed_total",
			Help: "Records acknowledged by the remote store and marked synchronized.",
		}),
		pushFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "offsync_sync_push_failures_total",
			Help: "Failed remote upserts.",
		}),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "offsync_sync_pending_records",
			Help: "Unsynchronized records left after the last cycle.",
		}),
	}

	reg.MustRegister(c.cycles, c.cycleDuration, c.pushed, c.pushFailures, c.pending)
	return c
}

func (c *SyncCollector) RecordCycle(result string, d time.Duration) {
	c.cycles.WithLabelValues(result).Inc()
	c.cycleDuration.Observe(d.Seconds())
}

func (c *SyncCollector) RecordPushed(n int) {
	c.pushed.Add(float64(n))
}

func (c *SyncCollector) RecordPushFailure() {
	c.pushFailures.Inc()
}

func (c *SyncCollector) SetPending(n int) {
	c.pending.Set(float64(n))
}

// RPCCollector counts and times server RPCs.
type RPCCollector struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewRPCCollector creates the collector and registers it on reg.
func NewRPCCollector(reg prometheus.Registerer) *RPCCollector {
	c := &RPCCollector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "offsync_rpc_requests_total",
			Help: "RPCs handled by method and status code.",
		}, []string{"method", "code"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "offsync_rpc_latency_seconds",
			Help:    "RPC handling latency by method.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"}),
	}
	reg.MustRegister(c.requests, c.latency)
	return c
}

// RecordRPC records one finished call.
func (c *RPCCollector) RecordRPC(method string, code string, d time.Duration) {
	c.requests.WithLabelValues(method, code).Inc()
	c.latency.WithLabelValues(method).Observe(d.Seconds())
}
