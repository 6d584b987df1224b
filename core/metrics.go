package core

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// MetricsSnapshot captures a point-in-time view of one node's health,
// mirroring what a status/ops endpoint would want to report.
type MetricsSnapshot struct {
	Height        int    `json:"height"`
	LastRoot      string `json:"last_root"`
	PendingTx     int    `json:"pending_tx"`
	PendingAcks   int    `json:"pending_acks"`
	PeerCount     int    `json:"peer_count"`
	MemAlloc      uint64 `json:"mem_alloc"`
	NumGoroutines int    `json:"goroutines"`
	Timestamp     int64  `json:"timestamp"`
}

// HealthLogger turns a Node's running state into both structured log
// events and Prometheus gauges. Grounded on core/system_health_logging.go's
// HealthLogger, narrowed to this system's single node/chain/cache and
// stripped of the coin/ledger/txpool fields that have no analogue here.
type HealthLogger struct {
	node *Node

	registry        *prometheus.Registry
	heightGauge     prometheus.Gauge
	pendingTxGauge  prometheus.Gauge
	pendingAckGauge prometheus.Gauge
	peerCountGauge  prometheus.Gauge
	memAllocGauge   prometheus.Gauge
	goroutineGauge  prometheus.Gauge
}

// NewHealthLogger builds a HealthLogger observing node, with its own
// private Prometheus registry (so multiple nodes in one process, as in
// tests, never collide on metric names).
func NewHealthLogger(node *Node) *HealthLogger {
	reg := prometheus.NewRegistry()
	h := &HealthLogger{node: node, registry: reg}

	h.heightGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_block_height",
		Help: "Current block height of the node's chain.",
	})
	h.pendingTxGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_pending_transactions",
		Help: "Number of transactions admitted but not yet sealed.",
	})
	h.pendingAckGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_pending_acks",
		Help: "Number of packets awaiting acknowledgement.",
	})
	h.peerCountGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_peer_count",
		Help: "Number of peers with a known address.",
	})
	h.memAllocGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_mem_alloc_bytes",
		Help: "Current heap allocation in bytes.",
	})
	h.goroutineGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cachechain_goroutines",
		Help: "Number of running goroutines.",
	})

	reg.MustRegister(
		h.heightGauge,
		h.pendingTxGauge,
		h.pendingAckGauge,
		h.peerCountGauge,
		h.memAllocGauge,
		h.goroutineGauge,
	)
	return h
}

// Snapshot gathers the node's current health into a MetricsSnapshot.
func (h *HealthLogger) Snapshot() MetricsSnapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	root := h.node.chain.LastRoot()
	return MetricsSnapshot{
		Height:        h.node.chain.Height(),
		LastRoot:      hex.EncodeToString(root[:]),
		PendingTx:     h.node.PendingTransactionCount(),
		PendingAcks:   h.node.transport.PendingCount(),
		PeerCount:     h.node.PeerCount(),
		MemAlloc:      mem.Alloc,
		NumGoroutines: runtime.NumGoroutine(),
		Timestamp:     time.Now().Unix(),
	}
}

// Record captures a snapshot and updates the Prometheus gauges.
func (h *HealthLogger) Record() {
	m := h.Snapshot()
	h.heightGauge.Set(float64(m.Height))
	h.pendingTxGauge.Set(float64(m.PendingTx))
	h.pendingAckGauge.Set(float64(m.PendingAcks))
	h.peerCountGauge.Set(float64(m.PeerCount))
	h.memAllocGauge.Set(float64(m.MemAlloc))
	h.goroutineGauge.Set(float64(m.NumGoroutines))
}

// Run records metrics on interval until ctx is canceled.
func (h *HealthLogger) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			h.Record()
		case <-ctx.Done():
			return
		}
	}
}

// StartServer exposes /metrics (Prometheus) and /status (JSON snapshot) on
// addr, returning the *http.Server so the caller controls its lifecycle.
// Routing uses chi rather than a bare http.ServeMux — this is the one HTTP
// surface this system carries, an ops status endpoint rather than a full
// dashboard.
func (h *HealthLogger) StartServer(addr string) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{}))
	r.Get("/status", h.serveStatus)
	srv := &http.Server{Addr: addr, Handler: r}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("metrics: server exited")
		}
	}()
	return srv
}

func (h *HealthLogger) serveStatus(w http.ResponseWriter, r *http.Request) {
	m := h.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(m); err != nil {
		log.WithError(err).WithFields(logrus.Fields{"path": r.URL.Path}).Warn("metrics: failed to write status response")
	}
}

// Shutdown gracefully stops srv.
func (h *HealthLogger) Shutdown(ctx context.Context, srv *http.Server) error {
	return srv.Shutdown(ctx)
}
