package handler

import (
	"fmt"
	"net/http"

	"github.com/athens-bank/athens/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "athens_sign_ups_total{status=\"success\"} %d\n", snap.SignUpsSucceeded)
	writeMetric(w, "athens_sign_ups_total{status=\"failed\"} %d\n", snap.SignUpsFailed)
	writeMetric(w, "athens_sign_ins_total{status=\"success\"} %d\n", snap.SignInsSucceeded)
	writeMetric(w, "athens_sign_ins_total{status=\"failed\"} %d\n", snap.SignInsFailed)
	writeMetric(w, "athens_sign_outs_total %d\n", snap.SignOuts)

	writeMetric(w, "athens_link_tokens_issued_total %d\n", snap.LinkTokensIssued)
	writeMetric(w, "athens_banks_linked_total{status=\"success\"} %d\n", snap.BanksLinked)
	writeMetric(w, "athens_banks_linked_total{status=\"failed\"} %d\n", snap.BankLinksFailed)
	writeMetric(w, "athens_exchange_duration_seconds_count %d\n", snap.ExchangeDurationCount)
	writeMetric(w, "athens_exchange_duration_seconds_sum %.6f\n", float64(snap.ExchangeDurationTotalNs)/1e9)

	writeMetric(w, "athens_home_cache_hits_total %d\n", snap.HomeCacheHits)
	writeMetric(w, "athens_home_cache_misses_total %d\n", snap.HomeCacheMisses)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
