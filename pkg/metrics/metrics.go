// Package metrics documents the Prometheus metrics of the couchers client and
// renders them for short-lived processes.
// All metrics are defined in their respective packages (rpc, cache, pagination)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Prefix is shared by every metric of the client.
const Prefix = "couchers_"

// Registry is the default Prometheus registry used by the client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer reads the metrics registered in Registry.
var Gatherer = prometheus.DefaultGatherer

// WriteSummary writes one line per client metric series with a non-zero
// value, sorted by name. Histograms are reported as count and sum.
func WriteSummary(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var lines []string
	for _, mf := range families {
		name := mf.GetName()
		if !strings.HasPrefix(name, Prefix) {
			continue
		}
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			series := name
			if len(labels) > 0 {
				series += "{" + strings.Join(labels, ",") + "}"
			}

			switch {
			case m.GetCounter() != nil && m.GetCounter().GetValue() != 0:
				lines = append(lines, fmt.Sprintf("%s %g", series, m.GetCounter().GetValue()))
			case m.GetGauge() != nil && m.GetGauge().GetValue() != 0:
				lines = append(lines, fmt.Sprintf("%s %g", series, m.GetGauge().GetValue()))
			case m.GetHistogram() != nil && m.GetHistogram().GetSampleCount() != 0:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%.3fs", series, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}

	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Metrics Documentation
//
// RPC Metrics (pkg/rpc):
//   - couchers_rpc_requests_total{method, code} (Counter): Calls by method and status code
//   - couchers_rpc_request_duration_seconds{method} (Histogram): Call duration by method
//   - couchers_rpc_errors_total{class} (Counter): Errors by class (client, server, network)
//
// Query Cache Metrics (pkg/cache):
//   - couchers_query_cache_hits_total (Counter): Reads served fresh from the cache
//   - couchers_query_cache_misses_total{reason} (Counter): Reads that fetched (empty, stale, invalidated)
//   - couchers_query_fetches_total{result} (Counter): Completed fetches by result
//   - couchers_query_invalidations_total (Counter): Entries marked stale by invalidation
//   - couchers_query_rollbacks_total (Counter): Optimistic updates reverted
//   - couchers_query_cache_entries (Gauge): Current number of entries
//   - couchers_query_persist_errors_total{operation} (Counter): Snapshot persist/restore errors
//
// Retry Metrics (pkg/cache):
//   - couchers_query_retries_total (Counter): Fetch retries
//   - couchers_query_retry_backoff_seconds (Histogram): Delay before each retry
//
// Pagination Metrics (pkg/pagination):
//   - couchers_pagination_pages_fetched_total (Counter): Pages fetched by FetchAll and iterators
//   - couchers_pagination_failures_total (Counter): Aggregations aborted by a failed page
//
// Example Prometheus Queries:
//
//   # Query Cache Hit Rate
//   sum(rate(couchers_query_cache_hits_total[5m])) /
//   (sum(rate(couchers_query_cache_hits_total[5m])) + sum(rate(couchers_query_cache_misses_total[5m])))
//
//   # RPC Error Rate by class
//   sum by (class) (rate(couchers_rpc_errors_total[5m]))
//
//   # P95 RPC Latency
//   histogram_quantile(0.95, rate(couchers_rpc_request_duration_seconds_bucket[5m]))
//
//   # Optimistic rollback rate
//   rate(couchers_query_rollbacks_total[5m])
