package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AuthEventsTotal counts register/login/logout/validate outcomes (ok, rejected, error).
	AuthEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_events_total",
			Help: "Total number of authentication events by event and outcome",
		},
		[]string{"event", "outcome"},
	)

	// EntryOpsTotal counts phonebook operations by op (create, list, get, update, delete) and outcome.
	EntryOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonebook_entry_ops_total",
			Help: "Total number of phonebook entry operations by op and outcome",
		},
		[]string{"op", "outcome"},
	)

	// AuditPrunedTotal counts audit rows removed by the retention job.
	AuditPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_pruned_rows_total",
			Help: "Total number of audit log rows removed by retention",
		},
	)
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	idPathSegment = regexp.MustCompile(`/([0-9]+|[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12})(/|$)`)
	initOnce      sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AuthEventsTotal, EntryOpsTotal, AuditPrunedTotal)
	})
}

// NormalizePath reduces cardinality by replacing numeric and UUID path segments with {id}.
// E.g. /phonebook/6f1c2a9e-3c1b-4a7e-9a52-0d8f3b1e2c4d -> /phonebook/{id}.
func NormalizePath(path string) string {
	return idPathSegment.ReplaceAllString(path, "/{id}$2")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncAuthEvent increments the auth events counter.
func IncAuthEvent(event, outcome string) {
	AuthEventsTotal.WithLabelValues(event, outcome).Inc()
}

// IncEntryOp increments the entry operations counter.
func IncEntryOp(op, outcome string) {
	EntryOpsTotal.WithLabelValues(op, outcome).Inc()
}

// AddAuditPruned adds n to the pruned audit rows counter.
func AddAuditPruned(n int64) {
	if n > 0 {
		AuditPrunedTotal.Add(float64(n))
	}
}
