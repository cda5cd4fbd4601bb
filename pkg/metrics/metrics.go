// Package metrics counts download outcomes with Prometheus collectors and can
// dump them in the node_exporter textfile format at the end of a run.
package metrics

import (
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/glorpus-work/multifetch/pkg/errors"
	"github.com/glorpus-work/multifetch/pkg/model"
)

// Namespace prefixes every metric name.
const Namespace = "multifetch"

// Collector implements orchestrator.Observer on a private registry.
type Collector struct {
	registry *prometheus.Registry

	downloadsTotal *prometheus.CounterVec
	failuresTotal  *prometheus.CounterVec
	attemptsTotal  *prometheus.CounterVec
	bytesTotal     *prometheus.CounterVec
	fileSizeBytes  *prometheus.HistogramVec
}

// New creates a Collector with its collectors registered.
func New() *Collector {
	c := &Collector{registry: prometheus.NewRegistry()}

	c.downloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "downloads_total",
			Help:      "Requests by protocol and final status.",
		},
		[]string{"protocol", "status"},
	)
	c.failuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "failures_total",
			Help:      "Failed or skipped requests by protocol and reason.",
		},
		[]string{"protocol", "reason"},
	)
	c.attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "attempts_total",
			Help:      "Transfer attempts by protocol.",
		},
		[]string{"protocol"},
	)
	c.bytesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "bytes_total",
			Help:      "Bytes written by successful downloads.",
		},
		[]string{"protocol"},
	)
	// 1KB .. 1GB
	c.fileSizeBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "file_size_bytes",
			Help:      "Size of downloaded files.",
			Buckets:   prometheus.ExponentialBuckets(1024, 10, 7),
		},
		[]string{"protocol"},
	)

	c.registry.MustRegister(c.downloadsTotal, c.failuresTotal, c.attemptsTotal, c.bytesTotal, c.fileSizeBytes)
	return c
}

// Registry exposes the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Observe records one outcome.
func (c *Collector) Observe(out model.Outcome) {
	protocol := out.Request.Scheme()
	if protocol == "" {
		protocol = "unknown"
	}

	c.downloadsTotal.WithLabelValues(protocol, out.Status.String()).Inc()
	if out.Attempts > 0 {
		c.attemptsTotal.WithLabelValues(protocol).Add(float64(out.Attempts))
	}

	if out.Status == model.StatusSucceeded {
		c.bytesTotal.WithLabelValues(protocol).Add(float64(out.Bytes))
		c.fileSizeBytes.WithLabelValues(protocol).Observe(float64(out.Bytes))
		return
	}
	c.failuresTotal.WithLabelValues(protocol, Reason(out.Err)).Inc()
}

// Reason maps a download error to a short label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "none"
	case stderrors.Is(err, errors.ErrUnsupportedProtocol):
		return "unsupported_protocol"
	case stderrors.Is(err, errors.ErrInvalidURI):
		return "invalid_uri"
	case stderrors.Is(err, errors.ErrDirectoryCreate):
		return "directory_create"
	case stderrors.Is(err, errors.ErrRetriesExhausted):
		return "retries_exhausted"
	case stderrors.Is(err, errors.ErrCancelled):
		return "cancelled"
	default:
		return "unexpected"
	}
}

// WriteTextfile writes every metric to path in the Prometheus text format.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
