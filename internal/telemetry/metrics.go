package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ProbesCaptured counts probe-request frames accepted by the capture
	// callback.
	ProbesCaptured = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trailsense_edge",
			Name:      "probes_captured_total",
			Help:      "Total number of probe-request frames accepted by the capture callback",
		},
	)

	// ProbesDropped counts frames the capture callback discarded, by reason.
	ProbesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trailsense_edge",
			Name:      "probes_dropped_total",
			Help:      "Total number of frames dropped by the capture callback",
		},
		[]string{"reason"},
	)

	// FingerprintBufferSize is a gauge for the fingerprint buffer's
	// occupancy. It is registered, but no component sets it, so it stays 0.
	FingerprintBufferSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trailsense_edge",
			Name:      "fingerprint_buffer_size",
			Help:      "Number of fingerprint codes buffered at the last sample",
		},
	)

	// PackagesUploaded counts package records that left the node in a
	// successful POST.
	PackagesUploaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trailsense_edge",
			Name:      "packages_uploaded_total",
			Help:      "Total number of package records successfully uploaded",
		},
	)

	// DNSFailures counts uploader cycles in which at least one POST attempt
	// failed DNS resolution (one increment per cycle, not per attempt).
	DNSFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trailsense_edge",
			Name:      "dns_failures_total",
			Help:      "Total number of upload cycles with at least one DNS resolution failure",
		},
	)

	// UploadCycles counts completed uploader cycles, by outcome.
	UploadCycles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trailsense_edge",
			Name:      "upload_cycles_total",
			Help:      "Total number of uploader cycles, by outcome",
		},
		[]string{"outcome"},
	)

	// Ensure metrics are only registered once.
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// It is idempotent and safe to call multiple times.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(ProbesCaptured)
		prometheus.DefaultRegisterer.MustRegister(ProbesDropped)
		prometheus.DefaultRegisterer.MustRegister(FingerprintBufferSize)
		prometheus.DefaultRegisterer.MustRegister(PackagesUploaded)
		prometheus.DefaultRegisterer.MustRegister(DNSFailures)
		prometheus.DefaultRegisterer.MustRegister(UploadCycles)
	})
}

// CaptureRecorder adapts the capture counters to internal/capture's
// Recorder interface (satisfied structurally; telemetry does not import
// capture to avoid a dependency cycle with the supervisor wiring).
type CaptureRecorder struct{}

// Accepted increments ProbesCaptured.
func (CaptureRecorder) Accepted() { ProbesCaptured.Inc() }

// Dropped increments ProbesDropped for the given reason.
func (CaptureRecorder) Dropped(reason string) { ProbesDropped.WithLabelValues(reason).Inc() }

// UploaderRecorder adapts the upload counters to internal/uploader's
// Recorder interface (satisfied structurally, same dependency-direction
// reasoning as CaptureRecorder).
type UploaderRecorder struct{}

// CycleOutcome increments UploadCycles for the given outcome label.
func (UploaderRecorder) CycleOutcome(outcome string) { UploadCycles.WithLabelValues(outcome).Inc() }

// PackagesUploaded adds n to PackagesUploaded.
func (UploaderRecorder) PackagesUploaded(n int) { PackagesUploaded.Add(float64(n)) }

// DNSFailure increments DNSFailures.
func (UploaderRecorder) DNSFailure() { DNSFailures.Inc() }
