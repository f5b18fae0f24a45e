package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the transcript service.
type Metrics struct {
	// HTTP boundary metrics
	AudioRequests       *prometheus.CounterVec
	RateLimitRejections prometheus.Counter

	// Upstream speech service metrics
	UpstreamCallDuration *prometheus.HistogramVec
	UpstreamCallFailures *prometheus.CounterVec

	// Registry and transcript metrics
	SpeakersEnrolled  prometheus.Gauge
	TranscriptEntries prometheus.Counter
}

// New creates and registers all metrics against the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		AudioRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notulis_audio_requests_total",
			Help: "Total number of audio processing requests by outcome",
		}, []string{"status"}),
		RateLimitRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "notulis_rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		UpstreamCallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "notulis_upstream_call_duration_seconds",
			Help:    "Duration of calls to the cloud speech service",
			Buckets: prometheus.DefBuckets,
		}, []string{"call"}),
		UpstreamCallFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notulis_upstream_call_failures_total",
			Help: "Total number of failed calls to the cloud speech service",
		}, []string{"call"}),
		SpeakersEnrolled: factory.NewGauge(prometheus.GaugeOpts{
			Name: "notulis_speakers_enrolled",
			Help: "Number of currently enrolled speaker profiles",
		}),
		TranscriptEntries: factory.NewCounter(prometheus.CounterOpts{
			Name: "notulis_transcript_entries_total",
			Help: "Total number of transcript entries appended",
		}),
	}
}
