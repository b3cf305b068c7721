package telemetry

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

const namespace = "speechgateway"

// Outcome labels for synthesis metrics.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeUpstreamError = "upstream_error"
	OutcomeNoAudio       = "no_audio"
	OutcomeInvalidAudio  = "invalid_audio"
	OutcomeInternal      = "internal"
)

type Metrics struct {
	registry *prometheus.Registry

	synthesisTotal    *prometheus.CounterVec
	synthesisDuration *prometheus.HistogramVec
	linesSkipped      *prometheus.CounterVec
}

// NewMetrics registers the service collectors plus Go runtime collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		synthesisTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "synthesis_total",
				Help:      "Total number of speech requests by outcome",
			},
			[]string{"outcome"},
		),
		synthesisDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "synthesis_duration_seconds",
				Help:      "Time from request validation to reassembled audio",
				Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"outcome"},
		),
		linesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_lines_skipped_total",
				Help:      "Upstream stream lines that carried no usable audio",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.synthesisTotal,
		m.synthesisDuration,
		m.linesSkipped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSkip counts one skipped stream line. Blank lines are not counted.
func (m *Metrics) ObserveSkip(reason tts.SkipReason) {
	if reason == tts.SkipEmpty || reason == tts.SkipNone {
		return
	}
	m.linesSkipped.WithLabelValues(string(reason)).Inc()
}

func (m *Metrics) observeSynthesis(outcome string, seconds float64) {
	m.synthesisTotal.WithLabelValues(outcome).Inc()
	m.synthesisDuration.WithLabelValues(outcome).Observe(seconds)
}

// Outcome classifies a Synthesize error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, tts.ErrEmptyInput), errors.Is(err, tts.ErrTooLong), errors.Is(err, tts.ErrInvalidSpeed):
		return OutcomeInvalidInput
	case errors.Is(err, tts.ErrNetwork), errors.Is(err, tts.ErrUpstreamHTTP):
		return OutcomeUpstreamError
	case errors.Is(err, tts.ErrNoAudioProduced):
		return OutcomeNoAudio
	case errors.Is(err, tts.ErrInvalidCombinedAudio):
		return OutcomeInvalidAudio
	default:
		return OutcomeInternal
	}
}
