package telemetry

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/nikhilbhutani/speechgateway/internal/config"
	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

type stubSynthesizer struct {
	result *tts.SpeechResult
	err    error
}

func (s *stubSynthesizer) Name() string { return "stub" }

func (s *stubSynthesizer) Synthesize(context.Context, tts.SpeechRequest) (*tts.SpeechResult, error) {
	return s.result, s.err
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, OutcomeSuccess},
		{tts.ErrEmptyInput, OutcomeInvalidInput},
		{&tts.TooLongError{Length: 2000, Limit: 1000}, OutcomeInvalidInput},
		{tts.ErrInvalidSpeed, OutcomeInvalidInput},
		{&tts.NetworkError{Err: errors.New("refused")}, OutcomeUpstreamError},
		{&tts.UpstreamHTTPError{StatusCode: 503}, OutcomeUpstreamError},
		{&tts.NoAudioError{}, OutcomeNoAudio},
		{fmt.Errorf("wrapped: %w", tts.ErrInvalidCombinedAudio), OutcomeInvalidAudio},
		{errors.New("boom"), OutcomeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Outcome(tt.err))
		})
	}
}

func TestSynthesizer_RecordsOutcome(t *testing.T) {
	m := NewMetrics()

	ok := NewSynthesizer(&stubSynthesizer{result: &tts.SpeechResult{AudioBase64: "QQ==", Fragments: 1}}, m, "")
	failing := NewSynthesizer(&stubSynthesizer{err: &tts.UpstreamHTTPError{StatusCode: 503}}, m, "")

	result, err := ok.Synthesize(context.Background(), tts.SpeechRequest{Text: "Hi", ModelID: "eleven_v3"})
	require.NoError(t, err)
	assert.Equal(t, "QQ==", result.AudioBase64)

	_, err = failing.Synthesize(context.Background(), tts.SpeechRequest{Text: "Hi"})
	require.ErrorIs(t, err, tts.ErrUpstreamHTTP)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.synthesisTotal.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.synthesisTotal.WithLabelValues(OutcomeUpstreamError)))
	assert.Equal(t, "stub", ok.Name())
}

func TestSynthesizer_SpanNamedAfterResolvedModel(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)))
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	stub := &stubSynthesizer{result: &tts.SpeechResult{AudioBase64: "QQ==", Fragments: 1}}
	configured := NewSynthesizer(stub, NewMetrics(), "eleven_turbo_v2_5")
	fallback := NewSynthesizer(stub, NewMetrics(), "")

	for _, s := range []tts.Synthesizer{configured, fallback} {
		_, err := s.Synthesize(context.Background(), tts.SpeechRequest{Text: "Hi"})
		require.NoError(t, err)
	}
	_, err := configured.Synthesize(context.Background(), tts.SpeechRequest{Text: "Hi", ModelID: "m2"})
	require.NoError(t, err)

	var names []string
	for _, span := range recorder.Ended() {
		names = append(names, span.Name())
	}
	assert.Equal(t, []string{"synthesize eleven_turbo_v2_5", "synthesize " + tts.DefaultModelID, "synthesize m2"}, names)
}

func TestMetrics_ObserveSkip(t *testing.T) {
	m := NewMetrics()

	m.ObserveSkip(tts.SkipBadJSON)
	m.ObserveSkip(tts.SkipBadJSON)
	m.ObserveSkip(tts.SkipBadBase64)
	m.ObserveSkip(tts.SkipEmpty)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.linesSkipped.WithLabelValues("bad_json")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.linesSkipped.WithLabelValues("bad_base64")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.linesSkipped.WithLabelValues("empty")))
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveSkip(tts.SkipNotObject)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `speechgateway_stream_lines_skipped_total{reason="not_object"} 1`)
}

func TestSetup_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TelemetryConfig{ServiceName: "test"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}
