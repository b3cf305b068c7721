package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

type observableSynthesizer struct {
	synthesizer  tts.Synthesizer
	metrics      *Metrics
	defaultModel string
}

// NewSynthesizer wraps s with a span and outcome metrics per call.
// defaultModel names the span when a request leaves the model unset and
// should match the default s applies.
func NewSynthesizer(s tts.Synthesizer, m *Metrics, defaultModel string) tts.Synthesizer {
	if defaultModel == "" {
		defaultModel = tts.DefaultModelID
	}
	return &observableSynthesizer{synthesizer: s, metrics: m, defaultModel: defaultModel}
}

func (p *observableSynthesizer) Name() string { return p.synthesizer.Name() }

func (p *observableSynthesizer) Synthesize(ctx context.Context, req tts.SpeechRequest) (*tts.SpeechResult, error) {
	model := req.ModelID
	if model == "" {
		model = p.defaultModel
	}

	ctx, span := otel.Tracer(instrumentationName).Start(ctx, "synthesize "+model, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	result, err := p.synthesizer.Synthesize(ctx, req)
	outcome := Outcome(err)

	span.SetAttributes(
		attribute.String("tts.provider", p.synthesizer.Name()),
		attribute.String("tts.model_id", model),
		attribute.Int("tts.text_length", len([]rune(req.Text))),
		attribute.String("tts.outcome", outcome),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	} else {
		span.SetAttributes(
			attribute.Int("tts.fragments", result.Fragments),
			attribute.Int("tts.skipped_lines", result.Skipped),
		)
	}

	if p.metrics != nil {
		p.metrics.observeSynthesis(outcome, time.Since(start).Seconds())
	}
	return result, err
}
