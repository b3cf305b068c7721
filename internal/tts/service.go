package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/nikhilbhutani/speechgateway/internal/audit"
)

const (
	DefaultModelID = "eleven_v3"
	DefaultSpeed   = 1.0
)

// Service runs one request through validation, the upstream call and reassembly.
// It keeps no per-request state and is safe for concurrent use.
type Service struct {
	validator    *TextValidator
	client       *UpstreamClient
	reassembler  *Reassembler
	audit        *audit.Service
	defaultModel string
	defaultSpeed float64
}

type ServiceOption func(*Service)

// WithAudit records request metadata through svc before the upstream call.
func WithAudit(svc *audit.Service) ServiceOption {
	return func(s *Service) {
		s.audit = svc
	}
}

// WithSkipObserver is called once per stream line that carried no usable audio.
func WithSkipObserver(fn func(SkipReason)) ServiceOption {
	return func(s *Service) {
		s.reassembler = NewReassembler(fn)
	}
}

func WithDefaults(modelID string, speed float64) ServiceOption {
	return func(s *Service) {
		if modelID != "" {
			s.defaultModel = modelID
		}
		if speed > 0 {
			s.defaultSpeed = speed
		}
	}
}

func NewService(v *TextValidator, c *UpstreamClient, opts ...ServiceOption) *Service {
	s := &Service{
		validator:    v,
		client:       c,
		reassembler:  NewReassembler(nil),
		audit:        audit.NewService(nil),
		defaultModel: DefaultModelID,
		defaultSpeed: DefaultSpeed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Name() string { return "elevenlabs-stream" }

// Synthesize validates req, makes exactly one upstream call, and returns the
// combined base64 audio. Validation errors are returned before any network I/O.
func (s *Service) Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error) {
	start := time.Now()

	text, err := s.validator.Validate(req.Text)
	if err != nil {
		return nil, err
	}

	modelID := req.ModelID
	if modelID == "" {
		modelID = s.defaultModel
	}
	speed := req.Speed
	if speed == 0 {
		speed = s.defaultSpeed
	}
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, ErrInvalidSpeed
	}

	if _, err := s.audit.Log(ctx, audit.LogEntry{Text: text, ModelID: modelID, Speed: speed}); err != nil {
		slog.WarnContext(ctx, "debug record failed", "error", err)
	}

	stream, err := s.client.Send(ctx, text, modelID, speed)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	payload, err := s.reassembler.Reassemble(stream.Lines())
	if err != nil {
		var noAudio *NoAudioError
		if errors.As(err, &noAudio) {
			noAudio.RawPreview = stream.Preview()
			slog.WarnContext(ctx, "no audio in upstream response", "model_id", modelID, "text_len", len([]rune(text)))
		}
		if errors.Is(err, ErrNetwork) || errors.Is(err, ErrNoAudioProduced) || errors.Is(err, ErrInvalidCombinedAudio) {
			return nil, err
		}
		return nil, fmt.Errorf("reassemble stream: %w", err)
	}

	slog.InfoContext(ctx, "processed text-to-speech",
		"text_len", len([]rune(text)),
		"model_id", modelID,
		"fragments", len(payload.Fragments),
		"skipped", payload.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return &SpeechResult{
		AudioBase64: payload.Base64,
		Format:      AudioFormat,
		Fragments:   len(payload.Fragments),
		Skipped:     payload.Skipped,
	}, nil
}
