package audit

import (
	"context"
	"fmt"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Record is the persisted debug record of one speech request. Audio is never recorded.
type Record struct {
	ID        uuid.UUID `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Text      string    `json:"text"`
	ModelID   string    `json:"model_id"`
	Speed     float64   `json:"speed"`
	CreatedAt time.Time `json:"created_at"`
}

// Sink persists records.
type Sink interface {
	Write(ctx context.Context, rec Record) error
}

type Service struct {
	sink Sink
	now  func() time.Time
}

func NewService(sink Sink) *Service {
	if sink == nil {
		sink = NopSink{}
	}
	return &Service{sink: sink, now: time.Now}
}

type LogEntry struct {
	Text    string
	ModelID string
	Speed   float64
}

// Log assigns a fresh id to entry and hands it to the sink.
func (s *Service) Log(ctx context.Context, entry LogEntry) (*Record, error) {
	rec := Record{
		ID:        uuid.New(),
		RequestID: chimiddleware.GetReqID(ctx),
		Text:      entry.Text,
		ModelID:   entry.ModelID,
		Speed:     entry.Speed,
		CreatedAt: s.now().UTC(),
	}

	if err := s.sink.Write(ctx, rec); err != nil {
		return nil, fmt.Errorf("write debug record %s: %w", rec.ID, err)
	}
	return &rec, nil
}

// NopSink drops every record.
type NopSink struct{}

func (NopSink) Write(context.Context, Record) error { return nil }
