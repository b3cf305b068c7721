package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/nikhilbhutani/speechgateway/internal/queue"
)

// Enqueuer is satisfied by *queue.Client.
type Enqueuer interface {
	EnqueueSpeechRecord(payload queue.SpeechRecordPayload) error
}

// QueueSink hands records to the worker process instead of writing them inline.
type QueueSink struct {
	q Enqueuer
}

func NewQueueSink(q Enqueuer) *QueueSink {
	return &QueueSink{q: q}
}

func (s *QueueSink) Write(_ context.Context, rec Record) error {
	return s.q.EnqueueSpeechRecord(ToPayload(rec))
}

func ToPayload(rec Record) queue.SpeechRecordPayload {
	return queue.SpeechRecordPayload{
		ID:        rec.ID.String(),
		RequestID: rec.RequestID,
		Text:      rec.Text,
		ModelID:   rec.ModelID,
		Speed:     rec.Speed,
		CreatedAt: rec.CreatedAt,
	}
}

func FromPayload(p queue.SpeechRecordPayload) (Record, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return Record{}, fmt.Errorf("parse record ID: %w", err)
	}
	return Record{
		ID:        id,
		RequestID: p.RequestID,
		Text:      p.Text,
		ModelID:   p.ModelID,
		Speed:     p.Speed,
		CreatedAt: p.CreatedAt,
	}, nil
}
