package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/nikhilbhutani/speechgateway/internal/audit"
	"github.com/nikhilbhutani/speechgateway/internal/queue"
)

// RecordWorker persists speech debug records queued by the API process.
type RecordWorker struct {
	sink audit.Sink
}

func NewRecordWorker(sink audit.Sink) *RecordWorker {
	return &RecordWorker{sink: sink}
}

func (w *RecordWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.SpeechRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	rec, err := audit.FromPayload(payload)
	if err != nil {
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}

	if err := w.sink.Write(ctx, rec); err != nil {
		return fmt.Errorf("persist record: %w", err)
	}

	slog.Info("persisted speech record", "record_id", rec.ID, "request_id", rec.RequestID, "model_id", rec.ModelID)
	return nil
}
