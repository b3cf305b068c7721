package queue

import "time"

const (
	TypeSpeechRecord = "speech:record"
)

// SpeechRecordPayload is the debug record of one speech request. It never carries audio.
type SpeechRecordPayload struct {
	ID        string    `json:"id"`
	RequestID string    `json:"request_id,omitempty"`
	Text      string    `json:"text"`
	ModelID   string    `json:"model_id"`
	Speed     float64   `json:"speed"`
	CreatedAt time.Time `json:"created_at"`
}
