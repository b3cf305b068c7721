package tts

import "context"

// AudioFormat is the only format the upstream stream produces for this service.
const AudioFormat = "mp3"

// SpeechRequest holds the parameters for one synthesis call.
type SpeechRequest struct {
	Text    string  `json:"text"`
	ModelID string  `json:"model_id,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
}

// SpeechResult holds the reassembled audio for one request.
type SpeechResult struct {
	AudioBase64 string
	Format      string
	Fragments   int
	Skipped     int
}

// Synthesizer is implemented by Service and by decorators wrapping it.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) (*SpeechResult, error)
	Name() string
}
