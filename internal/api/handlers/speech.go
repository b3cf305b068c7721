package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

const maxBodyBytes = 64 << 10

var errBadBody = errors.New("invalid request body")

type SpeechHandler struct {
	tts tts.Synthesizer
}

func NewSpeechHandler(s tts.Synthesizer) *SpeechHandler {
	return &SpeechHandler{tts: s}
}

type speechResponse struct {
	Status      string `json:"status"`
	AudioBase64 string `json:"audio_base64"`
	AudioFormat string `json:"audio_format"`
}

// Speak converts text to speech and returns the audio as base64 in a JSON envelope.
func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result, ok := h.synthesize(w, r)
	if !ok {
		return
	}

	setProcessingTime(w, start)
	writeJSON(w, http.StatusOK, speechResponse{
		Status:      "success",
		AudioBase64: result.AudioBase64,
		AudioFormat: result.Format,
	})
}

// SpeakAudio converts text to speech and returns the decoded audio bytes.
func (h *SpeechHandler) SpeakAudio(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	result, ok := h.synthesize(w, r)
	if !ok {
		return
	}

	audio, err := tts.ToBinary(result.AudioBase64)
	if err != nil {
		writeSpeechError(w, r, err)
		return
	}

	setProcessingTime(w, start)
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(audio)))
	w.WriteHeader(http.StatusOK)
	w.Write(audio)
}

func (h *SpeechHandler) synthesize(w http.ResponseWriter, r *http.Request) (*tts.SpeechResult, bool) {
	req, err := parseSpeechRequest(r)
	if err != nil {
		writeSpeechError(w, r, err)
		return nil, false
	}

	result, err := h.tts.Synthesize(r.Context(), req)
	if err != nil {
		writeSpeechError(w, r, err)
		return nil, false
	}
	return result, true
}

// parseSpeechRequest reads text, model_id and speed from a JSON body when the
// request declares one, otherwise from the query string or form.
func parseSpeechRequest(r *http.Request) (tts.SpeechRequest, error) {
	if r.Method == http.MethodPost && isJSON(r.Header.Get("Content-Type")) {
		var body struct {
			Text    string   `json:"text"`
			ModelID string   `json:"model_id"`
			Speed   *float64 `json:"speed"`
		}
		dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
		if err := dec.Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			return tts.SpeechRequest{}, errBadBody
		}

		req := tts.SpeechRequest{Text: body.Text, ModelID: body.ModelID}
		if body.Speed != nil {
			if *body.Speed <= 0 {
				return tts.SpeechRequest{}, tts.ErrInvalidSpeed
			}
			req.Speed = *body.Speed
		}
		return req, nil
	}

	req := tts.SpeechRequest{
		Text:    r.FormValue("text"),
		ModelID: r.FormValue("model_id"),
	}
	if raw := r.FormValue("speed"); raw != "" {
		speed, err := strconv.ParseFloat(raw, 64)
		if err != nil || speed <= 0 {
			return tts.SpeechRequest{}, tts.ErrInvalidSpeed
		}
		req.Speed = speed
	}
	return req, nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "application/json"
}

func setProcessingTime(w http.ResponseWriter, start time.Time) {
	w.Header().Set("X-Processing-Time", fmt.Sprintf("%.2f", time.Since(start).Seconds()))
}

func writeSpeechError(w http.ResponseWriter, r *http.Request, err error) {
	var noAudio *tts.NoAudioError

	switch {
	case errors.Is(err, errBadBody),
		errors.Is(err, tts.ErrEmptyInput),
		errors.Is(err, tts.ErrTooLong),
		errors.Is(err, tts.ErrInvalidSpeed):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})

	case errors.Is(err, tts.ErrNetwork), errors.Is(err, tts.ErrUpstreamHTTP):
		slog.WarnContext(r.Context(), "upstream failure", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})

	case errors.As(err, &noAudio):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error":        err.Error() + "; try simplifying the input text",
			"raw_response": noAudio.RawPreview,
		})

	case errors.Is(err, tts.ErrInvalidCombinedAudio):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": err.Error() + "; try simplifying the input text",
		})

	default:
		slog.ErrorContext(r.Context(), "speech request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error: " + err.Error()})
	}
}
