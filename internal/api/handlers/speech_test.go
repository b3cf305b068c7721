package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/speechgateway/internal/tts"
)

type stubSynthesizer struct {
	result *tts.SpeechResult
	err    error
	got    tts.SpeechRequest
	calls  int
}

func (s *stubSynthesizer) Name() string { return "stub" }

func (s *stubSynthesizer) Synthesize(_ context.Context, req tts.SpeechRequest) (*tts.SpeechResult, error) {
	s.calls++
	s.got = req
	return s.result, s.err
}

func hello() *stubSynthesizer {
	return &stubSynthesizer{result: &tts.SpeechResult{AudioBase64: "SGVsbG8=", Format: tts.AudioFormat, Fragments: 2}}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSpeak_QueryString(t *testing.T) {
	stub := hello()
	h := NewSpeechHandler(stub)

	rec := httptest.NewRecorder()
	h.Speak(rec, httptest.NewRequest(http.MethodGet, "/tts?text=Hello&model_id=eleven_v3&speed=1.25", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Regexp(t, `^\d+\.\d{2}$`, rec.Header().Get("X-Processing-Time"))

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "SGVsbG8=", body["audio_base64"])
	assert.Equal(t, "mp3", body["audio_format"])

	assert.Equal(t, tts.SpeechRequest{Text: "Hello", ModelID: "eleven_v3", Speed: 1.25}, stub.got)
}

func TestSpeak_Form(t *testing.T) {
	stub := hello()
	form := url.Values{"text": {"Hello"}}

	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	NewSpeechHandler(stub).Speak(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", stub.got.Text)
	assert.Zero(t, stub.got.Speed)
}

func TestSpeak_JSONBody(t *testing.T) {
	stub := hello()

	req := httptest.NewRequest(http.MethodPost, "/tts", strings.NewReader(`{"text":"Hello","model_id":"m2","speed":0.8}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	rec := httptest.NewRecorder()
	NewSpeechHandler(stub).Speak(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tts.SpeechRequest{Text: "Hello", ModelID: "m2", Speed: 0.8}, stub.got)
}

func TestSpeak_BadParameters(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		body        string
		contentType string
	}{
		{"speed not a number", "/tts?text=Hi&speed=fast", "", ""},
		{"zero speed", "/tts?text=Hi&speed=0", "", ""},
		{"negative json speed", "/tts", `{"text":"Hi","speed":-2}`, "application/json"},
		{"malformed json", "/tts", `{"text":`, "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := hello()
			method := http.MethodGet
			if tt.body != "" {
				method = http.MethodPost
			}
			req := httptest.NewRequest(method, tt.target, strings.NewReader(tt.body))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			NewSpeechHandler(stub).Speak(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.NotEmpty(t, decode(t, rec)["error"])
			assert.Zero(t, stub.calls)
		})
	}
}

func TestSpeak_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   string
	}{
		{"empty", tts.ErrEmptyInput, http.StatusBadRequest, "text is required"},
		{"too long", &tts.TooLongError{Length: 1001, Limit: 1000}, http.StatusBadRequest, "1000"},
		{"upstream status", &tts.UpstreamHTTPError{StatusCode: 503, Body: "overloaded"}, http.StatusInternalServerError, "503"},
		{"network", &tts.NetworkError{Err: errors.New("connection refused")}, http.StatusInternalServerError, "connection refused"},
		{"invalid audio", tts.ErrInvalidCombinedAudio, http.StatusInternalServerError, "simplifying"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "internal error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			NewSpeechHandler(&stubSynthesizer{err: tt.err}).Speak(rec, httptest.NewRequest(http.MethodGet, "/tts?text=Hi", nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, decode(t, rec)["error"], tt.want)
			assert.Empty(t, rec.Header().Get("X-Processing-Time"))
		})
	}
}

func TestSpeak_NoAudioIncludesRawResponse(t *testing.T) {
	stub := &stubSynthesizer{err: &tts.NoAudioError{RawPreview: `{"detail":"quota exceeded"}`}}

	rec := httptest.NewRecorder()
	NewSpeechHandler(stub).Speak(rec, httptest.NewRequest(http.MethodGet, "/tts?text=Hi", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["error"], "no valid audio")
	assert.Contains(t, body["error"], "try simplifying the input text")
	assert.Equal(t, `{"detail":"quota exceeded"}`, body["raw_response"])
}

func TestSpeakAudio(t *testing.T) {
	rec := httptest.NewRecorder()
	NewSpeechHandler(hello()).SpeakAudio(rec, httptest.NewRequest(http.MethodGet, "/tts/audio?text=Hello", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Equal(t, "Hello", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Processing-Time"))
}

func TestSpeakAudio_UndecodablePayload(t *testing.T) {
	stub := &stubSynthesizer{result: &tts.SpeechResult{AudioBase64: "QQ==Qg==", Format: tts.AudioFormat}}

	rec := httptest.NewRecorder()
	NewSpeechHandler(stub).SpeakAudio(rec, httptest.NewRequest(http.MethodGet, "/tts/audio?text=Hi", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, decode(t, rec)["error"], "invalid base64 audio data")
}
