package tts

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match these through errors.Is.
var (
	ErrEmptyInput           = errors.New("text is required")
	ErrTooLong              = errors.New("text too long")
	ErrInvalidSpeed         = errors.New("speed must be a positive number")
	ErrNetwork              = errors.New("upstream request failed")
	ErrUpstreamHTTP         = errors.New("upstream returned an error status")
	ErrNoAudioProduced      = errors.New("no valid audio found in upstream response")
	ErrInvalidCombinedAudio = errors.New("invalid base64 audio data")
)

// maxErrorBody bounds how much of an upstream error body is kept for diagnostics.
const maxErrorBody = 500

type TooLongError struct {
	Length int
	Limit  int
}

func (e *TooLongError) Error() string {
	return fmt.Sprintf("text too long (%d characters), maximum is %d", e.Length, e.Limit)
}

func (e *TooLongError) Is(target error) bool { return target == ErrTooLong }

// UpstreamHTTPError is returned when the provider answers with a non-2xx status.
type UpstreamHTTPError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamHTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("upstream returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamHTTPError) Is(target error) bool { return target == ErrUpstreamHTTP }

// NetworkError covers connection failures, timeouts and broken response bodies.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upstream request failed: %v", e.Err)
}

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }

// NoAudioError carries the head of the upstream body so callers can see what came back.
type NoAudioError struct {
	RawPreview string
}

func (e *NoAudioError) Error() string { return ErrNoAudioProduced.Error() }

func (e *NoAudioError) Is(target error) bool { return target == ErrNoAudioProduced }

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
