package tts

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"iter"
	"log/slog"
	"regexp"
	"strings"
)

// SkipReason says why a stream line contributed no audio.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipEmpty      SkipReason = "empty"
	SkipNotObject  SkipReason = "not_object"
	SkipBadJSON    SkipReason = "bad_json"
	SkipNoFragment SkipReason = "no_fragment"
	SkipBadBase64  SkipReason = "bad_base64"
)

var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/=]+$`)

// AudioPayload is the ordered concatenation of every valid fragment of one stream.
type AudioPayload struct {
	Base64    string
	Fragments []string
	Skipped   int
}

type streamLine struct {
	AudioBase64 *string `json:"audio_base64"`
}

// ParseLine extracts the audio fragment from one raw stream line.
// It never fails: a line that carries no usable fragment reports why.
func ParseLine(line []byte) (string, SkipReason) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return "", SkipEmpty
	}
	if line[0] != '{' || line[len(line)-1] != '}' {
		return "", SkipNotObject
	}

	var obj streamLine
	if err := json.Unmarshal(line, &obj); err != nil {
		return "", SkipBadJSON
	}
	if obj.AudioBase64 == nil || *obj.AudioBase64 == "" {
		return "", SkipNoFragment
	}
	if !ValidBase64(*obj.AudioBase64) {
		return "", SkipBadBase64
	}
	return *obj.AudioBase64, SkipNone
}

// ValidBase64 reports whether s uses only the standard alphabet and decodes
// under strict padding rules.
func ValidBase64(s string) bool {
	if !base64Alphabet.MatchString(s) {
		return false
	}
	_, err := base64.StdEncoding.Strict().DecodeString(s)
	return err == nil
}

// Reassembler folds a line stream into an AudioPayload.
type Reassembler struct {
	onSkip func(SkipReason)
}

// NewReassembler returns a Reassembler. onSkip, when non-nil, is called once per skipped line.
func NewReassembler(onSkip func(SkipReason)) *Reassembler {
	return &Reassembler{onSkip: onSkip}
}

// Reassemble consumes lines in order. Individual bad lines are skipped; the
// call fails only on a read error, an empty result, or a joined string that
// is no longer valid base64.
func (r *Reassembler) Reassemble(lines iter.Seq2[[]byte, error]) (*AudioPayload, error) {
	payload := &AudioPayload{}

	for line, err := range lines {
		if err != nil {
			return nil, err
		}

		fragment, reason := ParseLine(line)
		if reason != SkipNone {
			payload.Skipped++
			if reason != SkipEmpty {
				slog.Debug("skipping stream line", "reason", string(reason), "bytes", len(line))
			}
			if r.onSkip != nil {
				r.onSkip(reason)
			}
			continue
		}
		payload.Fragments = append(payload.Fragments, fragment)
	}

	if len(payload.Fragments) == 0 {
		return nil, &NoAudioError{}
	}

	payload.Base64 = strings.Join(payload.Fragments, "")
	if !ValidBase64(payload.Base64) {
		return nil, ErrInvalidCombinedAudio
	}
	return payload, nil
}
