package tts

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars is the text length limit applied when none is configured.
const DefaultMaxChars = 1000

var (
	ellipsisRun   = regexp.MustCompile(`\.{2,}|…`)
	disallowedRun = regexp.MustCompile(`[^\p{L}\p{N}_\s\p{Z}.,!?'"-]`)
)

// TextValidator normalizes and bounds-checks text before it is sent upstream.
// It holds no mutable state and is safe for concurrent use.
type TextValidator struct {
	maxChars int
	sanitize bool
}

func NewTextValidator(maxChars int, sanitize bool) *TextValidator {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &TextValidator{maxChars: maxChars, sanitize: sanitize}
}

func (v *TextValidator) MaxChars() int { return v.maxChars }

// Validate trims raw, optionally sanitizes it, and enforces the length limit.
// Length is counted in characters, not bytes.
func (v *TextValidator) Validate(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if v.sanitize {
		text = strings.TrimSpace(Sanitize(text))
	}

	if text == "" {
		return "", ErrEmptyInput
	}
	if n := utf8.RuneCountInString(text); n > v.maxChars {
		return "", &TooLongError{Length: n, Limit: v.maxChars}
	}
	return text, nil
}

// Sanitize collapses ellipses into a single period and drops characters
// outside letters, digits, whitespace and . , ! ? ' " -
// Unicode spaces such as U+00A0 count as whitespace; RE2's \s is ASCII only.
func Sanitize(text string) string {
	text = ellipsisRun.ReplaceAllString(text, ".")
	return disallowedRun.ReplaceAllString(text, "")
}
