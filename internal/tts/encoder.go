package tts

import (
	"encoding/base64"
	"fmt"
)

// ToBinary strictly decodes the combined base64 payload into raw audio bytes.
func ToBinary(b64 string) ([]byte, error) {
	if !base64Alphabet.MatchString(b64) {
		return nil, ErrInvalidCombinedAudio
	}
	audio, err := base64.StdEncoding.Strict().DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCombinedAudio, err)
	}
	return audio, nil
}
