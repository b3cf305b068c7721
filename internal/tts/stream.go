package tts

import (
	"bufio"
	"bytes"
	"io"
	"iter"
)

const (
	// previewLimit bounds the raw body head kept for diagnostics.
	previewLimit = 1000
	maxLineBytes = 16 << 20
)

// Stream is a single-pass view over a streamed upstream body.
type Stream struct {
	body        io.ReadCloser
	contentType string
	preview     previewBuffer
}

// NewStream wraps body. The caller hands ownership of body to the Stream.
func NewStream(body io.ReadCloser, contentType string) *Stream {
	return &Stream{body: body, contentType: contentType}
}

func (s *Stream) ContentType() string { return s.contentType }

// Preview returns up to the first 1000 bytes read from the body so far.
func (s *Stream) Preview() string { return string(s.preview.buf) }

func (s *Stream) Close() error { return s.body.Close() }

// Lines yields the body one line at a time in arrival order. Lines end at
// \n, \r\n or a bare \r; the terminator is not included. A final line
// without a terminator is still yielded. A read failure is yielded once as
// a *NetworkError and ends the sequence.
func (s *Stream) Lines() iter.Seq2[[]byte, error] {
	return func(yield func([]byte, error) bool) {
		scanner := bufio.NewScanner(io.TeeReader(s.body, &s.preview))
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		scanner.Split(scanLines)

		for scanner.Scan() {
			if !yield(scanner.Bytes(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield(nil, &NetworkError{Err: err})
		}
	}
}

// scanLines is bufio.ScanLines extended to treat a lone \r as a terminator.
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Need the next byte to tell \r from \r\n.
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

type previewBuffer struct {
	buf []byte
}

func (p *previewBuffer) Write(b []byte) (int, error) {
	if room := previewLimit - len(p.buf); room > 0 {
		if len(b) > room {
			p.buf = append(p.buf, b[:room]...)
		} else {
			p.buf = append(p.buf, b...)
		}
	}
	return len(b), nil
}
