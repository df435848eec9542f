// Package sse reassembles completion deltas from an OpenAI-style
// Server-Sent Events stream.
package sse

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bytedance/sonic"
)

const (
	dataPrefix  = "data: "
	doneMessage = "[DONE]"
)

// State is the decoder's position in the framing cycle.
type State int

const (
	// Accumulating means bytes are buffered waiting for a newline.
	Accumulating State = iota
	// LineComplete means at least one full line was consumed from the
	// last chunk and the decoder is ready for more input.
	LineComplete
	// Terminated means a [DONE] marker was seen in the current chunk; the
	// remainder of that chunk is discarded.
	Terminated
)

func (s State) String() string {
	switch s {
	case Accumulating:
		return "accumulating"
	case LineComplete:
		return "line-complete"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// ChunkSource yields raw stream chunks. It returns io.EOF when the stream
// ends; a chunk may accompany io.EOF.
type ChunkSource interface {
	Next() ([]byte, error)
}

// ReaderSource adapts an io.Reader into a ChunkSource.
type ReaderSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource reads chunks of up to size bytes from r.
func NewReaderSource(r io.Reader, size int) *ReaderSource {
	if size <= 0 {
		size = 4096
	}
	return &ReaderSource{r: r, buf: make([]byte, size)}
}

// Next implements ChunkSource.
func (s *ReaderSource) Next() ([]byte, error) {
	n, err := s.r.Read(s.buf)
	chunk := append([]byte(nil), s.buf[:n]...)
	return chunk, err
}

// SliceSource replays fixed chunks. Mostly useful in tests.
type SliceSource struct {
	chunks [][]byte
	pos    int
}

// NewSliceSource returns a source over chunks.
func NewSliceSource(chunks ...[]byte) *SliceSource {
	return &SliceSource{chunks: chunks}
}

// Next implements ChunkSource.
func (s *SliceSource) Next() ([]byte, error) {
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

type deltaFrame struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// Decoder turns chunks into content deltas. It is not safe for concurrent use.
type Decoder struct {
	pending []byte
	state   State
	skipped int
}

// NewDecoder returns a decoder in the Accumulating state.
func NewDecoder() *Decoder {
	return &Decoder{state: Accumulating}
}

// State reports the current state.
func (d *Decoder) State() State {
	return d.state
}

// Skipped counts data lines whose payload was not valid JSON.
func (d *Decoder) Skipped() int {
	return d.skipped
}

// Feed consumes one chunk and returns the content deltas it completed.
func (d *Decoder) Feed(chunk []byte) []string {
	d.pending = append(d.pending, chunk...)
	d.state = Accumulating

	var deltas []string
	for {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			break
		}
		line := d.pending[:idx]
		d.pending = d.pending[idx+1:]
		d.state = LineComplete

		delta, done := d.handleLine(line)
		if done {
			// Lines after [DONE] in the same chunk are discarded.
			d.pending = d.pending[:0]
			d.state = Terminated
			break
		}
		if delta != "" {
			deltas = append(deltas, delta)
		}
	}

	if len(d.pending) == 0 {
		d.pending = nil
	}
	return deltas
}

// Flush processes a trailing line that was never newline terminated.
func (d *Decoder) Flush() []string {
	if len(d.pending) == 0 {
		return nil
	}
	line := d.pending
	d.pending = nil

	delta, done := d.handleLine(line)
	if done {
		d.state = Terminated
		return nil
	}
	d.state = LineComplete
	if delta == "" {
		return nil
	}
	return []string{delta}
}

func (d *Decoder) handleLine(raw []byte) (string, bool) {
	line := strings.TrimSuffix(string(raw), "\r")
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if !strings.HasPrefix(line, dataPrefix) {
		return "", false
	}

	payload := strings.TrimSpace(line[len(dataPrefix):])
	if payload == doneMessage {
		return "", true
	}

	var frame deltaFrame
	if err := sonic.UnmarshalString(payload, &frame); err != nil {
		d.skipped++
		return "", false
	}
	if len(frame.Choices) == 0 {
		return "", false
	}
	return frame.Choices[0].Delta.Content, false
}

// Collect drives src to completion, calling onDelta for each piece of
// content, and returns the full text. Lines are only split on newline
// bytes, so multi-byte UTF-8 sequences split across chunks are rejoined
// before decoding.
func Collect(ctx context.Context, src ChunkSource, onDelta func(string)) (string, error) {
	dec := NewDecoder()
	var sb strings.Builder

	emit := func(deltas []string) {
		for _, delta := range deltas {
			sb.WriteString(delta)
			if onDelta != nil {
				onDelta(delta)
			}
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return sb.String(), err
		}

		chunk, err := src.Next()
		if len(chunk) > 0 {
			emit(dec.Feed(chunk))
		}
		if errors.Is(err, io.EOF) {
			emit(dec.Flush())
			break
		}
		if err != nil {
			return sb.String(), err
		}
	}

	text := sb.String()
	if !utf8.ValidString(text) {
		text = strings.ToValidUTF8(text, "�")
	}
	return text, nil
}
