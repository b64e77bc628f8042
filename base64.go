// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bufio"
	"encoding/base64"
	"io"
	"strings"
)

// base64LineWidth is the line length BINARY/BINARY2 STREAM payloads are
// wrapped at on write.
const base64LineWidth = 72

// base64Encoder wraps an io.Writer, base64-encoding bytes written to it
// and inserting a newline every base64LineWidth encoded characters. It
// must be closed to flush any trailing partial group.
type base64Encoder struct {
	w   io.Writer
	lw  *lineWrappingWriter
	enc io.WriteCloser
}

type lineWrappingWriter struct {
	w       io.Writer
	lineLen int
	err     error
}

func (lw *lineWrappingWriter) Write(p []byte) (int, error) {
	if lw.err != nil {
		return 0, lw.err
	}
	total := 0
	for len(p) > 0 {
		room := base64LineWidth - lw.lineLen
		n := len(p)
		if n > room {
			n = room
		}
		if _, err := lw.w.Write(p[:n]); err != nil {
			lw.err = err
			return total, err
		}
		total += n
		lw.lineLen += n
		p = p[n:]
		if lw.lineLen == base64LineWidth {
			if _, err := lw.w.Write([]byte("\n")); err != nil {
				lw.err = err
				return total, err
			}
			lw.lineLen = 0
		}
	}
	return total, nil
}

// newBase64Encoder returns a writer that base64-encodes everything
// written to it onto w, line-wrapped at base64LineWidth characters.
// Callers must call Close to flush the final padded group and trailing
// newline.
func newBase64Encoder(w io.Writer) *base64Encoder {
	lw := &lineWrappingWriter{w: w}
	enc := base64.NewEncoder(base64.StdEncoding, lw)
	return &base64Encoder{w: w, lw: lw, enc: enc}
}

func (e *base64Encoder) Write(p []byte) (int, error) {
	n, err := e.enc.Write(p)
	return n, ioErr(err)
}

// Close flushes the trailing base64 group and terminates a partial
// final line with a newline. It does not close the underlying writer.
func (e *base64Encoder) Close() error {
	if err := e.enc.Close(); err != nil {
		return ioErr(err)
	}
	if e.lw.err != nil {
		return ioErr(e.lw.err)
	}
	if e.lw.lineLen > 0 {
		if _, err := e.w.Write([]byte("\n")); err != nil {
			return ioErr(err)
		}
		e.lw.lineLen = 0
	}
	return nil
}

// base64Decoder decodes a whitespace-tolerant base64 byte stream:
// embedded newlines/tabs/spaces inside the STREAM element are skipped,
// and decoding stops cleanly at the closing </STREAM> tag rather than
// erroring on it. A buffered reader on top of the standard decoder
// gives HasDataLeft its one byte of look-ahead.
type base64Decoder struct {
	br *bufio.Reader
}

// streamBoundaryReader is an io.Reader over r that stops delivering
// bytes once it observes the literal "</STREAM>" end marker, so the
// base64 decoder never tries to decode XML closing-tag bytes.
type streamBoundaryReader struct {
	r    *bufio.Reader
	done bool
}

const streamEndMarker = "</STREAM>"

func (s *streamBoundaryReader) Read(p []byte) (int, error) {
	if s.done {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) {
		b, err := s.r.ReadByte()
		if err != nil {
			return n, err
		}
		if b == '<' {
			peek, _ := s.r.Peek(len(streamEndMarker) - 1)
			if string(peek) == streamEndMarker[1:] {
				if _, discardErr := s.r.Discard(len(streamEndMarker) - 1); discardErr != nil {
					return n, discardErr
				}
				s.done = true
				if n == 0 {
					return 0, io.EOF
				}
				return n, nil
			}
		}
		if isBase64Whitespace(b) {
			continue
		}
		p[n] = b
		n++
	}
	return n, nil
}

func isBase64Whitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r':
		return true
	default:
		return false
	}
}

// newBase64Decoder wraps r (positioned at the start of a STREAM
// element's text content) in a decoder that strips whitespace and
// stops at the closing </STREAM> tag.
func newBase64Decoder(r io.Reader) *base64Decoder {
	boundary := &streamBoundaryReader{r: bufio.NewReader(r)}
	return &base64Decoder{br: bufio.NewReader(base64.NewDecoder(base64.StdEncoding, boundary))}
}

func (d *base64Decoder) Read(p []byte) (int, error) {
	n, err := d.br.Read(p)
	if err != nil && err != io.EOF {
		return n, (&Error{Kind: KindEncodingMismatch, Msg: "base64 decode failed"}).WithCause(err)
	}
	return n, err
}

// HasDataLeft peeks one decoded byte ahead: it reports false exactly
// when the boundary reader has seen the end marker (or the underlying
// stream ended) and every decoded byte has been consumed. A pending
// decode error counts as data left so the next Read surfaces it.
func (d *base64Decoder) HasDataLeft() bool {
	_, err := d.br.Peek(1)
	return err != io.EOF
}

// decodeBase64Text decodes a complete, already-extracted base64 text
// blob (e.g. the text content collected by encoding/xml for a small
// inline STREAM), ignoring embedded whitespace. Used by the non-
// streaming read path.
func decodeBase64Text(text string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, text)
	out, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, (&Error{Kind: KindEncodingMismatch, Msg: "base64 decode failed"}).WithCause(err)
	}
	return out, nil
}

// encodeBase64Text encodes data as a single line-wrapped base64 blob
// suitable for writing as a STREAM element's text content.
func encodeBase64Text(data []byte) string {
	var sb strings.Builder
	enc := newBase64Encoder(&sb)
	_, _ = enc.Write(data)
	_ = enc.Close()
	return sb.String()
}
