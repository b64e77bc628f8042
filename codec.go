// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"encoding/binary"
	"io"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// Primitive codec: a typed big-endian reader and writer over an
// io.Reader/io.Writer, since VOTable payloads are streamed rather than
// random-accessed.

func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return (&Error{Kind: KindPrematureEOF, Msg: "unexpected EOF reading binary row"}).WithCause(err)
		}
		return (&Error{Kind: KindIoFailure, Msg: "read failed"}).WithCause(err)
	}
	return nil
}

// ReadU8 reads one unsigned byte.
func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// ReadU16 reads a big-endian uint16.
func ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

// ReadI16 reads a big-endian int16.
func ReadI16(r io.Reader) (int16, error) {
	u, err := ReadU16(r)
	return int16(u), err
}

// ReadI32 reads a big-endian int32.
func ReadI32(r io.Reader) (int32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

// ReadI64 reads a big-endian int64.
func ReadI64(r io.Reader) (int64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

// ReadF32 reads a big-endian IEEE-754 float32.
func ReadF32(r io.Reader) (float32, error) {
	var buf [4]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(buf[:])), nil
}

// ReadF64 reads a big-endian IEEE-754 float64.
func ReadF64(r io.Reader) (float64, error) {
	var buf [8]byte
	if err := readFull(r, buf[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(buf[:])), nil
}

// BoolCell is the tri-state decode of a single boolean byte:
// '0'|'f'|'F' => false, '1'|'t'|'T' => true, anything else => NULL.
type BoolCell struct {
	Value bool
	Null  bool
}

// ReadBoolCell reads one boolean byte and classifies it.
func ReadBoolCell(r io.Reader) (BoolCell, error) {
	b, err := ReadU8(r)
	if err != nil {
		return BoolCell{}, err
	}
	switch b {
	case '0', 'f', 'F':
		return BoolCell{Value: false}, nil
	case '1', 't', 'T':
		return BoolCell{Value: true}, nil
	default:
		return BoolCell{Null: true}, nil
	}
}

// WriteU8 writes one unsigned byte.
func WriteU8(w io.Writer, v uint8) error {
	_, err := w.Write([]byte{v})
	return ioErr(err)
}

// WriteU16 writes a big-endian uint16.
func WriteU16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	return ioErr(err)
}

// WriteI16 writes a big-endian int16.
func WriteI16(w io.Writer, v int16) error { return WriteU16(w, uint16(v)) }

// WriteI32 writes a big-endian int32.
func WriteI32(w io.Writer, v int32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	_, err := w.Write(buf[:])
	return ioErr(err)
}

// WriteI64 writes a big-endian int64.
func WriteI64(w io.Writer, v int64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(v))
	_, err := w.Write(buf[:])
	return ioErr(err)
}

// WriteF32 writes a big-endian IEEE-754 float32.
func WriteF32(w io.Writer, v float32) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], math.Float32bits(v))
	_, err := w.Write(buf[:])
	return ioErr(err)
}

// WriteF64 writes a big-endian IEEE-754 float64.
func WriteF64(w io.Writer, v float64) error {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], math.Float64bits(v))
	_, err := w.Write(buf[:])
	return ioErr(err)
}

// WriteBoolCell writes a boolean cell using the canonical 'T'/'F'/'?' bytes.
func WriteBoolCell(w io.Writer, c BoolCell) error {
	if c.Null {
		return WriteU8(w, '?')
	}
	if c.Value {
		return WriteU8(w, 'T')
	}
	return WriteU8(w, 'F')
}

func ioErr(err error) error {
	if err == nil {
		return nil
	}
	return (&Error{Kind: KindIoFailure, Msg: "write failed"}).WithCause(err)
}

// ucs2Decoder/ucs2Encoder wrap golang.org/x/text/encoding/unicode,
// big-endian (VOTable BINARY rows are uniformly big-endian) and without
// BOM handling (VOTable unicodeChar cells carry no byte-order mark).

// DecodeUCS2 decodes a fixed-width big-endian UCS-2 byte slice into a Go
// string, stopping at the first NUL code unit (a leading NUL marks the
// empty string on read).
func DecodeUCS2(b []byte) (string, error) {
	n := len(b)
	for i := 0; i+1 < len(b); i += 2 {
		if b[i] == 0 && b[i+1] == 0 {
			n = i
			break
		}
	}
	if n == 0 {
		return "", nil
	}
	dec := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder()
	s, err := dec.Bytes(b[:n])
	if err != nil {
		return "", (&Error{Kind: KindEncodingMismatch, Msg: "ucs2 decode failed"}).WithCause(err)
	}
	return string(s), nil
}

// EncodeUCS2 encodes s as big-endian UCS-2, NUL-padded to width bytes (2
// bytes per char). If the encoded form is longer than width it is
// truncated, matching the fixed-width write contract of FixedUnicodeString.
func EncodeUCS2(s string, width int) ([]byte, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	raw, err := enc.Bytes([]byte(s))
	if err != nil {
		return nil, (&Error{Kind: KindEncodingMismatch, Msg: "ucs2 encode failed"}).WithCause(err)
	}
	out := make([]byte, width)
	n := len(raw)
	if n > width {
		n = width
	}
	copy(out, raw[:n])
	return out, nil
}
