// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestBase64TextRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("votable"), 50)
	encoded := encodeBase64Text(data)
	got, err := decodeBase64Text(encoded)
	if err != nil {
		t.Fatalf("decodeBase64Text failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(data))
	}
}

func TestBase64TextIgnoresWhitespace(t *testing.T) {
	data := []byte("hello world")
	encoded := encodeBase64Text(data)
	withWS := strings.ReplaceAll(encoded, "\n", "\n \t")
	got, err := decodeBase64Text(withWS)
	if err != nil {
		t.Fatalf("decodeBase64Text failed: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestBase64EncoderLineWrap(t *testing.T) {
	var sb strings.Builder
	enc := newBase64Encoder(&sb)
	if _, err := enc.Write(bytes.Repeat([]byte{'A'}, 100)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !strings.HasSuffix(sb.String(), "\n") {
		t.Error("encoded stream does not end with a newline")
	}
	lines := strings.Split(strings.TrimRight(sb.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected multiple wrapped lines, got %d", len(lines))
	}
	for i, line := range lines[:len(lines)-1] {
		if len(line) != base64LineWidth {
			t.Errorf("line %d length = %d, want %d", i, len(line), base64LineWidth)
		}
	}
}

func TestStreamBoundaryReaderStopsAtMarker(t *testing.T) {
	r := &streamBoundaryReader{r: bufio.NewReader(strings.NewReader("QUJD</STREAM>trailing"))}
	buf := make([]byte, 64)
	n, err := r.Read(buf)
	if err != nil && err != io.EOF {
		t.Fatalf("Read failed: %v", err)
	}
	if string(buf[:n]) != "QUJD" {
		t.Errorf("Read() = %q, want %q", buf[:n], "QUJD")
	}
}

func TestBase64DecoderStopsAtStreamEnd(t *testing.T) {
	// "QUJD" decodes to "ABC"; the decoder must stop at </STREAM> and
	// never try to decode the XML that follows it.
	d := newBase64Decoder(strings.NewReader("QU JD\n</STREAM></BINARY>"))
	if !d.HasDataLeft() {
		t.Fatal("HasDataLeft() = false before any byte was consumed")
	}
	got, err := io.ReadAll(d)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if string(got) != "ABC" {
		t.Errorf("decoded %q, want %q", got, "ABC")
	}
	if d.HasDataLeft() {
		t.Error("HasDataLeft() = true after the end marker was consumed")
	}
}

func TestBase64DecoderHasDataLeftTracksConsumption(t *testing.T) {
	encoded := encodeBase64Text([]byte{1, 2, 3, 4})
	d := newBase64Decoder(strings.NewReader(encoded))
	var got []byte
	for d.HasDataLeft() {
		one := make([]byte, 1)
		if _, err := io.ReadFull(d, one); err != nil {
			t.Fatalf("ReadFull failed: %v", err)
		}
		got = append(got, one[0])
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("decoded % X, want 01 02 03 04", got)
	}
}
