// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"io"
)

// RowPlanEntry is one slot of a RowPlan: either a run of Fixed bytes to
// copy wholesale, or a Variable slot whose length is only known once its
// 4-byte count prefix has been read off the wire.
type RowPlanEntry struct {
	Variable  bool
	N         int  // Fixed: exact byte width of the run. Variable: per-element byte width.
	BitPacked bool // Variable only: count is a bit count, so payload bytes = ceil(count/8) rather than count*N.
}

// RowPlan is the run-length plan a bulk binary row reader walks once per
// row: consecutive fixed-width fields collapse into a single Fixed run so
// that copying a row touches the wire only once per variable-length field.
type RowPlan []RowPlanEntry

// PlanRowLayout computes schemas' RowPlan: the same Fixed(n)/Variable(elem_size)
// breakdown Schema.ByteLen reports per field, with adjacent fixed-width
// fields coalesced into one run and bit arrays tagged so their variable
// slot is read as a bit count rather than an element count.
func PlanRowLayout(schemas []Schema) RowPlan {
	var raw []RowPlanEntry
	for _, s := range schemas {
		raw = append(raw, planEntry(s))
	}
	return coalesceFixedRuns(raw)
}

func planEntry(s Schema) RowPlanEntry {
	switch s.Kind {
	case SchemaScalar:
		return RowPlanEntry{N: s.Elem.primitiveByteLen()}
	case SchemaFixedString:
		return RowPlanEntry{N: s.N}
	case SchemaFixedUnicodeString:
		return RowPlanEntry{N: s.N * 2}
	case SchemaFixedArray:
		return RowPlanEntry{N: s.N * s.Elem.primitiveByteLen()}
	case SchemaFixedBitArray:
		return RowPlanEntry{N: (s.N + 7) / 8}
	case SchemaVarString:
		return RowPlanEntry{Variable: true, N: 1}
	case SchemaVarUnicodeString:
		return RowPlanEntry{Variable: true, N: 2}
	case SchemaVarArray:
		return RowPlanEntry{Variable: true, N: s.Elem.primitiveByteLen()}
	case SchemaVarBitArray:
		return RowPlanEntry{Variable: true, BitPacked: true, N: 1}
	default:
		return RowPlanEntry{Variable: true, N: 1}
	}
}

func coalesceFixedRuns(raw []RowPlanEntry) RowPlan {
	var out RowPlan
	for _, e := range raw {
		if !e.Variable && len(out) > 0 && !out[len(out)-1].Variable {
			out[len(out)-1].N += e.N
			continue
		}
		out = append(out, e)
	}
	return out
}

// withLeadingBitmap returns plan prefixed with a Fixed run covering a
// BINARY2-style null bitmap of nbytes bytes, for callers that want to
// copy the bitmap and the field data in one bulk pass.
func (plan RowPlan) withLeadingBitmap(nbytes int) RowPlan {
	if nbytes <= 0 {
		return plan
	}
	out := make(RowPlan, 0, len(plan)+1)
	out = append(out, RowPlanEntry{N: nbytes})
	out = append(out, plan...)
	return coalesceFixedRuns(out)
}

// ReadRawBinaryRow is the bulk binary row reader: it copies one row's
// raw bytes off r according to plan without decoding any individual
// field, returning exactly those bytes. Fixed runs are copied wholesale;
// each Variable slot is read by copying its 4-byte count prefix to the
// output, then copying count × the slot's element width (or, for
// bit-packed slots, ceil(count/8)) more bytes. Any short read while a row is in progress is fatal, since
// by the time this is called the caller has already confirmed more data
// is available.
func ReadRawBinaryRow(r io.Reader, plan RowPlan) ([]byte, error) {
	var buf bytes.Buffer
	for _, e := range plan {
		if !e.Variable {
			if err := copyRawN(&buf, r, int64(e.N)); err != nil {
				return nil, err
			}
			continue
		}
		var prefix [4]byte
		if _, err := io.ReadFull(r, prefix[:]); err != nil {
			return nil, (&Error{Kind: KindPrematureEOF, Msg: "eof reading row count prefix"}).WithCause(err)
		}
		buf.Write(prefix[:])
		count := binary.BigEndian.Uint32(prefix[:])
		var payload int64
		if e.BitPacked {
			payload = int64((count + 7) / 8)
		} else {
			payload = int64(count) * int64(e.N)
		}
		if err := copyRawN(&buf, r, payload); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func copyRawN(dst io.Writer, src io.Reader, n int64) error {
	written, err := io.CopyN(dst, src, n)
	if err != nil || written != n {
		return (&Error{Kind: KindPrematureEOF, Msg: "eof mid binary row"}).WithCause(err)
	}
	return nil
}

// CopyRawBinaryRows is the bulk binary row reader wired to a BINARY
// payload: it copies every complete row's bytes from r to w verbatim,
// peeking before each row so a clean end of stream (no bytes left) stops
// normally while any other short read is fatal, and returns the number
// of rows copied.
func CopyRawBinaryRows(r io.Reader, w io.Writer, schemas []Schema) (int, error) {
	plan := PlanRowLayout(schemas)
	return copyRawRows(r, w, plan)
}

// CopyRawBinary2Rows is CopyRawBinaryRows for a BINARY2 payload: each
// row additionally carries a leading null-bitmap of ceil(N/8) bytes,
// copied through unexamined since a raw identity copy has no reason to
// interpret it.
func CopyRawBinary2Rows(r io.Reader, w io.Writer, schemas []Schema) (int, error) {
	nbytes := (len(schemas) + 7) / 8
	plan := PlanRowLayout(schemas).withLeadingBitmap(nbytes)
	return copyRawRows(r, w, plan)
}

func copyRawRows(r io.Reader, w io.Writer, plan RowPlan) (int, error) {
	br := bufio.NewReader(r)
	n := 0
	for {
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, (&Error{Kind: KindPrematureEOF, Msg: "eof reading binary row"}).WithCause(err)
		}
		raw, err := ReadRawBinaryRow(br, plan)
		if err != nil {
			return n, err
		}
		if _, err := w.Write(raw); err != nil {
			return n, ioErr(err)
		}
		n++
	}
}
