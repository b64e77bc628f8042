// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bufio"
	"bytes"
	"io"
)

// Row is one decoded table row, one Value per column in FIELD order.
type Row []Value

// RowsFromTableData converts every TR's raw <TD> text cells into typed
// Values according to schemas. A row whose cell count disagrees with
// len(schemas) is a WrongFieldNumberError.
func RowsFromTableData(td *TableData, schemas []Schema) ([]Row, error) {
	out := make([]Row, len(td.Rows))
	for i, tr := range td.Rows {
		if len(tr.Cells) != len(schemas) {
			return nil, WrongFieldNumberError(len(schemas), len(tr.Cells))
		}
		row := make(Row, len(schemas))
		for j, cell := range tr.Cells {
			v, err := schemas[j].ValueFromStr(cell)
			if err != nil {
				return nil, err
			}
			row[j] = v
		}
		out[i] = row
	}
	return out, nil
}

// RowToTR renders row as a TR's text cells, the inverse of
// RowsFromTableData, for TABLEDATA output.
func RowToTR(row Row) TR {
	cells := make([]string, len(row))
	for i, v := range row {
		cells[i] = v.Display()
	}
	return TR{Cells: cells}
}

// DecodeBinaryRows decodes a BINARY STREAM payload: a flat sequence of
// rows, each row the concatenation of schemas[i].Serialize-width cells
// with no null bitmap. A row boundary is checked by peeking for
// further data before committing to decode a row; once that
// peek confirms a row is starting, any read failure partway through
// it — EOF or otherwise — is fatal rather than being reinterpreted as
// a clean end of stream.
func DecodeBinaryRows(r io.Reader, schemas []Schema) ([]Row, error) {
	br := bufio.NewReader(r)
	var out []Row
	for {
		if _, err := br.Peek(1); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, (&Error{Kind: KindPrematureEOF, Msg: "eof reading binary row"}).WithCause(err)
		}
		row, err := decodeRow(br, schemas)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}

// DecodeBinary2Rows decodes a BINARY2 STREAM payload: each row prefixed
// by a ceil(len(schemas)/8)-byte null-flag bitmap (MSB-first, bit set
// means the corresponding field is null). The row's field bytes are
// still present and consumed on the wire for a null field; only the
// decoded Value is overridden to Null.
func DecodeBinary2Rows(r io.Reader, schemas []Schema) ([]Row, error) {
	var out []Row
	nbytes := (len(schemas) + 7) / 8
	for {
		bitmap := make([]byte, nbytes)
		if _, err := io.ReadFull(r, bitmap); err != nil {
			if err == io.EOF {
				return out, nil
			}
			return nil, (&Error{Kind: KindPrematureEOF, Msg: "eof reading binary2 null bitmap"}).WithCause(err)
		}
		row, err := decodeRowWithBitmap(r, schemas, bitmap)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}

func decodeRow(r io.Reader, schemas []Schema) (Row, error) {
	row := make(Row, len(schemas))
	for i, s := range schemas {
		v, err := s.Deserialize(r)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

func decodeRowWithBitmap(r io.Reader, schemas []Schema, bitmap []byte) (Row, error) {
	row := make(Row, len(schemas))
	for i, s := range schemas {
		v, err := s.Deserialize(r)
		if err != nil {
			return nil, err
		}
		if bitSet(bitmap, i) {
			v = NullValue()
		}
		row[i] = v
	}
	return row, nil
}

func bitSet(bitmap []byte, i int) bool {
	byteIdx := i / 8
	if byteIdx >= len(bitmap) {
		return false
	}
	return bitmap[byteIdx]&(1<<(7-uint(i%8))) != 0
}

// EncodeBinaryRows writes rows in BINARY's flat row format.
func EncodeBinaryRows(w io.Writer, schemas []Schema, rows []Row) error {
	for _, row := range rows {
		if len(row) != len(schemas) {
			return WrongFieldNumberError(len(schemas), len(row))
		}
		for i, s := range schemas {
			if err := s.Serialize(w, row[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// EncodeBinary2Rows writes rows in BINARY2's bitmap-prefixed row format,
// deriving each row's null bitmap from Value.IsNull() rather than
// requiring the caller to track it separately.
func EncodeBinary2Rows(w io.Writer, schemas []Schema, rows []Row) error {
	nbytes := (len(schemas) + 7) / 8
	for _, row := range rows {
		if len(row) != len(schemas) {
			return WrongFieldNumberError(len(schemas), len(row))
		}
		bitmap := make([]byte, nbytes)
		for i, v := range row {
			if v.IsNull() {
				bitmap[i/8] |= 1 << (7 - uint(i%8))
			}
		}
		if _, err := w.Write(bitmap); err != nil {
			return ioErr(err)
		}
		for i, s := range schemas {
			if err := s.Serialize(w, row[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rows decodes t's DATA payload into typed rows according to schemas
// (normally t.Schemas()). FITS payloads are not decoded; the core
// treats them as an opaque out-of-band reference.
func (t *Table) Rows(schemas []Schema) ([]Row, error) {
	if t.Data == nil {
		return nil, nil
	}
	switch {
	case t.Data.TableData != nil:
		return RowsFromTableData(t.Data.TableData, schemas)
	case t.Data.Binary != nil:
		return DecodeBinaryRows(bytes.NewReader(t.Data.Binary.Stream.Data), schemas)
	case t.Data.Binary2 != nil:
		return DecodeBinary2Rows(bytes.NewReader(t.Data.Binary2.Stream.Data), schemas)
	case t.Data.Fits != nil:
		return nil, &Error{Kind: KindCustom, Tag: "FITS", Msg: "FITS payloads are opaque; rows cannot be decoded"}
	default:
		return nil, nil
	}
}
