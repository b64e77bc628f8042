// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"io"

	votable "github.com/cds-astro/votable-go"
)

// rawIdenticalPayload reports whether table's current payload encoding
// already matches outFmt, and if so bulk-copies its raw row bytes via
// the bulk binary row reader (CopyRawBinaryRows/CopyRawBinary2Rows)
// instead of decoding and re-encoding every field.
func rawIdenticalPayload(table *votable.Table, schemas []votable.Schema, outFmt string) ([]byte, bool, error) {
	if table.Data == nil {
		return nil, false, nil
	}
	var buf bytes.Buffer
	switch {
	case outFmt == "xml-bin" && table.Data.Binary != nil:
		if _, err := votable.CopyRawBinaryRows(bytes.NewReader(table.Data.Binary.Stream.Data), &buf, schemas); err != nil {
			return nil, false, err
		}
		return buf.Bytes(), true, nil
	case outFmt == "xml-bin2" && table.Data.Binary2 != nil:
		if _, err := votable.CopyRawBinary2Rows(bytes.NewReader(table.Data.Binary2.Stream.Data), &buf, schemas); err != nil {
			return nil, false, err
		}
		return buf.Bytes(), true, nil
	default:
		return nil, false, nil
	}
}

// writeRawConvertedXML attaches a raw bulk-copied payload (from
// rawIdenticalPayload) to table and writes the document back out,
// skipping votable.Convert entirely.
func writeRawConvertedXML(out io.Writer, vt *votable.VOTable, table *votable.Table, outFmt string, raw []byte) error {
	switch outFmt {
	case "xml-bin":
		table.Data.Binary = &votable.Binary{Stream: &votable.Stream{Data: raw}}
	case "xml-bin2":
		table.Data.Binary2 = &votable.Binary2{Stream: &votable.Stream{Data: raw}}
	}
	return vt.WriteTo(out)
}

// writeConvertedXML re-encodes table's rows into the target encoding and
// writes the whole document back out. xml-td construction is cheap
// struct-building with no serialisation cost
// worth parallelising, so --parallel only takes effect for xml-bin/xml-bin2,
// where votable.Convert's chunked pipeline renders the row bytes that go
// straight into the STREAM payload.
func writeConvertedXML(out io.Writer, vt *votable.VOTable, table *votable.Table, schemas []votable.Schema, rows []votable.Row, to votable.Encoding, opts votable.ConvertOptions) error {
	data := &votable.Data{}
	if table.Data != nil {
		data.Infos = table.Data.Infos
	}
	switch to {
	case votable.EncodingTableData:
		trs := make([]votable.TR, len(rows))
		for i, row := range rows {
			trs[i] = votable.RowToTR(row)
		}
		data.TableData = &votable.TableData{Rows: trs}
	case votable.EncodingBinary:
		var buf bytes.Buffer
		if err := votable.Convert(&buf, table.Fields(), schemas, rows, to, opts); err != nil {
			return err
		}
		data.Binary = &votable.Binary{Stream: &votable.Stream{Data: buf.Bytes()}}
	case votable.EncodingBinary2:
		var buf bytes.Buffer
		if err := votable.Convert(&buf, table.Fields(), schemas, rows, to, opts); err != nil {
			return err
		}
		data.Binary2 = &votable.Binary2{Stream: &votable.Stream{Data: buf.Bytes()}}
	}
	table.Data = data
	return vt.WriteTo(out)
}
