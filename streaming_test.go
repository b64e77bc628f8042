// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func writeSampleFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.vot")
	if err := os.WriteFile(path, []byte(sampleVOTable), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestOpenFileBytes(t *testing.T) {
	path := writeSampleFile(t)
	mf, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer mf.Close()
	if len(mf.Bytes()) != len(sampleVOTable) {
		t.Errorf("got %d mapped bytes, want %d", len(mf.Bytes()), len(sampleVOTable))
	}
}

func TestOpenFileMissing(t *testing.T) {
	if _, err := OpenFile(filepath.Join(t.TempDir(), "does-not-exist.vot")); err == nil {
		t.Error("OpenFile(missing) succeeded, want error")
	}
}

func TestReadAll(t *testing.T) {
	path := writeSampleFile(t)
	vt, err := ReadAll(path)
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	tbl := FirstTable(vt)
	if tbl == nil || tbl.Name != "stars" {
		t.Fatalf("got table %+v", tbl)
	}
}

func TestStreamReaderYieldsAllRowsThenClose(t *testing.T) {
	path := writeSampleFile(t)
	sr, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}

	tbl := sr.Table()
	if tbl == nil || tbl.Name != "stars" {
		t.Fatalf("got table %+v", tbl)
	}
	schemas := sr.Schemas()
	if len(schemas) != len(tbl.Fields()) {
		t.Fatalf("got %d schemas, want %d", len(schemas), len(tbl.Fields()))
	}
	if kind := sr.PayloadKind(); kind != "TABLEDATA" {
		t.Errorf("PayloadKind() = %q, want TABLEDATA", kind)
	}

	var rows []Row
	for {
		row, ok := sr.Next()
		if !ok {
			break
		}
		rows = append(rows, row)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d streamed rows, want 2", len(rows))
	}

	vt, err := sr.Close()
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if vt == nil || vt.Version == "" {
		t.Errorf("Close returned incomplete tree: %+v", vt)
	}
}

func TestStreamReaderCloseEarlyDrains(t *testing.T) {
	path := writeSampleFile(t)
	sr, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	_ = sr.Table()
	// Stop after a single row without exhausting the channel; Close must
	// still unblock the producer goroutine and return cleanly.
	sr.Next()
	if _, err := sr.Close(); err != nil {
		t.Fatalf("Close after early stop failed: %v", err)
	}
}

func TestStreamReaderNoTableYieldsNilTable(t *testing.T) {
	const noTable = `<?xml version="1.0"?>
<VOTABLE version="1.4">
  <DESCRIPTION>empty</DESCRIPTION>
</VOTABLE>`
	path := filepath.Join(t.TempDir(), "empty.vot")
	if err := os.WriteFile(path, []byte(noTable), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sr, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	if tbl := sr.Table(); tbl != nil {
		t.Errorf("got table %+v, want nil", tbl)
	}
	if _, ok := sr.Next(); ok {
		t.Error("Next() returned a row from a document with no table")
	}
	if kind := sr.PayloadKind(); kind != "" {
		t.Errorf("PayloadKind() = %q, want empty", kind)
	}
	if _, err := sr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStreamReaderBinaryPayload(t *testing.T) {
	schemas := []Schema{{Kind: SchemaScalar, Elem: DatatypeInt}}
	rows := []Row{{Value{Kind: ValueInt, I: 7}}, {Value{Kind: ValueInt, I: 8}}}
	var payload bytes.Buffer
	if err := EncodeBinaryRows(&payload, schemas, rows); err != nil {
		t.Fatalf("EncodeBinaryRows failed: %v", err)
	}
	doc := `<?xml version="1.0"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="t">
      <FIELD name="n" datatype="int"/>
      <DATA><BINARY><STREAM>` + encodeBase64Text(payload.Bytes()) + `</STREAM></BINARY></DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>`
	path := filepath.Join(t.TempDir(), "bin.vot")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	sr, err := OpenStream(path)
	if err != nil {
		t.Fatalf("OpenStream failed: %v", err)
	}
	if kind := sr.PayloadKind(); kind != "BINARY" {
		t.Errorf("PayloadKind() = %q, want BINARY", kind)
	}
	var got []int64
	for {
		row, ok := sr.Next()
		if !ok {
			break
		}
		got = append(got, row[0].I)
	}
	if len(got) != 2 || got[0] != 7 || got[1] != 8 {
		t.Errorf("streamed rows = %v, want [7 8]", got)
	}
	if _, err := sr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}
