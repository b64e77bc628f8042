// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"strings"
	"testing"
)

// A document whose DATA block carries formatting the tree writer would
// never reproduce: uneven indentation, a comment, and padded cell text.
const oddlyFormattedVOTable = `<?xml version="1.0"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE name="stars">
      <FIELD name="ra" datatype="double"/>
      <DATA><TABLEDATA>
   <TR><TD> 10.5 </TD></TR>
        <!-- second row -->
<TR><TD>20.0</TD></TR>
      </TABLEDATA>   </DATA>
    </TABLE>
  </RESOURCE>
</VOTABLE>
`

func TestFindDataSegments(t *testing.T) {
	input := []byte(oddlyFormattedVOTable)
	segs, err := findDataSegments(input)
	if err != nil {
		t.Fatalf("findDataSegments failed: %v", err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	raw := string(input[segs[0].start:segs[0].end])
	if !strings.HasPrefix(raw, "<DATA>") {
		t.Errorf("segment starts with %q, want <DATA>", raw[:10])
	}
	if !strings.HasSuffix(raw, "</DATA>") {
		t.Errorf("segment ends with %q, want </DATA>", raw[len(raw)-10:])
	}
	if !strings.Contains(raw, "<!-- second row -->") {
		t.Error("segment lost the embedded comment")
	}
}

func TestFindDataSegmentsTwoTables(t *testing.T) {
	input := []byte(`<?xml version="1.0"?>
<VOTABLE version="1.4">
  <RESOURCE>
    <TABLE><FIELD name="a" datatype="int"/><DATA><TABLEDATA><TR><TD>1</TD></TR></TABLEDATA></DATA></TABLE>
    <TABLE><FIELD name="b" datatype="int"/><DATA><TABLEDATA><TR><TD>2</TD></TR></TABLEDATA></DATA></TABLE>
  </RESOURCE>
</VOTABLE>
`)
	segs, err := findDataSegments(input)
	if err != nil {
		t.Fatalf("findDataSegments failed: %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("got %d segments, want 2", len(segs))
	}
	for i, seg := range segs {
		raw := string(input[seg.start:seg.end])
		if !strings.HasPrefix(raw, "<DATA>") || !strings.HasSuffix(raw, "</DATA>") {
			t.Errorf("segment %d = %q, want a full <DATA> element", i, raw)
		}
	}
}

func TestApplyStreamingPreservesDataBytes(t *testing.T) {
	input := []byte(oddlyFormattedVOTable)
	ed, err := NewEditor([]string{"FIELD name=ra set_attrs ucd=pos.eq.ra;meta.main unit=deg"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	var out bytes.Buffer
	warnings, err := ed.ApplyStreaming(input, &out)
	if err != nil {
		t.Fatalf("ApplyStreaming failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("got warnings %+v, want none", warnings)
	}

	segs, err := findDataSegments(input)
	if err != nil {
		t.Fatalf("findDataSegments failed: %v", err)
	}
	raw := input[segs[0].start:segs[0].end]
	if !bytes.Contains(out.Bytes(), raw) {
		t.Error("output does not carry the DATA block byte-for-byte")
	}
	got := out.String()
	if !strings.Contains(got, `ucd="pos.eq.ra;meta.main"`) || !strings.Contains(got, `unit="deg"`) {
		t.Errorf("edited FIELD attributes missing from output:\n%s", got)
	}

	vt, err := ParseVOTable(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("re-parsing streamed output failed: %v", err)
	}
	tbl := FirstTable(vt)
	if tbl == nil || tbl.Data == nil || tbl.Data.TableData == nil {
		t.Fatal("streamed output lost the TABLEDATA payload")
	}
	if len(tbl.Data.TableData.Rows) != 2 {
		t.Errorf("got %d rows, want 2", len(tbl.Data.TableData.Rows))
	}
}

func TestApplyStreamingRemovedTableDropsData(t *testing.T) {
	input := []byte(oddlyFormattedVOTable)
	ed, err := NewEditor([]string{"TABLE name=stars rm"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	var out bytes.Buffer
	if _, err := ed.ApplyStreaming(input, &out); err != nil {
		t.Fatalf("ApplyStreaming failed: %v", err)
	}
	if strings.Contains(out.String(), "<DATA") {
		t.Error("removed table's DATA block still present in output")
	}
}
