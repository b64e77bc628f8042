// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"strings"
	"testing"
)

func TestParseRule(t *testing.T) {
	r, err := ParseRule(`FIELD name=ra set_attrs ucd=pos.eq.ra;meta.main`)
	if err != nil {
		t.Fatalf("ParseRule failed: %v", err)
	}
	if r.Tag != "FIELD" || r.Cond.Kind != ConditionName || r.Cond.Value != "ra" {
		t.Errorf("got %+v", r)
	}
	if r.Act.Verb != ActionSetAttrs || r.Act.Attrs["ucd"] != "pos.eq.ra;meta.main" {
		t.Errorf("got %+v", r.Act)
	}
}

func TestParseRuleMalformed(t *testing.T) {
	tests := []string{
		"",
		"FIELD",
		"FIELD badcondition rm",
		"FIELD name=ra unknown_verb",
		"GROUP name=x rm", // GROUP is not an editable tag
	}
	for _, in := range tests {
		if _, err := ParseRule(in); err == nil {
			t.Errorf("ParseRule(%q) succeeded, want error", in)
		}
	}
}

func TestParseRulePushIncompatible(t *testing.T) {
	if _, err := ParseRule("FIELD name=x push_field name=sub datatype=int"); err == nil {
		t.Error("ParseRule(push_field on FIELD) succeeded, want error")
	}
}

func TestEditorApplyRemoveField(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	ed, err := NewEditor([]string{"FIELD name=mag rm"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	warnings, err := ed.Apply(vt)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("got warnings %+v, want none", warnings)
	}
	tbl := FirstTable(vt)
	if len(tbl.Fields()) != 2 {
		t.Fatalf("got %d fields after removal, want 2", len(tbl.Fields()))
	}
	for _, f := range tbl.Fields() {
		if f.Name == "mag" {
			t.Error("removed field still present")
		}
	}
}

func TestEditorApplySetAttrs(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	ed, err := NewEditor([]string{"FIELD name=mag set_attrs unit=mag ucd=phot.mag"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	if _, err := ed.Apply(vt); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	tbl := FirstTable(vt)
	for _, f := range tbl.Fields() {
		if f.Name == "mag" {
			if f.Unit != "mag" || f.UCD != "phot.mag" {
				t.Errorf("got %+v, want unit=mag ucd=phot.mag", f)
			}
		}
	}
}

func TestEditorApplyUnmatchedRuleWarns(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	ed, err := NewEditor([]string{"FIELD name=doesnotexist rm"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	warnings, err := ed.Apply(vt)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("got %d warnings, want 1", len(warnings))
	}
}

func TestEditorApplyPushField(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	ed, err := NewEditor([]string{"TABLE name=stars push_field name=extra datatype=int"})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	if _, err := ed.Apply(vt); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	tbl := FirstTable(vt)
	if len(tbl.Fields()) != 4 {
		t.Fatalf("got %d fields after push, want 4", len(tbl.Fields()))
	}
	if tbl.Fields()[3].Name != "extra" {
		t.Errorf("pushed field name = %q, want extra", tbl.Fields()[3].Name)
	}
}

// vidsByName walks vt and returns the VID recorded for every named
// FIELD, for checking positional stability across edits.
func vidsByName(t *testing.T, vt *VOTable) map[string]VID {
	t.Helper()
	got := map[string]VID{}
	v := &fieldVIDCollector{got: got}
	if err := Walk(vt, v); err != nil {
		t.Fatalf("Walk failed: %v", err)
	}
	return got
}

type fieldVIDCollector struct {
	NopVisitor
	got map[string]VID
}

func (c *fieldVIDCollector) VisitFieldStart(f *Field, vid VID) error {
	c.got[f.Name] = vid
	return nil
}

func TestEditorRemoveByVIDKeepsEarlierSiblingVIDs(t *testing.T) {
	vt, err := ParseVOTable(strings.NewReader(sampleVOTable))
	if err != nil {
		t.Fatalf("ParseVOTable failed: %v", err)
	}
	before := vidsByName(t, vt)
	if before["ra"] == "" || before["mag"] == "" {
		t.Fatalf("fixture VIDs not collected: %+v", before)
	}

	// Two removals by VID in a single pass: both VIDs are resolved
	// against the original sibling positions before either element is
	// removed, so the earlier sibling keeps the VID it had.
	ed, err := NewEditor([]string{
		"FIELD vid=" + string(before["dec"]) + " rm",
		"FIELD vid=" + string(before["mag"]) + " rm",
	})
	if err != nil {
		t.Fatalf("NewEditor failed: %v", err)
	}
	warnings, err := ed.Apply(vt)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("got warnings %+v, want none", warnings)
	}

	after := vidsByName(t, vt)
	if len(after) != 1 {
		t.Fatalf("got fields %+v after removal, want only ra", after)
	}
	if after["ra"] != before["ra"] {
		t.Errorf("surviving earlier sibling's VID changed: %q -> %q", before["ra"], after["ra"])
	}
}
