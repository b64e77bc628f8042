// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"encoding/xml"
	"strings"
)

// Timescale enumerates TIMESYS's @timescale values, case-insensitive on
// read and lower-case on write.
type Timescale int

const (
	TimescaleTAI Timescale = iota
	TimescaleTT
	TimescaleUT
	TimescaleUTC
	TimescaleGPS
	TimescaleTCG
	TimescaleTCB
	TimescaleTDB
	TimescaleUnknown
)

var timescaleLabels = [...]string{
	TimescaleTAI: "tai", TimescaleTT: "tt", TimescaleUT: "ut", TimescaleUTC: "utc",
	TimescaleGPS: "gps", TimescaleTCG: "tcg", TimescaleTCB: "tcb", TimescaleTDB: "tdb",
	TimescaleUnknown: "unknown",
}

func (t Timescale) String() string { return timescaleLabels[t] }

func parseTimescale(s string) (Timescale, error) {
	for t, l := range timescaleLabels {
		if strings.EqualFold(l, s) {
			return Timescale(t), nil
		}
	}
	return 0, &Error{Kind: KindVariantUnrecognised, Tag: "TIMESYS", Attr: "timescale", Msg: "unrecognised timescale " + s}
}

// RefPosition enumerates TIMESYS's (and COOSYS's, in spirit) reference
// position.
type RefPosition int

const (
	RefPositionTopocenter RefPosition = iota
	RefPositionGeocenter
	RefPositionBarycenter
	RefPositionHeliocenter
	RefPositionEmbarycenter
	RefPositionUnknown
)

var refPositionLabels = [...]string{
	RefPositionTopocenter: "topocenter", RefPositionGeocenter: "geocenter",
	RefPositionBarycenter: "barycenter", RefPositionHeliocenter: "heliocenter",
	RefPositionEmbarycenter: "embarycenter", RefPositionUnknown: "unknown",
}

func (r RefPosition) String() string { return refPositionLabels[r] }

func parseRefPosition(s string) (RefPosition, error) {
	for r, l := range refPositionLabels {
		if strings.EqualFold(l, s) {
			return RefPosition(r), nil
		}
	}
	return 0, &Error{Kind: KindVariantUnrecognised, Msg: "unrecognised refposition " + s}
}

// TimeSys is the TIMESYS element: mandates ID, timescale, and
// refposition; timeorigin is optional. It carries no children.
type TimeSys struct {
	ID          string
	Timescale   Timescale
	RefPosition RefPosition
	TimeOrigin  string
}

var timeSysKnownAttrs = []string{"ID", "timescale", "refposition", "timeorigin"}

func readTimeSys(dec *xml.Decoder, start xml.StartElement) (*TimeSys, error) {
	raw := collectAttrs(start.Attr)
	known, _, err := takeAttrs("TIMESYS", raw, timeSysKnownAttrs, true)
	if err != nil {
		return nil, err
	}
	id, err := requireAttr("TIMESYS", known, "ID")
	if err != nil {
		return nil, err
	}
	tsText, err := requireAttr("TIMESYS", known, "timescale")
	if err != nil {
		return nil, err
	}
	ts, err := parseTimescale(tsText)
	if err != nil {
		return nil, err
	}
	rpText, err := requireAttr("TIMESYS", known, "refposition")
	if err != nil {
		return nil, err
	}
	rp, err := parseRefPosition(rpText)
	if err != nil {
		return nil, err
	}
	if err := skipElement(dec, start); err != nil {
		return nil, err
	}
	return &TimeSys{ID: id, Timescale: ts, RefPosition: rp, TimeOrigin: known["timeorigin"]}, nil
}

func (t *TimeSys) writeTo(w *xmlWriter) {
	w.Open("TIMESYS")
	w.Attr("ID", t.ID)
	w.Attr("timescale", t.Timescale.String())
	w.Attr("refposition", t.RefPosition.String())
	writeAttrIf(w, "timeorigin", t.TimeOrigin)
	w.CloseSelf()
}
