// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// MappedFile is a memory-mapped input file, for zero-copy parsing of
// documents already on disk.
type MappedFile struct {
	f  *os.File
	mm mmap.MMap
}

// OpenFile memory-maps path read-only.
func OpenFile(path string) (*MappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, (&Error{Kind: KindIoFailure, Msg: "open failed"}).WithCause(err)
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, (&Error{Kind: KindIoFailure, Msg: "mmap failed"}).WithCause(err)
	}
	return &MappedFile{f: f, mm: m}, nil
}

// Bytes returns the mapped content.
func (mf *MappedFile) Bytes() []byte { return mf.mm }

// Close unmaps and closes the underlying file.
func (mf *MappedFile) Close() error {
	err := mf.mm.Unmap()
	if cerr := mf.f.Close(); err == nil {
		err = cerr
	}
	return err
}

// StreamReader is a resumable VOTable reader: it walks the document
// exactly once, driving an INIT -> DATA_OPEN -> EXHAUSTED -> DONE state
// machine internally, yielding the first
// table's rows one at a time instead of materialising them, then
// resuming ordinary parsing for whatever metadata follows (tail
// resumption). Only the first DATA block encountered in the document
// streams; any further table found while finishing the parse is
// materialised in full, the same as ParseVOTable would.
type StreamReader struct {
	cancel context.CancelFunc
	rows   chan Row

	tableReady chan struct{}
	tableOnce  sync.Once
	table      *Table
	schemas    []Schema

	kindReady chan struct{}
	kindOnce  sync.Once
	kind      string

	result chan streamOutcome
}

type streamOutcome struct {
	vt  *VOTable
	err error
}

// OpenStream memory-maps path and begins streaming it in a background
// goroutine. Callers must eventually call Close.
func OpenStream(path string) (*StreamReader, error) {
	mf, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	sr := &StreamReader{
		cancel:     cancel,
		rows:       make(chan Row),
		tableReady: make(chan struct{}),
		kindReady:  make(chan struct{}),
		result:     make(chan streamOutcome, 1),
	}
	go sr.run(ctx, mf)
	return sr, nil
}

func (sr *StreamReader) run(ctx context.Context, mf *MappedFile) {
	defer mf.Close()
	defer close(sr.rows)
	sc := &streamCursor{ctx: ctx, rows: sr.rows, mark: sr.markTableReady, markKind: sr.markPayloadKind}
	vt, err := parseStreamingVOTable(bytes.NewReader(mf.Bytes()), sc)
	sr.tableOnce.Do(func() { close(sr.tableReady) })
	sr.kindOnce.Do(func() { close(sr.kindReady) })
	sr.result <- streamOutcome{vt: vt, err: err}
	close(sr.result)
}

func (sr *StreamReader) markTableReady(t *Table, schemas []Schema) {
	sr.tableOnce.Do(func() {
		sr.table = t
		sr.schemas = schemas
		close(sr.tableReady)
	})
}

func (sr *StreamReader) markPayloadKind(kind string) {
	sr.kindOnce.Do(func() {
		sr.kind = kind
		close(sr.kindReady)
	})
}

// PayloadKind blocks until the streamed table's payload tag is known
// and returns it ("TABLEDATA", "BINARY", "BINARY2" or "FITS"), or the
// empty string when the document has no DATA block at all.
func (sr *StreamReader) PayloadKind() string {
	<-sr.kindReady
	return sr.kind
}

// Table blocks until the streamed table's FIELD/PARAM metadata is
// known (or the document turns out to have no table at all, in which
// case it returns nil).
func (sr *StreamReader) Table() *Table {
	<-sr.tableReady
	return sr.table
}

// Schemas blocks the same way as Table and returns its derived schemas.
func (sr *StreamReader) Schemas() []Schema {
	<-sr.tableReady
	return sr.schemas
}

// Next returns the next streamed row, or ok=false once the table's
// payload is exhausted. Call Close afterwards to retrieve any parse
// error and the fully resumed tree.
func (sr *StreamReader) Next() (Row, bool) {
	row, ok := <-sr.rows
	return row, ok
}

// Close stops streaming (if rows remain, they are discarded) and waits
// for the parser to finish resuming the rest of the document, returning
// the complete tree and any error encountered along the way.
func (sr *StreamReader) Close() (*VOTable, error) {
	sr.cancel()
	for range sr.rows {
		// drain so the producer goroutine's blocked send unblocks
	}
	out := <-sr.result
	return out.vt, out.err
}

// ReadAll is the non-streaming convenience path: open, materialise the
// whole document, and return it in one call.
func ReadAll(path string) (*VOTable, error) {
	mf, err := OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer mf.Close()
	return ParseVOTable(bytes.NewReader(mf.Bytes()))
}

// streamCursor carries the plumbing every streamXxxOnce function needs:
// the cancellation context, the row output channel, and the callback
// that publishes the streamed table's schema exactly once.
type streamCursor struct {
	ctx      context.Context
	rows     chan<- Row
	mark     func(t *Table, schemas []Schema)
	markKind func(kind string)

	mu       sync.Mutex
	streamed bool
}

func (sc *streamCursor) claim() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.streamed {
		return false
	}
	sc.streamed = true
	return true
}

func (sc *streamCursor) send(row Row) bool {
	select {
	case sc.rows <- row:
		return true
	case <-sc.ctx.Done():
		return false
	}
}

func (sc *streamCursor) cancelled() bool {
	return sc.ctx.Err() != nil
}

// parseStreamingVOTable mirrors readVOTable (votable.go), using
// streamResourceOnce in place of readResource so the first DATA block
// found anywhere in the document streams instead of materialising.
func parseStreamingVOTable(r io.Reader, sc *streamCursor) (*VOTable, error) {
	dec := xml.NewDecoder(r)
	dec.Strict = false
	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	start, ok := tok.(xml.StartElement)
	if !ok || start.Name.Local != "VOTABLE" {
		return nil, &Error{Kind: KindUnexpectedStart, Tag: "document"}
	}

	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("VOTABLE", raw, votableKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	version, err := requireAttr("VOTABLE", known, "version")
	if err != nil {
		return nil, err
	}
	vt := &VOTable{Version: version, ID: known["ID"], Extra: extra}
	seenResource := false
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "VOTABLE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "VOTABLE", Attr: t.Name.Local}
			}
			return vt, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Description = d
			case "DEFINITIONS":
				defs, err := readDefinitions(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Definitions = defs
			case "COOSYS":
				cs, err := readCooSys(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{CooSys: cs})
			case "TIMESYS":
				ts, err := readTimeSys(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{TimeSys: ts})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{Group: g})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Elems = append(vt.Elems, VOTableElem{Param: p})
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				if seenResource {
					vt.PostInfos = append(vt.PostInfos, info)
				} else {
					vt.Elems = append(vt.Elems, VOTableElem{Info: info})
				}
			case "RESOURCE":
				res, err := streamResourceOnce(dec, t, sc)
				if err != nil {
					return nil, err
				}
				vt.Resources = append(vt.Resources, res)
				seenResource = true
			case "VODML":
				vm, err := readVodml(dec, t)
				if err != nil {
					return nil, err
				}
				vt.Vodml = vm
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "VOTABLE", Attr: t.Name.Local}
			}
		}
		if sc.cancelled() {
			return vt, nil
		}
	}
}

func streamResourceOnce(dec *xml.Decoder, start xml.StartElement, sc *streamCursor) (*Resource, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("RESOURCE", raw, resourceKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	r := &Resource{
		ID: known["ID"], Name: known["name"], Type: known["type"],
		UType: known["utype"], Ref: known["ref"], Extra: extra,
	}
	seenChild := false
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "RESOURCE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "RESOURCE", Attr: t.Name.Local}
			}
			return r, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				r.Description = d
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				if seenChild {
					r.PostInfos = append(r.PostInfos, info)
				} else {
					r.PreInfos = append(r.PreInfos, info)
				}
			case "COOSYS":
				cs, err := readCooSys(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{CooSys: cs})
			case "TIMESYS":
				ts, err := readTimeSys(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{TimeSys: ts})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Group: g})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Param: p})
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				r.Elems = append(r.Elems, ResourceElem{Link: l})
			case "RESOURCE":
				sub, err := streamResourceOnce(dec, t, sc)
				if err != nil {
					return nil, err
				}
				r.Children = append(r.Children, ResourceChild{Resource: sub})
				seenChild = true
			case "TABLE":
				tbl, err := streamTableOnce(dec, t, sc)
				if err != nil {
					return nil, err
				}
				r.Children = append(r.Children, ResourceChild{Table: tbl})
				seenChild = true
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "RESOURCE", Attr: t.Name.Local}
			}
		}
		if sc.cancelled() {
			return r, nil
		}
	}
}

func streamTableOnce(dec *xml.Decoder, start xml.StartElement, sc *streamCursor) (*Table, error) {
	raw := collectAttrs(start.Attr)
	known, extra, err := takeAttrs("TABLE", raw, tableKnownAttrs, false)
	if err != nil {
		return nil, err
	}
	tbl := &Table{
		ID: known["ID"], Name: known["name"], Ref: known["ref"],
		UCD: known["ucd"], UType: known["utype"], NRows: known["nrows"], Extra: extra,
	}
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "TABLE" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "TABLE", Attr: t.Name.Local}
			}
			return tbl, nil
		case xml.StartElement:
			switch t.Name.Local {
			case "DESCRIPTION":
				d, err := readDescription(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Description = d
			case "FIELD":
				f, err := readField(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Field: f})
			case "PARAM":
				p, err := readParam(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Param: p})
			case "GROUP":
				g, err := readGroup(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Columns = append(tbl.Columns, TableFieldOrParam{Group: g})
			case "LINK":
				l, err := readLink(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Links = append(tbl.Links, l)
			case "DATA":
				if sc.claim() {
					d, err := streamData(dec, t, tbl, sc)
					if err != nil {
						return nil, err
					}
					tbl.Data = d
				} else {
					d, err := readData(dec, t)
					if err != nil {
						return nil, err
					}
					tbl.Data = d
				}
			case "INFO":
				info, err := readInfo(dec, t)
				if err != nil {
					return nil, err
				}
				tbl.Infos = append(tbl.Infos, info)
			default:
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "TABLE", Attr: t.Name.Local}
			}
		}
		if sc.cancelled() {
			return tbl, nil
		}
	}
}

// streamData reads tbl's DATA element, publishing tbl's schema via
// sc.mark before touching the payload and sending every decoded row
// through sc.send instead of materialising them. The returned *Data
// carries trailing INFOs (and, for FITS, its Stream reference) but
// leaves TableData/Binary/Binary2 nil: those rows already went out
// over the channel.
func streamData(dec *xml.Decoder, start xml.StartElement, tbl *Table, sc *streamCursor) (*Data, error) {
	if len(start.Attr) > 0 {
		return nil, &Error{Kind: KindUnexpectedAttr, Tag: "DATA", Attr: start.Attr[0].Name.Local}
	}
	schemas, err := tbl.Schemas()
	if err != nil {
		return nil, err
	}
	sc.mark(tbl, schemas)

	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return nil, err
	}
	payloadStart, ok := tok.(xml.StartElement)
	if !ok {
		return nil, unexpectedToken("DATA", tok)
	}
	sc.markKind(payloadStart.Name.Local)

	d := &Data{}
	switch payloadStart.Name.Local {
	case "TABLEDATA":
		if err := streamTableDataRows(dec, schemas, sc); err != nil {
			return nil, err
		}
	case "BINARY":
		if err := streamBinaryRows(dec, payloadStart, "BINARY", schemas, sc, false); err != nil {
			return nil, err
		}
	case "BINARY2":
		if err := streamBinaryRows(dec, payloadStart, "BINARY2", schemas, sc, true); err != nil {
			return nil, err
		}
	case "FITS":
		fits, err := readFits(dec, payloadStart)
		if err != nil {
			return nil, err
		}
		d.Fits = fits
	default:
		return nil, unexpectedToken("DATA", tok)
	}

	for {
		tok, err := tr.next()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "DATA" {
				return nil, &Error{Kind: KindUnexpectedEnd, Tag: "DATA", Attr: t.Name.Local}
			}
			return d, nil
		case xml.StartElement:
			if t.Name.Local != "INFO" {
				return nil, &Error{Kind: KindUnexpectedStart, Tag: "DATA", Attr: t.Name.Local}
			}
			info, err := readInfo(dec, t)
			if err != nil {
				return nil, err
			}
			d.Infos = append(d.Infos, info)
		}
	}
}

// streamBinaryRows reads a BINARY or BINARY2 payload's STREAM element
// and decodes rows off the whitespace-tolerant base64 byte stream one
// at a time, sending each over sc instead of materialising the whole
// payload first. withBitmap selects BINARY2's per-row null-flag prefix.
// An href STREAM carries no inline data, so nothing is streamed for it,
// the same as the materialising reader.
func streamBinaryRows(dec *xml.Decoder, start xml.StartElement, tag string, schemas []Schema, sc *streamCursor, withBitmap bool) error {
	if len(start.Attr) > 0 {
		return &Error{Kind: KindUnexpectedAttr, Tag: tag, Attr: start.Attr[0].Name.Local}
	}
	tr := newTokenReader(dec)
	tok, err := tr.next()
	if err != nil {
		return err
	}
	st, ok := tok.(xml.StartElement)
	if !ok || st.Name.Local != "STREAM" {
		return unexpectedToken(tag, tok)
	}
	raw := collectAttrs(st.Attr)
	known, _, err := takeAttrs("STREAM", raw, streamKnownAttrs, false)
	if err != nil {
		return err
	}
	text, err := readText(dec, "STREAM")
	if err != nil {
		return err
	}
	if known["href"] == "" {
		if err := streamDecodedRows(strings.NewReader(text), schemas, sc, withBitmap); err != nil {
			return err
		}
	}
	return expectEnd(tr, tag)
}

// streamDecodedRows drives the base64 decoder row by row: HasDataLeft
// decides whether another row starts, and any short read after that
// point is fatal rather than a clean end of stream.
func streamDecodedRows(r io.Reader, schemas []Schema, sc *streamCursor, withBitmap bool) error {
	d := newBase64Decoder(r)
	nbytes := (len(schemas) + 7) / 8
	for d.HasDataLeft() {
		var row Row
		var err error
		if withBitmap {
			bitmap := make([]byte, nbytes)
			if _, rerr := io.ReadFull(d, bitmap); rerr != nil {
				return (&Error{Kind: KindPrematureEOF, Msg: "eof reading binary2 null bitmap"}).WithCause(rerr)
			}
			row, err = decodeRowWithBitmap(d, schemas, bitmap)
		} else {
			row, err = decodeRow(d, schemas)
		}
		if err != nil {
			return err
		}
		if !sc.send(row) {
			return nil
		}
	}
	return nil
}

// streamTableDataRows streams each TR in a TABLEDATA payload, decoding
// it against schemas as it goes rather than collecting a []TR first.
func streamTableDataRows(dec *xml.Decoder, schemas []Schema, sc *streamCursor) error {
	tr := newTokenReader(dec)
	for {
		tok, err := tr.next()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.EndElement:
			if t.Name.Local != "TABLEDATA" {
				return &Error{Kind: KindUnexpectedEnd, Tag: "TABLEDATA", Attr: t.Name.Local}
			}
			return nil
		case xml.StartElement:
			if t.Name.Local != "TR" {
				return &Error{Kind: KindUnexpectedStart, Tag: "TABLEDATA", Attr: t.Name.Local}
			}
			row, err := readTR(dec, t)
			if err != nil {
				return err
			}
			if len(row.Cells) != len(schemas) {
				return WrongFieldNumberError(len(schemas), len(row.Cells))
			}
			out := make(Row, len(schemas))
			for i, cell := range row.Cells {
				v, err := schemas[i].ValueFromStr(cell)
				if err != nil {
					return err
				}
				out[i] = v
			}
			if !sc.send(out) {
				if err := skipElement(dec, xml.StartElement{Name: xml.Name{Local: "TABLEDATA"}}); err != nil {
					return err
				}
				return nil
			}
		}
	}
}
