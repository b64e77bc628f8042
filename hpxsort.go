// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"bytes"
	"os"
	"sort"

	"github.com/cds-astro/votable-go/healpix"
)

// HpxSortOptions configures the hpxsort row reordering pass: reorder a
// table's rows by HEALPix ring-scheme pixel index at a caller-chosen
// depth, either fully in memory or via a simple chunked external sort
// for tables too large to hold in memory at once.
type HpxSortOptions struct {
	Depth        int
	LonField     string // explicit FIELD name, "" to auto-detect
	LatField     string
	FullInMemory bool
	ChunkSize    int    // rows per spilled chunk, default 50000
	TmpDir       string // default os.TempDir()
}

func (o HpxSortOptions) chunkSize() int {
	if o.ChunkSize > 0 {
		return o.ChunkSize
	}
	return 50000
}

func (o HpxSortOptions) tmpDir() string {
	if o.TmpDir != "" {
		return o.TmpDir
	}
	return os.TempDir()
}

// hpxFields projects []*Field down to the shape healpix.FindLonColumn and
// healpix.FindLatColumn need, keeping that package free of a dependency on
// this one.
func hpxFields(fields []*Field) []healpix.FieldInfo {
	out := make([]healpix.FieldInfo, len(fields))
	for i, f := range fields {
		out[i] = healpix.FieldInfo{
			Name:    f.Name,
			UCD:     f.UCD,
			IsFloat: f.Datatype == DatatypeFloat || f.Datatype == DatatypeDouble,
		}
	}
	return out
}

// LocatePositionColumns resolves the longitude/latitude column indices for
// fields following a fixed lookup precedence:
// explicit name, then position UCD with meta.main, then bare position UCD,
// then name prefix.
func LocatePositionColumns(fields []*Field, opts HpxSortOptions) (lonIdx, latIdx int, err error) {
	hf := hpxFields(fields)
	lonIdx, ok := healpix.FindLonColumn(hf, opts.LonField)
	if !ok {
		return 0, 0, &Error{Kind: KindCustom, Msg: "no longitude column found"}
	}
	latIdx, ok = healpix.FindLatColumn(hf, opts.LatField)
	if !ok {
		return 0, 0, &Error{Kind: KindCustom, Msg: "no latitude column found"}
	}
	return lonIdx, latIdx, nil
}

// cellDeg extracts a FLOAT/DOUBLE cell as decimal degrees. ok is false for
// a null cell or a cell that isn't numeric.
func cellDeg(v Value) (float64, bool) {
	if v.IsNull() {
		return 0, false
	}
	switch v.Kind {
	case ValueFloat, ValueDouble:
		return v.F, true
	default:
		return 0, false
	}
}

// hpxIndexOf computes row's HEALPix pixel index at depth, using lonIdx and
// latIdx as the longitude/latitude cell positions. On a missing or
// non-numeric coordinate it returns index -1 (sorts first) along with a
// Warning, so a parse failure is never silently folded into a legitimate
// pixel at the origin.
func hpxIndexOf(row Row, lonIdx, latIdx, depth int) (int64, *Warning) {
	lon, ok1 := cellDeg(row[lonIdx])
	lat, ok2 := cellDeg(row[latIdx])
	if !ok1 || !ok2 {
		return -1, &Warning{Tag: "hpxsort", Msg: "coordinate parse failure, sorting row first"}
	}
	idx, err := healpix.Ang2PixRing(depth, lon, lat)
	if err != nil {
		return -1, &Warning{Tag: "hpxsort", Msg: "coordinate parse failure, sorting row first"}
	}
	return idx, nil
}

// SortRowsFullInMemory reorders rows by HEALPix pixel index, holding the
// entire table in memory. The sort is stable: rows sharing a pixel index
// keep their original relative order.
func SortRowsFullInMemory(fields []*Field, rows []Row, opts HpxSortOptions) ([]Row, []Warning, error) {
	lonIdx, latIdx, err := LocatePositionColumns(fields, opts)
	if err != nil {
		return nil, nil, err
	}
	type keyed struct {
		idx int64
		row Row
	}
	ks := make([]keyed, len(rows))
	var warnings []Warning
	for i, row := range rows {
		idx, warn := hpxIndexOf(row, lonIdx, latIdx, opts.Depth)
		if warn != nil {
			warnings = append(warnings, *warn)
		}
		ks[i] = keyed{idx: idx, row: row}
	}
	sort.SliceStable(ks, func(i, j int) bool { return ks[i].idx < ks[j].idx })
	out := make([]Row, len(ks))
	for i, k := range ks {
		out[i] = k.row
	}
	return out, warnings, nil
}

// hpxChunk is a sorted, in-memory run of rows spilled to a temp file,
// encoded with the same BINARY2 row codec used for wire transport so no
// extra serialisation format is needed for intermediate files.
type hpxChunk struct {
	path string
	idx  []int64
}

// SortRowsExternal performs a simple chunked external sort suited to
// tables too large to hold entirely in memory: it reads rows in batches of
// opts.chunkSize(), sorts each batch in memory, spills it to a temp file
// under opts.tmpDir(), then performs a k-way merge of the spilled chunks
// while streaming the merged rows to emit. No HEALPix-aware bucketing is
// attempted; a plain chunked sort-and-merge is enough to bound memory by
// the chunk size.
func SortRowsExternal(fields []*Field, schemas []Schema, next func() (Row, bool, error), emit func(Row) error, opts HpxSortOptions) ([]Warning, error) {
	lonIdx, latIdx, err := LocatePositionColumns(fields, opts)
	if err != nil {
		return nil, err
	}

	var warnings []Warning
	var chunks []hpxChunk
	defer func() {
		for _, c := range chunks {
			os.Remove(c.path)
		}
	}()

	chunkSize := opts.chunkSize()
	batch := make([]Row, 0, chunkSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		type keyed struct {
			idx int64
			row Row
		}
		ks := make([]keyed, len(batch))
		for i, row := range batch {
			idx, warn := hpxIndexOf(row, lonIdx, latIdx, opts.Depth)
			if warn != nil {
				warnings = append(warnings, *warn)
			}
			ks[i] = keyed{idx: idx, row: row}
		}
		sort.SliceStable(ks, func(i, j int) bool { return ks[i].idx < ks[j].idx })
		sortedRows := make([]Row, len(ks))
		idxs := make([]int64, len(ks))
		for i, k := range ks {
			sortedRows[i] = k.row
			idxs[i] = k.idx
		}
		f, err := os.CreateTemp(opts.tmpDir(), "hpxsort-*.bin2")
		if err != nil {
			return (&Error{Kind: KindIoFailure, Msg: "create temp chunk failed"}).WithCause(err)
		}
		defer f.Close()
		if err := EncodeBinary2Rows(f, schemas, sortedRows); err != nil {
			return err
		}
		chunks = append(chunks, hpxChunk{path: f.Name(), idx: idxs})
		batch = batch[:0]
		return nil
	}

	for {
		row, ok, err := next()
		if err != nil {
			return warnings, err
		}
		if !ok {
			break
		}
		batch = append(batch, row)
		if len(batch) >= chunkSize {
			if err := flush(); err != nil {
				return warnings, err
			}
		}
	}
	if err := flush(); err != nil {
		return warnings, err
	}

	return warnings, mergeHpxChunks(chunks, schemas, emit)
}

// mergeHpxChunks performs a k-way merge over chunks, each of which is
// already internally sorted, emitting rows in fully merged HEALPix order.
func mergeHpxChunks(chunks []hpxChunk, schemas []Schema, emit func(Row) error) error {
	type cursor struct {
		rows []Row
		idx  []int64
		pos  int
	}
	cursors := make([]*cursor, 0, len(chunks))
	for _, c := range chunks {
		data, err := os.ReadFile(c.path)
		if err != nil {
			return (&Error{Kind: KindIoFailure, Msg: "read temp chunk failed"}).WithCause(err)
		}
		rows, err := DecodeBinary2Rows(bytes.NewReader(data), schemas)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			continue
		}
		cursors = append(cursors, &cursor{rows: rows, idx: c.idx})
	}

	for {
		best := -1
		for i, cur := range cursors {
			if cur.pos >= len(cur.rows) {
				continue
			}
			if best == -1 || cur.idx[cur.pos] < cursors[best].idx[cursors[best].pos] {
				best = i
			}
		}
		if best == -1 {
			return nil
		}
		cur := cursors[best]
		if err := emit(cur.rows[cur.pos]); err != nil {
			return err
		}
		cur.pos++
	}
}
