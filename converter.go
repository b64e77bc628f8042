// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package votable

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"
)

// Encoding enumerates the three wire payload encodings a Table's DATA
// block may carry, plus CSV as an output-only target.
type Encoding int

// Encoding variants.
const (
	EncodingTableData Encoding = iota
	EncodingBinary
	EncodingBinary2
	EncodingCSV
)

// ConvertOptions configures Convert.
type ConvertOptions struct {
	// Parallelism is the worker pool size. 0 or 1 runs sequentially; >1
	// renders chunks on a worker pool. Both modes write rows in their
	// original order.
	Parallelism int
	// ChunkSize is the number of rows per chunk in parallel mode.
	// Ignored in sequential mode. Defaults to 256 if <= 0.
	ChunkSize int
	// CSVSeparator is the field separator for EncodingCSV output.
	// Defaults to ',' if 0.
	CSVSeparator rune
}

func (o ConvertOptions) csvSep() rune {
	if o.CSVSeparator == 0 {
		return ','
	}
	return o.CSVSeparator
}

// Convert reads every already-decoded row (e.g. via
// DecodeBinaryRows/RowsFromTableData), retargets it at to, and writes the
// result to w. It covers every TD/BIN/BIN2 combination, including
// identity, plus every *->CSV variant; CSV is output-only, so
// `to == EncodingCSV` is the only encoding that does not round-trip.
func Convert(w io.Writer, fields []*Field, schemas []Schema, rows []Row, to Encoding, opts ConvertOptions) error {
	if opts.Parallelism > 1 {
		return convertParallel(w, fields, schemas, rows, to, opts)
	}
	return convertSequential(w, fields, schemas, rows, to, opts.csvSep())
}

// convertSequential reads, transforms, and writes rows in their original
// order. Every row is transformed independently, so "transform" here is an
// identity reshape: each target encoding's writer already knows how to
// render a Row, the row values themselves never change shape between
// encodings (only how they're framed on the wire does).
func convertSequential(w io.Writer, fields []*Field, schemas []Schema, rows []Row, to Encoding, csvSep rune) error {
	switch to {
	case EncodingTableData:
		td := &TableData{Rows: make([]TR, len(rows))}
		for i, row := range rows {
			td.Rows[i] = RowToTR(row)
		}
		xw := newXMLWriter(w)
		td.writeTo(xw)
		return xw.Err()
	case EncodingBinary:
		return EncodeBinaryRows(w, schemas, rows)
	case EncodingBinary2:
		return EncodeBinary2Rows(w, schemas, rows)
	case EncodingCSV:
		return WriteCSV(w, fields, rows, csvSep)
	default:
		return &Error{Kind: KindCustom, Msg: "unknown target encoding"}
	}
}

// convertParallel runs a three-stage pipeline: a producer slices rows into
// chunks, a fixed worker pool renders each chunk's bytes concurrently, and
// a single writer goroutine drains the workers' output in chunk order.
// Chunks can finish rendering out of order, so completions are held in a
// small pending buffer keyed by chunk index and only written once every
// earlier chunk has already been flushed — the output byte stream is
// therefore identical to the sequential path, just produced with workers
// rendering ahead of the writer. errgroup.Group ties every stage to one
// cancellation: the first worker error cancels the shared context, which
// unblocks every other stage's channel send/receive.
func convertParallel(w io.Writer, fields []*Field, schemas []Schema, rows []Row, to Encoding, opts ConvertOptions) error {
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 256
	}

	type chunkJob struct {
		index int
		rows  []Row
	}
	type chunkResult struct {
		index int
		data  []byte
	}

	var chunks []chunkJob
	for start := 0; start < len(rows); start += chunkSize {
		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunks = append(chunks, chunkJob{index: len(chunks), rows: rows[start:end]})
	}
	if len(chunks) == 0 {
		return nil
	}

	if to == EncodingCSV {
		if err := WriteCSVHeader(w, fields, opts.csvSep()); err != nil {
			return err
		}
	}

	jobCh := make(chan chunkJob, 1)
	resultCh := make(chan chunkResult, 1)

	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(jobCh)
		for _, c := range chunks {
			select {
			case jobCh <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	workerCount := opts.Parallelism
	if workerCount > len(chunks) {
		workerCount = len(chunks)
	}
	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			for {
				select {
				case job, ok := <-jobCh:
					if !ok {
						return nil
					}
					data, err := renderChunk(fields, schemas, job.rows, to, opts.csvSep())
					if err != nil {
						return err
					}
					select {
					case resultCh <- chunkResult{index: job.index, data: data}:
					case <-ctx.Done():
						return ctx.Err()
					}
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		})
	}

	g.Go(func() error {
		pending := make(map[int][]byte)
		next := 0
		remaining := len(chunks)
		for remaining > 0 {
			select {
			case res := <-resultCh:
				pending[res.index] = res.data
				for {
					data, ok := pending[next]
					if !ok {
						break
					}
					if _, err := w.Write(data); err != nil {
						return ioErr(err)
					}
					delete(pending, next)
					next++
					remaining--
				}
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

func renderChunk(fields []*Field, schemas []Schema, rows []Row, to Encoding, csvSep rune) ([]byte, error) {
	buf := &byteSink{}
	if to == EncodingCSV {
		if err := WriteCSVRows(buf, rows, csvSep); err != nil {
			return nil, err
		}
		return buf.b, nil
	}
	if err := convertSequential(buf, fields, schemas, rows, to, csvSep); err != nil {
		return nil, err
	}
	return buf.b, nil
}

// byteSink is a minimal io.Writer sink, used instead of bytes.Buffer only
// to keep renderChunk's allocation shape obvious at a glance.
type byteSink struct{ b []byte }

func (s *byteSink) Write(p []byte) (int, error) {
	s.b = append(s.b, p...)
	return len(p), nil
}

// BinaryToBinary2 re-frames rows already decoded from a BINARY payload for
// BINARY2 output, deriving each row's null bitmap from the schema's own
// null detection (NaN for floats, the declared sentinel for integers, '?'
// for booleans) rather than requiring the caller to track it. Rows decoded
// via DecodeBinaryRows already carry ValueNull where the source data
// matched one of those null representations, so this is the identity
// function over Row — EncodeBinary2Rows does the actual bitmap derivation.
func BinaryToBinary2(w io.Writer, schemas []Schema, rows []Row) error {
	return EncodeBinary2Rows(w, schemas, rows)
}

// Binary2ToBinary strips BINARY2's null bitmap: a row decoded via
// DecodeBinary2Rows already carries ValueNull for any bit that was set,
// and EncodeBinaryRows's Schema.Serialize already renders ValueNull using
// the schema's null representation (sentinel, NaN, or ASCII-NUL).
func Binary2ToBinary(w io.Writer, schemas []Schema, rows []Row) error {
	return EncodeBinaryRows(w, schemas, rows)
}
