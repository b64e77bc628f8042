// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	votable "github.com/cds-astro/votable-go"
	"github.com/cds-astro/votable-go/xlog"
)

func newHpxSortCmd() *cobra.Command {
	var inPath, outPath, lon, lat, tmpDir string
	var parallel, chunkSize, depth int
	var fullInMem bool

	cmd := &cobra.Command{
		Use:   "hpxsort",
		Short: "Sort a TABLEDATA VOTable's rows by HEALPix ring-scheme pixel index",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}
			opts := votable.HpxSortOptions{
				Depth:        depth,
				LonField:     lon,
				LatField:     lat,
				FullInMemory: fullInMem,
				ChunkSize:    chunkSize,
				TmpDir:       tmpDir,
			}
			return runHpxSort(inPath, outPath, opts, parallel, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inPath, "in", "", "input file (stdin if absent)")
	flags.StringVar(&outPath, "out", "", "output file (stdout if absent)")
	flags.StringVar(&lon, "lon", "", "longitude FIELD name (auto-detected if absent)")
	flags.StringVar(&lat, "lat", "", "latitude FIELD name (auto-detected if absent)")
	flags.IntVar(&parallel, "parallel", 0, "reserved for future use; hpxsort runs single-threaded")
	flags.BoolVarP(&fullInMem, "full-in-mem", "f", false, "sort entirely in memory instead of via chunked external sort")
	flags.StringVar(&tmpDir, "tmp-dir", "", "temp directory for spilled chunks (external sort only)")
	flags.IntVar(&chunkSize, "chunk-size", 0, "rows per spilled chunk (external sort only)")
	flags.IntVar(&depth, "depth", 8, "HEALPix depth (nside = 2^depth)")

	return cmd
}

func runHpxSort(inPath, outPath string, opts votable.HpxSortOptions, parallel int, logger *slog.Logger) error {
	if inPath != "" && !opts.FullInMemory {
		return runHpxSortStreamed(inPath, outPath, opts, logger)
	}

	in, err := openIn(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	vt, err := votable.ParseVOTable(in)
	if err != nil {
		return err
	}
	table := votable.FirstTable(vt)
	if table == nil {
		return fmt.Errorf("no TABLE found in input")
	}
	if table.Data == nil || table.Data.TableData == nil {
		return fmt.Errorf("hpxsort only supports TABLEDATA input")
	}
	schemas, err := table.Schemas()
	if err != nil {
		return err
	}
	fields := table.Fields()

	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if opts.FullInMemory {
		rows, err := table.Rows(schemas)
		if err != nil {
			return err
		}
		sorted, warnings, err := votable.SortRowsFullInMemory(fields, rows, opts)
		if err != nil {
			return err
		}
		logWarnings(logger, warnings)
		trs := make([]votable.TR, len(sorted))
		for i, row := range sorted {
			trs[i] = votable.RowToTR(row)
		}
		table.Data.TableData = &votable.TableData{Rows: trs}
		return vt.WriteTo(out)
	}

	srcRows, err := table.Rows(schemas)
	if err != nil {
		return err
	}
	i := 0
	next := func() (votable.Row, bool, error) {
		if i >= len(srcRows) {
			return nil, false, nil
		}
		r := srcRows[i]
		i++
		return r, true, nil
	}
	var merged []votable.TR
	emit := func(row votable.Row) error {
		merged = append(merged, votable.RowToTR(row))
		return nil
	}
	warnings, err := votable.SortRowsExternal(fields, schemas, next, emit, opts)
	if err != nil {
		return err
	}
	logWarnings(logger, warnings)
	table.Data.TableData = &votable.TableData{Rows: merged}
	return vt.WriteTo(out)
}

// runHpxSortStreamed drives the external sort from a StreamReader, so
// input rows are decoded one at a time off the memory-mapped file and
// only ever held chunk-at-a-time before being spilled. Stdin input has
// no path to map and takes the materialised path instead.
func runHpxSortStreamed(inPath, outPath string, opts votable.HpxSortOptions, logger *slog.Logger) error {
	sr, err := votable.OpenStream(inPath)
	if err != nil {
		return err
	}
	table := sr.Table()
	if table == nil {
		_, cerr := sr.Close()
		if cerr != nil {
			return cerr
		}
		return fmt.Errorf("no TABLE found in input")
	}
	kind := sr.PayloadKind()
	if kind == "" {
		_, cerr := sr.Close()
		if cerr != nil {
			return cerr
		}
		return fmt.Errorf("no DATA block found in input")
	}
	if kind != "TABLEDATA" {
		_, cerr := sr.Close()
		if cerr != nil {
			return cerr
		}
		return fmt.Errorf("hpxsort only supports TABLEDATA input, got %s", kind)
	}
	schemas := sr.Schemas()
	fields := table.Fields()

	next := func() (votable.Row, bool, error) {
		row, ok := sr.Next()
		return row, ok, nil
	}
	var merged []votable.TR
	emit := func(row votable.Row) error {
		merged = append(merged, votable.RowToTR(row))
		return nil
	}
	warnings, err := votable.SortRowsExternal(fields, schemas, next, emit, opts)
	if err != nil {
		sr.Close()
		return err
	}
	vt, err := sr.Close()
	if err != nil {
		return err
	}
	logWarnings(logger, warnings)
	if table.Data == nil {
		table.Data = &votable.Data{}
	}
	table.Data.TableData = &votable.TableData{Rows: merged}

	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return vt.WriteTo(out)
}

func logWarnings(logger *slog.Logger, warnings []votable.Warning) {
	stringers := make([]fmt.Stringer, len(warnings))
	for i := range warnings {
		stringers[i] = &warnings[i]
	}
	xlog.LogWarnings(logger, stringers)
}
