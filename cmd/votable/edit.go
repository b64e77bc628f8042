// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	votable "github.com/cds-astro/votable-go"
	"github.com/cds-astro/votable-go/xlog"
)

func newEditCmd() *cobra.Command {
	var inPath, outPath string
	var rules []string
	var streaming bool

	cmd := &cobra.Command{
		Use:   "edit",
		Short: `Apply "TAG CONDITION ACTION ARGS" tree edits to a VOTable document`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFromFlags(cmd)
			if err != nil {
				return err
			}
			return runEdit(inPath, outPath, rules, streaming, logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&inPath, "in", "", "input file (stdin if absent)")
	flags.StringVar(&outPath, "out", "", "output file (stdout if absent)")
	flags.StringArrayVarP(&rules, "edit", "e", nil, `edit rule "TAG CONDITION ACTION ARGS", may be repeated`)
	flags.BoolVar(&streaming, "streaming", false, "carry DATA blocks through byte-for-byte instead of re-encoding them")

	return cmd
}

func runEdit(inPath, outPath string, ruleTexts []string, streaming bool, logger *slog.Logger) error {
	ed, err := votable.NewEditor(ruleTexts)
	if err != nil {
		return err
	}

	in, err := openIn(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOut(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var warnings []votable.Warning
	if streaming {
		input, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		warnings, err = ed.ApplyStreaming(input, out)
		if err != nil {
			return err
		}
	} else {
		vt, err := votable.ParseVOTable(in)
		if err != nil {
			return err
		}
		warnings, err = ed.Apply(vt)
		if err != nil {
			return err
		}
		if err := vt.WriteTo(out); err != nil {
			return err
		}
	}

	stringers := make([]fmt.Stringer, len(warnings))
	for i := range warnings {
		stringers[i] = &warnings[i]
	}
	xlog.LogWarnings(logger, stringers)
	return nil
}
