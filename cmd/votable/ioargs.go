// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cds-astro/votable-go/xlog"
)

// openIn opens path for reading, or returns os.Stdin when path is empty.
func openIn(path string) (io.ReadCloser, error) {
	if path == "" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

// openOut opens path for writing, or returns os.Stdout when path is
// empty.
func openOut(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// loggerFromFlags builds the CLI's slog.Logger from the persistent
// --log-level/--log-format flags.
func loggerFromFlags(cmd *cobra.Command) (*slog.Logger, error) {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")
	h, err := xlog.NewHandlerFromStrings(os.Stderr, level, format)
	if err != nil {
		return nil, err
	}
	return slog.New(h), nil
}
