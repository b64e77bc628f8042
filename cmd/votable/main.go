// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Command votable reads, converts, edits, and HEALPix-sorts VOTable
// documents from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "votable",
		Short:         "Read, convert, edit, and HEALPix-sort VOTable documents",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "logfmt", "log format: logfmt, json")

	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newHpxSortCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "votable: %v\n", err)
		os.Exit(1)
	}
}
