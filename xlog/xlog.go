// Copyright 2024 The votable-go Authors. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package xlog builds the [slog.Handler] the votable CLI logs through,
// mapping the user-facing --log-level/--log-format flags onto slog's
// own level and handler types.
package xlog

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Format is the log output encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")
)

// NewHandlerFromStrings parses level and format flags and builds a handler.
func NewHandlerFromStrings(w io.Writer, level, format string) (slog.Handler, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	fmtv, err := ParseFormat(format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	return NewHandler(w, lvl, fmtv), nil
}

// NewHandler builds a [slog.Handler] for the given level and format.
// Warnings produced while parsing VOTable documents (a malformed Datatype
// default, a truncated STREAM, a coordinate parse failure during HEALPix
// indexing) are logged at slog.LevelWarn through this handler rather than
// aborting the operation that produced them.
func NewHandler(w io.Writer, level slog.Level, format Format) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	switch format {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

// ParseLevel parses a case-insensitive level name.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return slog.LevelInfo, nil
	case "error":
		return slog.LevelError, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "debug":
		return slog.LevelDebug, nil
	}
	return 0, ErrUnknownLogLevel
}

// ParseFormat parses a case-insensitive format name.
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatLogfmt, "":
		return FormatLogfmt, nil
	}
	return "", ErrUnknownLogFormat
}

// LogWarnings emits each warning to logger at WARN level. Accepting
// fmt.Stringer rather than the root package's concrete Warning type keeps
// this package free of a dependency on votable.
func LogWarnings(logger *slog.Logger, warnings []fmt.Stringer) {
	for _, w := range warnings {
		logger.Warn(w.String())
	}
}
