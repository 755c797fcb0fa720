// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sink

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/relabs-tech/nmea_simulator/internal/sim"
)

// Writer renders frames as text lines onto an io.Writer.
type Writer struct {
	w         io.Writer
	eol       string
	blankLine bool // blank line after each triplet
	closer    io.Closer
}

// NewWriter writes one sentence per line with a blank line after each
// frame. Close does not close w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, eol: "\n", blankLine: true}
}

// Write emits the whole frame in a single write so a reader tailing the
// destination never sees a partial triplet.
func (s *Writer) Write(f sim.Frame) error {
	var b strings.Builder
	for _, line := range f.Lines() {
		b.WriteString(line)
		b.WriteString(s.eol)
	}
	if s.blankLine {
		b.WriteString(s.eol)
	}
	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("sink write: %w", err)
	}
	return nil
}

func (s *Writer) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenFile opens path for appending, creating it if needed.
func OpenFile(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open output file: %w", err)
	}
	s := NewWriter(f)
	s.closer = f
	return s, nil
}
