// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate writes the cumulative Markdown document, one
// "## Page <n>" section per page.
package aggregate

import (
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/pdiddy/pdfocr/pkg/types"
)

// Writer appends page sections to the aggregate file.
type Writer struct {
	f    afero.File
	path string
}

// Open opens the aggregate file at path, creating it if needed. In
// AggregateTruncate mode existing content is discarded; otherwise new
// sections follow whatever a previous run left behind.
func Open(fs afero.Fs, path string, mode types.AggregateMode) (*Writer, error) {
	// O_APPEND and O_TRUNC are never combined: non-OS filesystems seek to
	// the old end before truncating.
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if mode == types.AggregateTruncate {
		flags = os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	}
	f, err := fs.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &Writer{f: f, path: path}, nil
}

// Section renders a page heading, the page text verbatim, and a blank line.
func Section(page string, text []byte) []byte {
	b := make([]byte, 0, len(text)+len(page)+16)
	b = fmt.Appendf(b, "## Page %s\n", page)
	b = append(b, text...)
	b = append(b, '\n')
	return b
}

// AppendPage writes the section for page.
func (w *Writer) AppendPage(page string, text []byte) error {
	if _, err := w.f.Write(Section(page, text)); err != nil {
		return fmt.Errorf("appending page %s to %s: %w", page, w.path, err)
	}
	return nil
}

// Close flushes and closes the aggregate file.
func (w *Writer) Close() error {
	return w.f.Close()
}
