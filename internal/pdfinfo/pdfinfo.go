// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfinfo reads document metadata from a PDF without rendering it.
package pdfinfo

import (
	"fmt"

	"github.com/ledongthuc/pdf"
	"github.com/spf13/afero"
)

// PageCount returns the number of pages declared in the PDF at path.
func PageCount(fs afero.Fs, path string) (n int, err error) {
	f, err := fs.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", path, err)
	}

	// The reader panics on some malformed trailers.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	r, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return 0, fmt.Errorf("parsing PDF %s: %w", path, err)
	}
	return r.NumPage(), nil
}
