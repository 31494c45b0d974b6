// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfinfo

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF returns a minimal valid PDF with the given number of blank pages.
func buildPDF(pages int) []byte {
	var objs []string
	kids := make([]string, pages)
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objs = append(objs, "<< /Type /Catalog /Pages 2 0 R >>")
	objs = append(objs, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for range pages {
		objs = append(objs, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objs)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	for _, pages := range []int{1, 3, 12} {
		t.Run(fmt.Sprintf("%d pages", pages), func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/in/doc.pdf", buildPDF(pages), 0o644))

			got, err := PageCount(fs, "/in/doc.pdf")
			require.NoError(t, err)
			assert.Equal(t, pages, got)
		})
	}
}

func TestPageCountErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/garbage.pdf", []byte("not a pdf at all"), 0o644))

	_, err := PageCount(fs, "/in/garbage.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "garbage.pdf")

	_, err = PageCount(fs, "/in/missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.pdf")
}
