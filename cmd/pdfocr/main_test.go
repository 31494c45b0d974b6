// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfocr/internal/toolchain"
)

// fakeExec stands in for pdftoppm, tesseract, and the package managers,
// writing their outputs into an in-memory filesystem.
type fakeExec struct {
	fs    afero.Fs
	bins  map[string]bool
	pages int
	calls []string
}

func (f *fakeExec) LookPath(file string) (string, error) {
	if f.bins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("executable file not found in $PATH")
}

func (f *fakeExec) Run(_ context.Context, c toolchain.Command) error {
	f.calls = append(f.calls, strings.Join(append([]string{c.Name}, c.Args...), " "))
	switch c.Name {
	case "pdftoppm":
		prefix := c.Args[2]
		width := len(fmt.Sprint(f.pages))
		for i := 1; i <= f.pages; i++ {
			name := fmt.Sprintf("%s%0*d.png", prefix, width, i)
			if err := afero.WriteFile(f.fs, name, []byte("png"), 0o644); err != nil {
				return err
			}
		}
	case "tesseract":
		img, outBase := c.Args[0], c.Args[1]
		return afero.WriteFile(f.fs, outBase+".txt", []byte("ocr of "+filepath.Base(img)+"\n"), 0o644)
	}
	return nil
}

func (f *fakeExec) ran(name string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, name+" ") {
			return true
		}
	}
	return false
}

type harness struct {
	env    *environment
	fs     afero.Fs
	exec   *fakeExec
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T, pages int, stdin string) *harness {
	t.Helper()
	t.Setenv("PDFOCR_HISTORY_DB", "")
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/in/doc.pdf", []byte("%PDF-1.4 fake"), 0o644))

	h := &harness{
		fs:     fs,
		exec:   &fakeExec{fs: fs, bins: map[string]bool{"tesseract": true, "pdftoppm": true}, pages: pages},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	home := t.TempDir()
	h.env = &environment{
		fs:      fs,
		exec:    h.exec,
		stdin:   strings.NewReader(stdin),
		stdout:  h.stdout,
		stderr:  h.stderr,
		goos:    "linux",
		homeDir: func() (string, error) { return home, nil },
	}
	return h
}

func (h *harness) run(args ...string) int {
	h.env.usageShown = false
	return execute(context.Background(), h.env, args)
}

func (h *harness) read(t *testing.T, path string) string {
	t.Helper()
	data, err := afero.ReadFile(h.fs, path)
	require.NoError(t, err)
	return string(data)
}

var headingRe = regexp.MustCompile(`(?m)^## Page (\S+)$`)

func TestUsage(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", []string{}},
		{"short help", []string{"-h"}},
		{"long help", []string{"--help"}},
		{"help with further arguments", []string{"-h", "/in/doc.pdf", "/out"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, 1, "")
			code := h.run(tt.args...)

			assert.Equal(t, 1, code)
			assert.Contains(t, h.stdout.String(), "pdfocr <pdf_path> [<output_dir>]")
			assert.Empty(t, h.exec.calls)
			exists, err := afero.Exists(h.fs, "/out")
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestTooManyArguments(t *testing.T) {
	h := newHarness(t, 1, "")
	assert.Equal(t, 1, h.run("/in/doc.pdf", "/out", "extra"))
	assert.Empty(t, h.exec.calls)
}

func TestMissingPDF(t *testing.T) {
	h := newHarness(t, 1, "")
	assert.Equal(t, 1, h.run("/in/nope.pdf", "/out"))
	assert.Contains(t, h.stderr.String(), "/in/nope.pdf")
	assert.Empty(t, h.exec.calls)
}

func TestDeclinedInstall(t *testing.T) {
	h := newHarness(t, 1, "n\n")
	h.exec.bins["tesseract"] = false

	code := h.run("/in/doc.pdf", "/out")

	assert.Equal(t, 1, code)
	assert.Contains(t, h.stdout.String(), "Install it now? (y/n)")
	assert.Contains(t, h.stdout.String(), "tesseract is required to continue.")
	assert.Empty(t, h.exec.calls)
	exists, err := afero.Exists(h.fs, "/out")
	require.NoError(t, err)
	assert.False(t, exists, "no output directory should be created")
}

func TestMissingCustomEngine(t *testing.T) {
	h := newHarness(t, 1, "y\n")

	assert.Equal(t, 1, h.run("--yes", "--ocr", "tess5", "/in/doc.pdf", "/out"))
	assert.Contains(t, h.stdout.String(), "only tesseract can be installed automatically")
	assert.Empty(t, h.exec.calls)
	exists, err := afero.Exists(h.fs, "/out")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestAcceptedInstallContinues(t *testing.T) {
	h := newHarness(t, 1, "J\n")
	h.exec.bins["tesseract"] = false

	require.Equal(t, 0, h.run("/in/doc.pdf", "/out"))
	assert.True(t, h.exec.ran("sudo"))
	assert.Equal(t, "sudo apt-get update", h.exec.calls[0])
	assert.Equal(t, "sudo apt-get install -y tesseract-ocr", h.exec.calls[1])
	assert.True(t, h.exec.ran("tesseract"))
}

func TestSinglePageRun(t *testing.T) {
	h := newHarness(t, 1, "")
	require.Equal(t, 0, h.run("/in/doc.pdf", "/out"))

	images, err := afero.ReadDir(h.fs, "/out/Bilder")
	require.NoError(t, err)
	texts, err := afero.ReadDir(h.fs, "/out/Text")
	require.NoError(t, err)
	assert.Len(t, images, 1)
	assert.Len(t, texts, 1)
	assert.Equal(t, "Seite1_text.txt", texts[0].Name())

	assert.Equal(t, "## Page 1\nocr of Seite1.png\n\n", h.read(t, "/out/inhalt.md"))
	assert.Contains(t, h.stdout.String(), "Processing complete. Results saved in directory '/out'.")
}

func TestMultiPageRunAndRerun(t *testing.T) {
	h := newHarness(t, 11, "")
	require.Equal(t, 0, h.run("/in/doc.pdf", "/out"))

	headings := headingRe.FindAllStringSubmatch(h.read(t, "/out/inhalt.md"), -1)
	require.Len(t, headings, 11)
	for i, m := range headings {
		assert.Equal(t, fmt.Sprintf("%02d", i+1), m[1])
	}

	require.Equal(t, 0, h.run("/in/doc.pdf", "/out"))
	assert.Len(t, headingRe.FindAllString(h.read(t, "/out/inhalt.md"), -1), 22)

	require.Equal(t, 0, h.run("--truncate", "/in/doc.pdf", "/out"))
	assert.Len(t, headingRe.FindAllString(h.read(t, "/out/inhalt.md"), -1), 11)
}

func TestDefaultOutputDir(t *testing.T) {
	h := newHarness(t, 1, "")
	require.Equal(t, 0, h.run("/in/doc.pdf"))

	home, _ := h.env.homeDir()
	want := filepath.Join(home, "doc.pdf_TEXT")
	exists, err := afero.Exists(h.fs, filepath.Join(want, "inhalt.md"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Contains(t, h.stdout.String(), want)
}

func TestCustomBinariesFromFlags(t *testing.T) {
	h := newHarness(t, 1, "")
	h.exec.bins["tess5"] = true
	require.Equal(t, 0, h.run("--rasterizer", "pdftoppm", "--ocr", "tess5", "/in/doc.pdf", "/out"))
	assert.True(t, h.exec.ran("tess5"))
	assert.False(t, h.exec.ran("tesseract"))
}

func TestHistoryRoundTrip(t *testing.T) {
	h := newHarness(t, 2, "")
	db := filepath.Join(t.TempDir(), "history.db")

	require.Equal(t, 0, h.run("--history-db", db, "/in/doc.pdf", "/out"))

	h.stdout.Reset()
	require.Equal(t, 0, h.run("history", "--history-db", db, "--format", "json"))
	out := h.stdout.String()
	assert.Contains(t, out, `"output_dir": "/out"`)
	assert.Contains(t, out, `"number": "2"`)
}

func TestHistoryRequiresDatabase(t *testing.T) {
	h := newHarness(t, 1, "")
	assert.Equal(t, 1, h.run("history"))
	assert.Contains(t, h.stderr.String(), "no history database configured")
}

func TestVersion(t *testing.T) {
	h := newHarness(t, 1, "")
	require.Equal(t, 0, h.run("version"))
	assert.Equal(t, "pdfocr dev\n", h.stdout.String())
}
