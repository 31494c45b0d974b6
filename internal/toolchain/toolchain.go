// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package toolchain wraps the external binaries the pipeline shells out to:
// a PDF rasterizer (pdftoppm) and an OCR engine (tesseract).
package toolchain

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

const (
	// DefaultRasterizer is the poppler PDF-to-image tool.
	DefaultRasterizer = "pdftoppm"
	// DefaultOCR is the Tesseract command-line engine.
	DefaultOCR = "tesseract"
)

// Command describes a single external process invocation. Nil streams are
// left unconnected.
type Command struct {
	Name   string
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Executor abstracts process lookup and execution for testing.
type Executor interface {
	LookPath(file string) (string, error)
	Run(ctx context.Context, c Command) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(ctx context.Context, c Command) error {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Stdin = c.Stdin
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr
	return cmd.Run()
}

// NewOSExecutor returns an Executor that runs real processes.
func NewOSExecutor() Executor {
	return &osExecutor{}
}

// Rasterizer turns a PDF into one PNG per page.
type Rasterizer struct {
	bin    string
	exec   Executor
	stderr io.Writer
}

// NewRasterizer returns a Rasterizer for bin. An empty bin selects
// DefaultRasterizer. Tool diagnostics are copied to stderr.
func NewRasterizer(exec Executor, bin string, stderr io.Writer) *Rasterizer {
	if bin == "" {
		bin = DefaultRasterizer
	}
	return &Rasterizer{bin: bin, exec: exec, stderr: stderr}
}

// Rasterize runs `<bin> -png <pdfPath> <prefix>`. The tool writes
// <prefix><n>.png for every page, zero-padding n to the width of the page
// count.
func (r *Rasterizer) Rasterize(ctx context.Context, pdfPath, prefix string) error {
	c := Command{
		Name:   r.bin,
		Args:   []string{"-png", pdfPath, prefix},
		Stderr: r.stderr,
	}
	if err := r.exec.Run(ctx, c); err != nil {
		return fmt.Errorf("running %s on %s: %w", r.bin, pdfPath, err)
	}
	return nil
}

// Recognizer extracts text from a single page image.
type Recognizer struct {
	bin    string
	exec   Executor
	stderr io.Writer
}

// NewRecognizer returns a Recognizer for bin. An empty bin selects DefaultOCR.
func NewRecognizer(exec Executor, bin string, stderr io.Writer) *Recognizer {
	if bin == "" {
		bin = DefaultOCR
	}
	return &Recognizer{bin: bin, exec: exec, stderr: stderr}
}

func (r *Recognizer) Name() string { return r.bin }

// Available reports whether the OCR binary resolves on PATH.
func (r *Recognizer) Available() bool {
	_, err := r.exec.LookPath(r.bin)
	return err == nil
}

// Recognize runs `<bin> <imagePath> <outBase>`. The engine appends ".txt" to
// outBase itself.
func (r *Recognizer) Recognize(ctx context.Context, imagePath, outBase string) error {
	c := Command{
		Name:   r.bin,
		Args:   []string{imagePath, outBase},
		Stderr: r.stderr,
	}
	if err := r.exec.Run(ctx, c); err != nil {
		return fmt.Errorf("running %s on %s: %w", r.bin, imagePath, err)
	}
	return nil
}
