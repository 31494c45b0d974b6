// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the PDF -> page images -> page text -> Markdown flow
// sequentially against an output layout.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/pdiddy/pdfocr/internal/aggregate"
	"github.com/pdiddy/pdfocr/internal/layout"
	"github.com/pdiddy/pdfocr/internal/pdfinfo"
	"github.com/pdiddy/pdfocr/pkg/types"
)

// Rasterizer turns a PDF into page images named <prefix><n>.png.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath, prefix string) error
}

// Recognizer writes the text of one image to <outBase>.txt.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath, outBase string) error
}

// Runner wires the filesystem and external tools for a run.
type Runner struct {
	FS         afero.Fs
	Rasterizer Rasterizer
	Recognizer Recognizer
	Log        logrus.FieldLogger
	// Out receives one status line per page.
	Out io.Writer
}

// Options selects the input, the output tree, and the aggregate mode.
type Options struct {
	PDFPath string
	Layout  layout.Layout
	Mode    types.AggregateMode
}

// Run scaffolds the output tree, rasterizes the PDF, and OCRs each page image
// in ascending filename order, appending its text to the aggregate file.
// Tool failures are recorded in the result and never stop the run; only
// filesystem errors on the output tree and cancellation return an error.
func (r *Runner) Run(ctx context.Context, opts Options) (res types.RunResult, err error) {
	res = types.RunResult{
		PDFPath:   opts.PDFPath,
		OutputDir: opts.Layout.Root,
		Mode:      opts.Mode,
		StartedAt: time.Now().UTC(),
	}
	defer func() { res.FinishedAt = time.Now().UTC() }()

	l := opts.Layout
	if err := l.Scaffold(r.FS); err != nil {
		return res, err
	}

	if n, err := pdfinfo.PageCount(r.FS, opts.PDFPath); err != nil {
		r.Log.WithError(err).Debug("page count unavailable")
	} else {
		res.ExpectedPages = n
		r.Log.WithField("pages", n).Debug("page count")
	}

	if err := r.Rasterizer.Rasterize(ctx, opts.PDFPath, l.ImagePrefix()); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.RasterizeFailed = true
		r.Log.WithError(err).Warn("rasterizer failed")
	}

	images, err := l.Images(r.FS)
	if err != nil {
		return res, err
	}
	if res.ExpectedPages > 0 && len(images) != res.ExpectedPages {
		r.Log.WithFields(logrus.Fields{
			"expected": res.ExpectedPages,
			"images":   len(images),
		}).Warn("image count does not match page count")
	}

	w, err := aggregate.Open(r.FS, l.AggregatePath(), opts.Mode)
	if err != nil {
		return res, err
	}
	defer w.Close()

	for _, img := range images {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		page, err := r.processPage(ctx, l, w, img)
		if err != nil {
			return res, err
		}
		res.Pages = append(res.Pages, page)
		fmt.Fprintf(r.Out, "page %s: %s\n", page.Number, page.Status)
	}

	if err := w.Close(); err != nil {
		return res, fmt.Errorf("closing %s: %w", l.AggregatePath(), err)
	}
	return res, nil
}

func (r *Runner) processPage(ctx context.Context, l layout.Layout, w *aggregate.Writer, img string) (types.PageResult, error) {
	n := layout.PageNumber(img)
	page := types.PageResult{
		Number:    n,
		ImagePath: img,
		TextPath:  l.TextPath(n),
		Status:    types.PageOK,
	}
	log := r.Log.WithField("page", n)

	if err := r.Recognizer.Recognize(ctx, img, l.TextBase(n)); err != nil {
		if ctx.Err() != nil {
			return page, ctx.Err()
		}
		page.Status = types.PageOCRFailed
		log.WithError(err).Warn("OCR failed")
	}

	text, err := afero.ReadFile(r.FS, page.TextPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return page, fmt.Errorf("reading %s: %w", page.TextPath, err)
		}
		if page.Status == types.PageOK {
			page.Status = types.PageTextMissing
		}
		log.Warn("no text file, appending empty section")
	}

	if err := w.AppendPage(n, text); err != nil {
		return page, err
	}
	page.Bytes = len(text)
	return page, nil
}
