// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pdfocr/internal/bootstrap"
	"github.com/pdiddy/pdfocr/internal/history"
	"github.com/pdiddy/pdfocr/internal/layout"
	"github.com/pdiddy/pdfocr/internal/pipeline"
	"github.com/pdiddy/pdfocr/internal/toolchain"
	"github.com/pdiddy/pdfocr/pkg/types"
)

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	ctx := cmd.Context()
	env := a.env

	pdfPath := args[0]
	if _, err := env.fs.Stat(pdfPath); err != nil {
		return fmt.Errorf("PDF not found: %s: %w", pdfPath, err)
	}

	outDir := ""
	if len(args) > 1 {
		outDir = args[1]
	} else {
		home, err := env.homeDir()
		if err != nil {
			return fmt.Errorf("resolving home directory: %w", err)
		}
		outDir = layout.DefaultRoot(home, pdfPath)
	}

	recognizer := toolchain.NewRecognizer(env.exec, a.cfg.OCR, env.stderr)
	inst := &bootstrap.Installer{
		Engine:    recognizer,
		Exec:      env.exec,
		GOOS:      env.goos,
		In:        env.stdin,
		Out:       env.stdout,
		Err:       env.stderr,
		AssumeYes: a.cfg.AssumeYes,
		Log:       a.log,
	}
	if err := inst.Ensure(ctx); err != nil {
		return err
	}

	runner := &pipeline.Runner{
		FS:         env.fs,
		Rasterizer: toolchain.NewRasterizer(env.exec, a.cfg.Rasterizer, env.stderr),
		Recognizer: recognizer,
		Log:        a.log,
		Out:        env.stdout,
	}
	res, err := runner.Run(ctx, pipeline.Options{
		PDFPath: pdfPath,
		Layout:  layout.New(outDir),
		Mode:    a.cfg.Mode(),
	})
	if err != nil {
		return err
	}

	if res.HasFailures() {
		a.log.WithField("failed", res.Failed()).
			WithField("pages", len(res.Pages)).
			Warn("some pages produced no OCR text")
	}
	a.recordRun(cmd, res)

	fmt.Fprintf(env.stdout, "Processing complete. Results saved in directory '%s'.\n", outDir)
	return nil
}

// recordRun stores res in the history database when one is configured.
// History is best-effort and never fails the run.
func (a *app) recordRun(cmd *cobra.Command, res types.RunResult) {
	if a.cfg.HistoryDB == "" {
		return
	}
	s, err := history.Open(a.cfg.HistoryDB)
	if err != nil {
		a.log.WithError(err).Warn("history unavailable")
		return
	}
	defer s.Close()

	id, err := s.Record(cmd.Context(), res)
	if err != nil {
		a.log.WithError(err).Warn("recording run")
		return
	}
	a.log.WithField("run", id).Debug("run recorded")
}
