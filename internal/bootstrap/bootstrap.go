// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bootstrap makes sure the OCR engine is installed before a run,
// offering to install it through the platform package manager.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/pdfocr/internal/toolchain"
)

// ErrDeclined is returned when the engine is missing and the user refuses
// the installation.
var ErrDeclined = errors.New("installation declined")

// ErrNotInstallable is returned when a missing engine is not the one the
// install plan provides.
var ErrNotInstallable = errors.New("OCR engine not found and cannot be installed")

// consent accepts a single y or j (ja), in either case.
var consent = regexp.MustCompile(`^[YyJj]$`)

// Accepted reports whether answer is an affirmative reply to the prompt.
func Accepted(answer string) bool {
	return consent.MatchString(strings.TrimSpace(answer))
}

// Plan returns the package manager commands that install Tesseract on goos.
func Plan(goos string) [][]string {
	switch goos {
	case "windows":
		return [][]string{{"choco", "install", "tesseract"}}
	case "darwin":
		return [][]string{{"brew", "install", "tesseract"}}
	default:
		return [][]string{
			{"sudo", "apt-get", "update"},
			{"sudo", "apt-get", "install", "-y", "tesseract-ocr"},
		}
	}
}

// Installer checks for the OCR engine and installs it on consent.
type Installer struct {
	Engine    *toolchain.Recognizer
	Exec      toolchain.Executor
	GOOS      string
	In        io.Reader
	Out       io.Writer
	Err       io.Writer
	AssumeYes bool
	Log       logrus.FieldLogger
}

// Ensure returns nil if the engine resolves on PATH or the user agreed to
// install it. Install commands that fail are logged and otherwise ignored; a
// broken install surfaces later as failed OCR. Only the default engine can
// be installed; any other missing binary returns ErrNotInstallable.
func (i *Installer) Ensure(ctx context.Context) error {
	bin := i.Engine.Name()
	if i.Engine.Available() {
		i.Log.WithField("bin", bin).Debug("OCR engine found")
		return nil
	}
	if bin != toolchain.DefaultOCR {
		fmt.Fprintf(i.Out, "%s was not found on PATH; only %s can be installed automatically.\n", bin, toolchain.DefaultOCR)
		return fmt.Errorf("%s: %w", bin, ErrNotInstallable)
	}

	if !i.AssumeYes {
		fmt.Fprintf(i.Out, "%s is not installed. Install it now? (y/n)\n", bin)
		answer, err := readLine(i.In)
		if err != nil {
			return fmt.Errorf("reading answer: %w", err)
		}
		if !Accepted(answer) {
			fmt.Fprintf(i.Out, "%s is required to continue.\n", bin)
			return fmt.Errorf("%s: %w", bin, ErrDeclined)
		}
	}

	for _, argv := range Plan(i.GOOS) {
		i.Log.WithField("command", strings.Join(argv, " ")).Info("installing OCR engine")
		c := toolchain.Command{
			Name:   argv[0],
			Args:   argv[1:],
			Stdin:  i.In,
			Stdout: i.Out,
			Stderr: i.Err,
		}
		if err := i.Exec.Run(ctx, c); err != nil {
			i.Log.WithError(err).WithField("command", argv[0]).Warn("install command failed")
		}
	}
	return nil
}

// readLine reads up to and including the next newline one byte at a time,
// leaving the rest of r for the install commands (sudo may prompt on it).
// EOF ends the line without error.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, buf[0])
		}
		if errors.Is(err, io.EOF) {
			return string(line), nil
		}
		if err != nil {
			return "", err
		}
	}
}
