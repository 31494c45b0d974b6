//go:build mage

// Package main contains Mage build targets for pdfocr developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "pdfocr"
	cmdPkg  = "./cmd/pdfocr"
)

// externalTools are the binaries pdfocr shells out to at run time.
var externalTools = []string{"pdftoppm", "tesseract"}

// Build compiles the CLI binary into bin/, stamping the version from git.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil {
		version = "dev"
	}
	out := filepath.Join(binDir, binName)
	ldflags := "-X main.version=" + strings.TrimSpace(version)
	if err := sh.RunV("go", "build", "-ldflags", ldflags, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests. The history package needs cgo for sqlite.
func Test() error {
	return sh.RunWithV(map[string]string{"CGO_ENABLED": "1"}, "go", "test", "./...")
}

// Check vets the module and then runs the tests.
func Check() error {
	if err := sh.RunV("go", "vet", "./..."); err != nil {
		return err
	}
	mg.Deps(Test)
	return nil
}

// Doctor reports whether the external rasterizer and OCR engine are on PATH.
func Doctor() error {
	missing := 0
	for _, tool := range externalTools {
		if _, err := sh.Output("which", tool); err != nil {
			fmt.Printf("  missing: %s\n", tool)
			missing++
			continue
		}
		fmt.Printf("  found:   %s\n", tool)
	}
	if missing > 0 {
		return fmt.Errorf("%d external tool(s) missing", missing)
	}
	return nil
}

// Clean removes build output.
func Clean() error {
	return sh.Rm(binDir)
}
