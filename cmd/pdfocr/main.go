// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the pdfocr CLI, which rasterizes a
// PDF, OCRs every page, and collects the text into one Markdown file.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfocr/internal/bootstrap"
	"github.com/pdiddy/pdfocr/internal/toolchain"
	"github.com/pdiddy/pdfocr/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// environment carries the process-level dependencies so tests can replace
// the filesystem, the tools, and the terminal.
type environment struct {
	fs      afero.Fs
	exec    toolchain.Executor
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	goos    string
	homeDir func() (string, error)

	// usageShown is set whenever help text is printed; the process then
	// exits with status 1.
	usageShown bool
}

func defaultEnvironment() *environment {
	return &environment{
		fs:      afero.NewOsFs(),
		exec:    toolchain.NewOSExecutor(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		goos:    runtime.GOOS,
		homeDir: os.UserHomeDir,
	}
}

// app holds the state shared by the root command and its subcommands.
type app struct {
	env *environment
	v   *viper.Viper
	cfg types.Config
	log *logrus.Logger
}

func newRootCmd(env *environment) *cobra.Command {
	a := &app{env: env, v: viper.New()}

	root := &cobra.Command{
		Use:   "pdfocr <pdf_path> [<output_dir>]",
		Short: "Convert a PDF into page images, OCR text, and one Markdown file",
		Long: `pdfocr converts a PDF document into images and text files.

Every page is rasterized into <output_dir>/Bilder, recognized with the OCR
engine into <output_dir>/Text, and appended as a "## Page <n>" section to
<output_dir>/inhalt.md. The output directory defaults to ~/<pdf_name>_TEXT.`,
		Example:           "  pdfocr input.pdf output_dir",
		Args:              cobra.MaximumNArgs(2),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.preRun,
		RunE:              a.runConvert,
	}

	defaultHelp := root.HelpFunc()
	root.SetHelpFunc(func(c *cobra.Command, args []string) {
		env.usageShown = true
		defaultHelp(c, args)
	})

	root.PersistentFlags().String("config", "", "config file (default: ./pdfocr.yaml or ~/.config/pdfocr/pdfocr.yaml)")
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")
	root.PersistentFlags().String("history-db", "", "sqlite database recording each run (disabled when empty)")
	root.Flags().Bool("truncate", false, "empty inhalt.md before writing instead of appending to it")
	root.Flags().BoolP("yes", "y", false, "install a missing OCR engine without asking")
	root.Flags().String("rasterizer", toolchain.DefaultRasterizer, "PDF-to-image binary")
	root.Flags().String("ocr", toolchain.DefaultOCR, "OCR engine binary")

	bindFlags(a.v, root)

	root.AddCommand(newVersionCmd())
	root.AddCommand(newHistoryCmd(a))
	return root
}

// execute runs the CLI with args and returns the process exit status.
func execute(ctx context.Context, env *environment, args []string) int {
	root := newRootCmd(env)
	root.SetArgs(args)
	root.SetIn(env.stdin)
	root.SetOut(env.stdout)
	root.SetErr(env.stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, bootstrap.ErrDeclined) {
			fmt.Fprintln(env.stderr, "Error:", err)
		}
		return 1
	}
	if env.usageShown {
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, defaultEnvironment(), os.Args[1:])
	stop()
	os.Exit(code)
}
