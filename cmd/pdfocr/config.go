// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdfocr/internal/toolchain"
)

// flagKeys maps command-line flags to their viper keys.
var flagKeys = map[string]string{
	"verbose":    "verbose",
	"history-db": "history_db",
	"truncate":   "truncate",
	"yes":        "assume_yes",
	"rasterizer": "rasterizer",
	"ocr":        "ocr",
}

func bindFlags(v *viper.Viper, root *cobra.Command) {
	v.SetDefault("rasterizer", toolchain.DefaultRasterizer)
	v.SetDefault("ocr", toolchain.DefaultOCR)
	v.SetDefault("truncate", false)
	v.SetDefault("assume_yes", false)
	v.SetDefault("verbose", false)
	v.SetDefault("history_db", "")

	for name, key := range flagKeys {
		f := root.PersistentFlags().Lookup(name)
		if f == nil {
			f = root.Flags().Lookup(name)
		}
		_ = v.BindPFlag(key, f)
	}
}

// preRun loads the config file and environment, then builds the logger.
func (a *app) preRun(cmd *cobra.Command, _ []string) error {
	v := a.v
	cfgFile, _ := cmd.Flags().GetString("config")
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pdfocr")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if home, err := a.env.homeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "pdfocr"))
		}
	}

	v.SetEnvPrefix("PDFOCR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(a.env.stderr, "Using config file:", v.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	if err := v.Unmarshal(&a.cfg); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}

	a.log = newLogger(a.env.stderr, a.cfg.Verbose)
	return nil
}

func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	return l
}
