// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout names the files and directories of an output tree:
//
//	<root>/Bilder/Seite<n>.png
//	<root>/Text/Seite<n>_text.txt
//	<root>/inhalt.md
package layout

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	imagesDir     = "Bilder"
	textDir       = "Text"
	aggregateFile = "inhalt.md"
	pagePrefix    = "Seite"
	textSuffix    = "_text"
	imageExt      = ".png"
	textExt       = ".txt"
	rootSuffix    = "_TEXT"
)

// Layout resolves paths under a single output root.
type Layout struct {
	Root string
}

// New returns the layout rooted at root.
func New(root string) Layout {
	return Layout{Root: root}
}

// DefaultRoot returns <home>/<base>_TEXT where base is the final element of
// pdfPath, extension included.
func DefaultRoot(home, pdfPath string) string {
	return filepath.Join(home, filepath.Base(pdfPath)+rootSuffix)
}

func (l Layout) ImagesDir() string     { return filepath.Join(l.Root, imagesDir) }
func (l Layout) TextDir() string       { return filepath.Join(l.Root, textDir) }
func (l Layout) AggregatePath() string { return filepath.Join(l.Root, aggregateFile) }

// ImagePrefix is the path prefix handed to the rasterizer.
func (l Layout) ImagePrefix() string {
	return filepath.Join(l.ImagesDir(), pagePrefix)
}

// TextBase is the output base handed to the OCR engine for page n; the engine
// adds the .txt extension.
func (l Layout) TextBase(n string) string {
	return filepath.Join(l.TextDir(), pagePrefix+n+textSuffix)
}

// TextPath is the text file the OCR engine writes for page n.
func (l Layout) TextPath(n string) string {
	return l.TextBase(n) + textExt
}

// PageNumber strips the page prefix and image extension from an image file
// name, keeping any zero padding.
func PageNumber(imageName string) string {
	base := strings.TrimSuffix(filepath.Base(imageName), imageExt)
	return strings.TrimPrefix(base, pagePrefix)
}

// Scaffold creates the image and text directories, including missing parents.
// It succeeds if they already exist.
func (l Layout) Scaffold(fs afero.Fs) error {
	for _, dir := range []string{l.ImagesDir(), l.TextDir()} {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Images returns the full paths of the PNG files in the image directory in
// ascending lexicographic order.
func (l Layout) Images(fs afero.Fs) ([]string, error) {
	entries, err := afero.ReadDir(fs, l.ImagesDir())
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", l.ImagesDir(), err)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != imageExt {
			continue
		}
		images = append(images, filepath.Join(l.ImagesDir(), e.Name()))
	}
	return images, nil
}
