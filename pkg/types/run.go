// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// PageStatus records what happened to a single page during a run.
type PageStatus string

const (
	PageOK          PageStatus = "ok"
	PageOCRFailed   PageStatus = "ocr_failed"
	PageTextMissing PageStatus = "text_missing"
)

// PageResult is the outcome of OCR and aggregation for one page image.
type PageResult struct {
	// Number is the page-number suffix taken verbatim from the image filename
	// (e.g. "07" for Seite07.png).
	Number string `json:"number" yaml:"number"`

	// ImagePath is the rasterized page image.
	ImagePath string `json:"image_path" yaml:"image_path"`

	// TextPath is the text file the OCR engine was asked to produce.
	TextPath string `json:"text_path" yaml:"text_path"`

	// Status is ok unless the OCR engine failed or left no text file.
	Status PageStatus `json:"status" yaml:"status"`

	// Bytes is the number of text bytes appended to the aggregate file.
	Bytes int `json:"bytes" yaml:"bytes"`
}

// RunResult describes one invocation of the pipeline.
type RunResult struct {
	// ID is assigned by the history store; zero when the run was not recorded.
	ID int64 `json:"id,omitempty" yaml:"id,omitempty"`

	PDFPath   string        `json:"pdf_path" yaml:"pdf_path"`
	OutputDir string        `json:"output_dir" yaml:"output_dir"`
	Mode      AggregateMode `json:"mode" yaml:"mode"`

	// ExpectedPages is the page count read from the PDF, or 0 if unknown.
	ExpectedPages int `json:"expected_pages" yaml:"expected_pages"`

	// RasterizeFailed reports a non-zero exit from the rasterizer.
	RasterizeFailed bool `json:"rasterize_failed" yaml:"rasterize_failed"`

	Pages []PageResult `json:"pages" yaml:"pages"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Failed returns the number of pages whose status is not PageOK.
func (r RunResult) Failed() int {
	n := 0
	for _, p := range r.Pages {
		if p.Status != PageOK {
			n++
		}
	}
	return n
}

// HasFailures reports whether any page or the rasterizer failed.
func (r RunResult) HasFailures() bool {
	return r.RasterizeFailed || r.Failed() > 0
}
