package types

// AggregateMode controls how the aggregate Markdown file is opened at the
// start of a run.
type AggregateMode string

const (
	// AggregateAppend keeps existing content; reruns add duplicate sections.
	AggregateAppend AggregateMode = "append"
	// AggregateTruncate empties the aggregate file before the first page.
	AggregateTruncate AggregateMode = "truncate"
)

// Config holds the settings for a conversion run, resolved from flags,
// PDFOCR_* environment variables, and the optional config file.
type Config struct {
	// Rasterizer is the PDF-to-image binary (default "pdftoppm").
	Rasterizer string `json:"rasterizer" yaml:"rasterizer" mapstructure:"rasterizer"`

	// OCR is the OCR engine binary (default "tesseract").
	OCR string `json:"ocr" yaml:"ocr" mapstructure:"ocr"`

	// Truncate selects AggregateTruncate instead of the legacy append mode.
	Truncate bool `json:"truncate" yaml:"truncate" mapstructure:"truncate"`

	// AssumeYes answers the install prompt affirmatively.
	AssumeYes bool `json:"assume_yes" yaml:"assume_yes" mapstructure:"assume_yes"`

	// Verbose enables debug logging.
	Verbose bool `json:"verbose" yaml:"verbose" mapstructure:"verbose"`

	// HistoryDB is the sqlite database that records runs. Empty disables it.
	HistoryDB string `json:"history_db,omitempty" yaml:"history_db,omitempty" mapstructure:"history_db"`
}

// Mode returns the aggregate mode selected by the config.
func (c Config) Mode() AggregateMode {
	if c.Truncate {
		return AggregateTruncate
	}
	return AggregateAppend
}
