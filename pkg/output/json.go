package output

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/forensilog/pkg/analyzer"
	"github.com/ccollicutt/forensilog/pkg/parser"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// JSONFormatter formats sessions as JSON.
type JSONFormatter struct {
	opts FormatOptions
}

// NewJSONFormatter creates a new JSON formatter with the given options.
func NewJSONFormatter(opts FormatOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

type jsonDocument struct {
	Source     string             `json:"source"`
	ID         uuid.UUID          `json:"id"`
	CapturedAt time.Time          `json:"captured_at"`
	Report     *analyzer.Report   `json:"report"`
	Records    []parser.LogRecord `json:"records,omitempty"`
}

// Format renders the session as JSON.
func (f *JSONFormatter) Format(ctx context.Context, s *session.Session, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if f.opts.Quiet {
		// Quiet mode: just summary
		return encoder.Encode(NewSummary(s))
	}

	doc := jsonDocument{Report: reportOf(s)}
	if s != nil {
		doc.Source = s.Source
		doc.ID = s.ID
		doc.CapturedAt = s.CapturedAt
	}
	if f.opts.Records {
		doc.Records = s.Filter(f.opts.Query)
	}

	return encoder.Encode(doc)
}

var _ Formatter = (*JSONFormatter)(nil)
