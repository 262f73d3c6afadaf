package output

import (
	"context"
	"io"

	"github.com/ccollicutt/forensilog/pkg/session"
)

const (
	// DefaultTopN is the number of addresses shown in rankings.
	DefaultTopN = 10

	// DefaultSuspiciousLimit is the number of suspicious entries listed.
	DefaultSuspiciousLimit = 20
)

// Formatter renders an analyzed session in a specific format.
type Formatter interface {
	// Format renders the session to the given writer.
	Format(ctx context.Context, s *session.Session, w io.Writer) error

	// Name returns the format name (text, json, export).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Quiet enables minimal summary-only output.
	Quiet bool

	// Records includes the record list, filtered by Query.
	Records bool

	// Query selects which records are listed.
	Query session.Query

	// TopN limits the address ranking. Zero uses DefaultTopN.
	TopN int

	// SuspiciousLimit limits the suspicious entries listed. Zero uses
	// DefaultSuspiciousLimit.
	SuspiciousLimit int
}

func (o FormatOptions) topN() int {
	if o.TopN > 0 {
		return o.TopN
	}
	return DefaultTopN
}

func (o FormatOptions) suspiciousLimit() int {
	if o.SuspiciousLimit > 0 {
		return o.SuspiciousLimit
	}
	return DefaultSuspiciousLimit
}

// New returns the formatter registered under name.
func New(name string, opts FormatOptions) (Formatter, bool) {
	switch name {
	case "text":
		return NewTextFormatter(opts), true
	case "json":
		return NewJSONFormatter(opts), true
	default:
		return nil, false
	}
}
