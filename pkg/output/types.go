// Package output provides formatting and export for analyzed sessions.
package output

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/forensilog/pkg/analyzer"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// Summary holds the dashboard figures for a session.
type Summary struct {
	Source          string             `json:"source"`
	ID              uuid.UUID          `json:"id"`
	CapturedAt      time.Time          `json:"captured_at"`
	Total           int                `json:"total"`
	Errors          int                `json:"errors"`
	UniqueAddresses int                `json:"unique_addresses"`
	Suspicious      int                `json:"suspicious"`
	TimeRange       analyzer.TimeRange `json:"time_range"`
}

// NewSummary computes the summary of s. A nil or empty session yields zero
// counts.
func NewSummary(s *session.Session) Summary {
	r := reportOf(s)
	sum := Summary{
		Total:           r.Total,
		Errors:          len(r.Errors),
		UniqueAddresses: r.Addresses.Len(),
		Suspicious:      len(r.Suspicious),
		TimeRange:       r.TimeRange,
	}
	if s != nil {
		sum.Source = s.Source
		sum.ID = s.ID
		sum.CapturedAt = s.CapturedAt
	}
	return sum
}

// String renders the summary as a single line.
func (s Summary) String() string {
	return fmt.Sprintf("forensilog: %d entries, %d errors, %d unique addresses, %d suspicious",
		s.Total, s.Errors, s.UniqueAddresses, s.Suspicious)
}

// ExportFileName is the default name of an export written at now.
func ExportFileName(now time.Time) string {
	return fmt.Sprintf("forensic_report_%d.txt", now.UnixMilli())
}

func reportOf(s *session.Session) *analyzer.Report {
	if s == nil || s.Report == nil {
		return analyzer.Analyze(nil)
	}
	return s.Report
}

func orNA(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
