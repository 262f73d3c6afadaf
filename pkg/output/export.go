package output

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ccollicutt/forensilog/pkg/session"
)

const (
	exportTopAddresses = 10
	exportSuspicious   = 20
)

// ExportFormatter writes the fixed-layout plain-text forensic report.
type ExportFormatter struct {
	generated time.Time
}

// NewExportFormatter creates an export formatter stamped with generated.
func NewExportFormatter(generated time.Time) *ExportFormatter {
	return &ExportFormatter{generated: generated}
}

// Name returns the format name.
func (f *ExportFormatter) Name() string {
	return "export"
}

// Format renders the report. Level breakdown keeps first-seen order;
// addresses are ranked by count.
func (f *ExportFormatter) Format(ctx context.Context, s *session.Session, w io.Writer) error {
	r := reportOf(s)
	source := ""
	if s != nil {
		source = s.Source
	}

	var b strings.Builder
	b.WriteString("DIGITAL FORENSIC LOG ANALYSIS REPORT\n\n")
	b.WriteString("=====================================\n")
	fmt.Fprintf(&b, "File: %s\n", source)
	fmt.Fprintf(&b, "Generated: %s\n\n", f.generated.Format("2006-01-02 15:04:05 MST"))

	section(&b, "SUMMARY")
	fmt.Fprintf(&b, "Total Entries: %d\n", r.Total)
	fmt.Fprintf(&b, "Time Range: %s to %s\n\n", orNA(r.TimeRange.Start), orNA(r.TimeRange.End))

	section(&b, "LOG LEVELS")
	for _, c := range r.Levels.Entries() {
		fmt.Fprintf(&b, "%s: %d\n", c.Key, c.Count)
	}
	b.WriteString("\n")

	section(&b, "TOP IP ADDRESSES")
	for _, c := range r.Addresses.Top(exportTopAddresses) {
		fmt.Fprintf(&b, "%s: %d requests\n", c.Key, c.Count)
	}
	b.WriteString("\n")

	section(&b, "ERRORS DETECTED")
	fmt.Fprintf(&b, "%d error(s) found\n\n", len(r.Errors))

	b.WriteString("SUSPICIOUS ACTIVITIES\n--------------------\n")
	fmt.Fprintf(&b, "%d suspicious entries detected\n\n", len(r.Suspicious))
	for _, rec := range limit(r.Suspicious, exportSuspicious) {
		ts := rec.Timestamp
		if ts == "" {
			ts = "No timestamp"
		}
		fmt.Fprintf(&b, "[%s] %s\n", ts, rec.Raw)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func section(b *strings.Builder, title string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", len(title)))
	b.WriteString("\n")
}

var _ Formatter = (*ExportFormatter)(nil)
