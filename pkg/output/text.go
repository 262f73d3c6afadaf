package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/forensilog/pkg/parser"
	"github.com/ccollicutt/forensilog/pkg/session"
)

// TextFormatter formats sessions as a human-readable dashboard.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// palette holds styles bound to one writer, so colour is dropped when the
// writer is not a terminal.
type palette struct {
	header    lipgloss.Style
	timestamp lipgloss.Style
	address   lipgloss.Style
	alert     lipgloss.Style
	debug     lipgloss.Style
	info      lipgloss.Style
	warn      lipgloss.Style
	err       lipgloss.Style
	fatal     lipgloss.Style
}

func newPalette(w io.Writer) palette {
	return paletteFor(lipgloss.NewRenderer(w))
}

func paletteFor(r *lipgloss.Renderer) palette {
	return palette{
		header:    r.NewStyle().Bold(true),
		timestamp: r.NewStyle().Foreground(lipgloss.Color("245")),
		address:   r.NewStyle().Foreground(lipgloss.Color("39")),
		alert:     r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		debug:     r.NewStyle().Foreground(lipgloss.Color("245")).Faint(true),
		info:      r.NewStyle().Foreground(lipgloss.Color("34")),
		warn:      r.NewStyle().Foreground(lipgloss.Color("220")),
		err:       r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		fatal: r.NewStyle().
			Foreground(lipgloss.Color("255")).
			Background(lipgloss.Color("196")).
			Bold(true),
	}
}

func (p palette) level(level string) string {
	padded := fmt.Sprintf("%-8s", level)
	switch strings.ToUpper(level) {
	case "DEBUG", "TRACE":
		return p.debug.Render(padded)
	case "WARN", "WARNING":
		return p.warn.Render(padded)
	case "ERROR":
		return p.err.Render(padded)
	case "CRITICAL", "FATAL":
		return p.fatal.Render(padded)
	default:
		return p.info.Render(padded)
	}
}

// addressColumn pads before styling so escape codes do not count toward the
// column width.
func (p palette) addressColumn(addr string) string {
	return p.address.Render(fmt.Sprintf("%-15s", addr))
}

// Format renders the session as text.
func (f *TextFormatter) Format(ctx context.Context, s *session.Session, w io.Writer) error {
	if f.opts.Quiet {
		_, err := fmt.Fprintln(w, NewSummary(s).String())
		return err
	}
	return f.formatFull(s, w)
}

func (f *TextFormatter) formatFull(s *session.Session, w io.Writer) error {
	p := newPalette(w)
	sum := NewSummary(s)
	r := reportOf(s)

	// Header
	fmt.Fprintln(w, p.header.Render(fmt.Sprintf("=== forensilog: %s ===", orNA(sum.Source))))
	if !sum.CapturedAt.IsZero() {
		fmt.Fprintf(w, "Captured: %s\n", sum.CapturedAt.Format("2006-01-02 15:04:05 MST"))
	}
	fmt.Fprintln(w)

	if s.Empty() {
		fmt.Fprintln(w, "No log entries.")
		return nil
	}

	// Dashboard
	fmt.Fprintf(w, "Total entries:    %d\n", sum.Total)
	fmt.Fprintf(w, "Errors:           %d\n", sum.Errors)
	fmt.Fprintf(w, "Unique addresses: %d\n", sum.UniqueAddresses)
	fmt.Fprintf(w, "Suspicious:       %d\n", sum.Suspicious)
	fmt.Fprintf(w, "Time range:       %s to %s\n", orNA(r.TimeRange.Start), orNA(r.TimeRange.End))
	fmt.Fprintln(w)

	fmt.Fprintln(w, p.header.Render("Log levels"))
	for _, c := range r.Levels.Sorted() {
		fmt.Fprintf(w, "  %s %d entries\n", p.level(c.Key), c.Count)
	}
	fmt.Fprintln(w)

	if r.Addresses.Len() > 0 {
		fmt.Fprintln(w, p.header.Render("Top addresses"))
		for _, c := range r.Addresses.Top(f.opts.topN()) {
			fmt.Fprintf(w, "  %s %d requests\n", p.addressColumn(c.Key), c.Count)
		}
		fmt.Fprintln(w)
	}

	if r.HasSuspicious() {
		fmt.Fprintln(w, p.alert.Render(fmt.Sprintf("! %d suspicious activities detected", len(r.Suspicious))))
		f.formatRecords(p, limit(r.Suspicious, f.opts.suspiciousLimit()), w)
		fmt.Fprintln(w)
	}

	if f.opts.Records {
		records := s.Filter(f.opts.Query)
		fmt.Fprintln(w, p.header.Render(fmt.Sprintf("Records (%d of %d)", len(records), sum.Total)))
		f.formatRecords(p, records, w)
	}

	return nil
}

func (f *TextFormatter) formatRecords(p palette, records []parser.LogRecord, w io.Writer) {
	for i := range records {
		fmt.Fprintf(w, "  %s\n", formatRecord(p, &records[i]))
	}
}

func formatRecord(p palette, rec *parser.LogRecord) string {
	parts := make([]string, 0, 4)
	if rec.HasTimestamp() {
		parts = append(parts, p.timestamp.Render("["+rec.Timestamp+"]"))
	}
	parts = append(parts, p.level(rec.Level))
	if rec.SourceAddress != "" {
		parts = append(parts, p.address.Render(rec.SourceAddress))
	}
	parts = append(parts, rec.Raw)
	return strings.Join(parts, " ")
}

func limit(records []parser.LogRecord, n int) []parser.LogRecord {
	if n > 0 && len(records) > n {
		return records[:n]
	}
	return records
}

var _ Formatter = (*TextFormatter)(nil)
