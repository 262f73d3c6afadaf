// Package session owns one analyzed batch: its records, report, source name
// and capture time. A new load replaces the whole session.
package session

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/forensilog/pkg/analyzer"
	"github.com/ccollicutt/forensilog/pkg/parser"
)

// AllLevels disables the level filter in a Query.
const AllLevels = "all"

// Session is a single analyzed batch. The zero value is the empty pre-load
// state.
type Session struct {
	ID         uuid.UUID          `json:"id"`
	Source     string             `json:"source"`
	CapturedAt time.Time          `json:"captured_at"`
	Records    []parser.LogRecord `json:"records"`
	Report     *analyzer.Report   `json:"report"`
}

type options struct {
	now     func() time.Time
	workers int
}

// Option configures New.
type Option func(*options)

// WithClock overrides the capture time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithWorkers sets the analyzer fan-out.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// New parses and analyzes lines into a fresh session. The source name is
// kept for display only.
func New(source string, lines []string, opts ...Option) *Session {
	o := options{now: time.Now, workers: 1}
	for _, opt := range opts {
		opt(&o)
	}

	records := parser.ParseLines(lines)

	return &Session{
		ID:         uuid.New(),
		Source:     source,
		CapturedAt: o.now().UTC(),
		Records:    records,
		Report:     analyzer.New(analyzer.WithWorkers(o.workers)).Analyze(records),
	}
}

// Empty reports whether the session holds no records.
func (s *Session) Empty() bool {
	return s == nil || len(s.Records) == 0
}

// Query selects records for display.
type Query struct {
	// Search is a case-insensitive substring of the raw line. Empty matches all.
	Search string

	// Level is compared case-insensitively with the record level.
	// Empty or AllLevels matches all.
	Level string
}

// Matches reports whether rec satisfies the query.
func (q Query) Matches(rec *parser.LogRecord) bool {
	if q.Search != "" && !strings.Contains(strings.ToLower(rec.Raw), strings.ToLower(q.Search)) {
		return false
	}
	if q.Level != "" && !strings.EqualFold(q.Level, AllLevels) && !strings.EqualFold(q.Level, rec.Level) {
		return false
	}
	return true
}

// Filter returns the records matching q in their original order.
func (s *Session) Filter(q Query) []parser.LogRecord {
	if s == nil {
		return nil
	}
	out := make([]parser.LogRecord, 0, len(s.Records))
	for i := range s.Records {
		if q.Matches(&s.Records[i]) {
			out = append(out, s.Records[i])
		}
	}
	return out
}
