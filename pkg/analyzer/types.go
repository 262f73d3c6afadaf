// Package analyzer folds parsed log records into aggregate statistics and
// flags records that look like errors or suspicious activity.
package analyzer

import (
	"regexp"

	"github.com/ccollicutt/forensilog/pkg/parser"
)

// ErrorLevels are the severities collected into Report.Errors.
var ErrorLevels = []string{"ERROR", "CRITICAL", "FATAL"}

// SuspiciousKeywords are matched anywhere in a raw line, ignoring ASCII case.
var SuspiciousKeywords = []string{
	"failed", "unauthorized", "denied", "forbidden", "attack",
	"injection", "malicious", "breach", "exploit",
}

// Matched against parser.LowerASCII(raw) so non-ASCII letters never fold.
var suspiciousPattern = regexp.MustCompile(
	`failed|unauthorized|denied|forbidden|attack|injection|malicious|breach|exploit`)

// IsErrorLevel reports whether level is one of ErrorLevels.
func IsErrorLevel(level string) bool {
	for _, l := range ErrorLevels {
		if level == l {
			return true
		}
	}
	return false
}

// IsSuspicious reports whether raw contains a suspicious keyword.
func IsSuspicious(raw string) bool {
	return suspiciousPattern.MatchString(parser.LowerASCII(raw))
}

// TimeRange is the first and last timestamp seen in input order.
// Either end is empty when no record carried a timestamp.
type TimeRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// Report holds the statistics derived from one batch of records.
// It is built in a single pass and never updated afterwards.
type Report struct {
	// Total is the number of records analyzed.
	Total int `json:"total"`

	// TimeRange spans the first and last timestamped records.
	TimeRange TimeRange `json:"time_range"`

	// Levels counts records per severity.
	Levels Counter `json:"levels"`

	// Addresses counts records per source address.
	Addresses Counter `json:"addresses"`

	// Actors counts records per actor.
	Actors Counter `json:"actors"`

	// Errors holds the error-severity records in input order.
	Errors []parser.LogRecord `json:"errors"`

	// Suspicious holds the records matching a suspicious keyword in input order.
	Suspicious []parser.LogRecord `json:"suspicious"`
}

// HasSuspicious returns true if any suspicious records were found.
func (r *Report) HasSuspicious() bool {
	return len(r.Suspicious) > 0
}
