package parser

import (
	"regexp"
	"strings"
)

// TimestampPattern is one entry in the ordered timestamp pattern list.
type TimestampPattern struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex, first capture group is the timestamp
	PatternStr string         // Pattern string for display
	Examples   []string       // Example matches
}

// Timestamp patterns in precedence order. The first pattern that matches
// anywhere in the line wins, so reordering this list changes classification
// of lines that carry more than one timestamp-shaped substring.
var timestampPatterns = []*TimestampPattern{
	{
		Name:       "Bracketed access log",
		PatternStr: `(\[\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2}[^\]]*\])`,
		Examples:   []string{"[15/Jan/2024:10:30:00 +0000]"},
	},
	{
		Name:       "Access log",
		PatternStr: `(\d{2}/\w{3}/\d{4}:\d{2}:\d{2}:\d{2})`,
		Examples:   []string{"15/Jan/2024:10:30:00"},
	},
	{
		Name:       "Datetime",
		PatternStr: `(\d{4}-\d{2}-\d{2}\s+\d{2}:\d{2}:\d{2})`,
		Examples:   []string{"2024-01-15 10:30:00"},
	},
}

func init() {
	for _, p := range timestampPatterns {
		p.Pattern = regexp.MustCompile(p.PatternStr)
	}
}

// TimestampPatterns returns the timestamp patterns in precedence order.
func TimestampPatterns() []*TimestampPattern {
	out := make([]*TimestampPattern, len(timestampPatterns))
	copy(out, timestampPatterns)
	return out
}

// levelPattern and actorPattern are matched against LowerASCII(line), not
// with (?i), so only A-Z fold: the Kelvin sign never matches k and long s
// never matches s.
var (
	levelPattern   = regexp.MustCompile(`\b(debug|info|warn|warning|error|critical|fatal|trace)\b`)
	addressPattern = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	actorPattern   = regexp.MustCompile(`(?:user|username|login)[:\s]+([^\s,]+)`)

	// Terminators are trimmed before parsing, so end of line stands in for
	// the trailing whitespace.
	statusPattern = regexp.MustCompile(`\s(\d{3})(?:\s|$)`)
)

var bracketStripper = strings.NewReplacer("[", "", "]", "")

// Field names reported by Coverage.
const (
	FieldTimestamp     = "timestamp"
	FieldLevel         = "level"
	FieldSourceAddress = "source_address"
	FieldActor         = "actor"
	FieldStatusCode    = "status_code"
)

// extractor fills one field of a record from a line.
type extractor struct {
	field   string
	extract func(line string, rec *LogRecord) bool
}

// extractors run in this order for every line. Each field is independent;
// within a field the first match wins.
var extractors = []extractor{
	{field: FieldTimestamp, extract: extractTimestamp},
	{field: FieldLevel, extract: extractLevel},
	{field: FieldSourceAddress, extract: extractAddress},
	{field: FieldActor, extract: extractActor},
	{field: FieldStatusCode, extract: extractStatus},
}

func extractTimestamp(line string, rec *LogRecord) bool {
	for _, p := range timestampPatterns {
		m := p.Pattern.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		rec.Timestamp = bracketStripper.Replace(m[1])
		rec.TimestampPattern = p.Name
		return true
	}
	return false
}

func extractLevel(line string, rec *LogRecord) bool {
	m := levelPattern.FindStringSubmatch(LowerASCII(line))
	if len(m) < 2 {
		return false
	}
	rec.Level = strings.ToUpper(m[1])
	return true
}

func extractAddress(line string, rec *LogRecord) bool {
	m := addressPattern.FindString(line)
	if m == "" {
		return false
	}
	rec.SourceAddress = m
	return true
}

func extractActor(line string, rec *LogRecord) bool {
	// Offsets into the folded copy are valid in line; the actor keeps its case.
	m := actorPattern.FindStringSubmatchIndex(LowerASCII(line))
	if len(m) < 4 {
		return false
	}
	rec.Actor = line[m[2]:m[3]]
	return true
}

func extractStatus(line string, rec *LogRecord) bool {
	m := statusPattern.FindStringSubmatch(line)
	if len(m) < 2 {
		return false
	}
	rec.StatusCode = m[1]
	return true
}

// LowerASCII lowercases A-Z and leaves every other byte alone, so the result
// has the same length and offsets as s.
func LowerASCII(s string) string {
	var b []byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			continue
		}
		if b == nil {
			b = []byte(s)
		}
		b[i] = c + ('a' - 'A')
	}
	if b == nil {
		return s
	}
	return string(b)
}
