// Package parser turns raw log lines into structured records using an ordered
// set of heuristic field extractors.
package parser

// DefaultLevel is assigned to lines that carry no explicit severity marker.
const DefaultLevel = "INFO"

// LogRecord is the structured form of a single input line.
// Optional fields use the empty string for "absent"; none of the extractors
// can produce an empty match.
type LogRecord struct {
	// ID is the zero-based position of the line within its batch.
	ID uint `json:"id"`

	// Raw is the original line with line terminators removed.
	Raw string `json:"raw"`

	// Timestamp is the extracted timestamp text with brackets stripped.
	// It is not parsed into a time.Time.
	Timestamp string `json:"timestamp,omitempty"`

	// Level is the upper-cased severity token, DefaultLevel if none found.
	Level string `json:"level"`

	// SourceAddress is the first dotted-quad token in the line.
	SourceAddress string `json:"source_address,omitempty"`

	// Actor is the token following a user/username/login label.
	Actor string `json:"actor,omitempty"`

	// StatusCode is the first whitespace-bounded three digit run.
	StatusCode string `json:"status_code,omitempty"`

	// Message currently mirrors Raw.
	Message string `json:"message"`

	// TimestampPattern names the timestamp pattern that matched.
	TimestampPattern string `json:"timestamp_pattern,omitempty"`
}

// HasTimestamp reports whether a timestamp was extracted.
func (r *LogRecord) HasTimestamp() bool {
	return r.Timestamp != ""
}
