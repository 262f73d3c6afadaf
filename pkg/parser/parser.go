package parser

import "strings"

// Parse converts one line into a LogRecord. It never fails: a field whose
// pattern does not match is left absent or at its default.
func Parse(line string, index uint) LogRecord {
	line = strings.TrimRight(line, "\r\n")

	rec := LogRecord{
		ID:      index,
		Raw:     line,
		Level:   DefaultLevel,
		Message: line,
	}

	for _, ex := range extractors {
		ex.extract(line, &rec)
	}

	return rec
}

// ParseLines parses every line in order, using the line position as the ID.
func ParseLines(lines []string) []LogRecord {
	records := make([]LogRecord, len(lines))
	for i, line := range lines {
		records[i] = Parse(line, uint(i))
	}
	return records
}

// Coverage summarises how many records each extractor produced a value for.
type Coverage struct {
	// Total is the number of records examined.
	Total int `json:"total"`

	// Fields maps each field name to the number of records that carried it.
	// Level only counts explicit severity markers.
	Fields map[string]int `json:"fields"`

	// TimestampPatterns maps a timestamp pattern name to its match count.
	TimestampPatterns map[string]int `json:"timestamp_patterns"`
}

// Ratio returns the share of records that carried field, 0 for an empty batch.
func (c *Coverage) Ratio(field string) float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Fields[field]) / float64(c.Total)
}

// FieldNames returns the field names in extraction order.
func FieldNames() []string {
	names := make([]string, len(extractors))
	for i, ex := range extractors {
		names[i] = ex.field
	}
	return names
}

// MeasureCoverage re-runs the extractors over each record's raw text and
// counts matches.
func MeasureCoverage(records []LogRecord) *Coverage {
	cov := &Coverage{
		Total:             len(records),
		Fields:            make(map[string]int),
		TimestampPatterns: make(map[string]int),
	}

	for _, field := range FieldNames() {
		cov.Fields[field] = 0
	}

	for i := range records {
		var scratch LogRecord
		for _, ex := range extractors {
			if ex.extract(records[i].Raw, &scratch) {
				cov.Fields[ex.field]++
			}
		}
		if scratch.TimestampPattern != "" {
			cov.TimestampPatterns[scratch.TimestampPattern]++
		}
	}

	return cov
}
