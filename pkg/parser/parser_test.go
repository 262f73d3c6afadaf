package parser

import (
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LogRecord
	}{
		{
			name: "fully structured line",
			line: "2024-01-15 10:30:00 ERROR user: jdoe 192.168.1.5 login failed 403",
			want: LogRecord{
				Timestamp:        "2024-01-15 10:30:00",
				TimestampPattern: "Datetime",
				Level:            "ERROR",
				SourceAddress:    "192.168.1.5",
				Actor:            "jdoe",
				StatusCode:       "403",
			},
		},
		{
			name: "no structure",
			line: "plain text with no structure",
			want: LogRecord{Level: "INFO"},
		},
		{
			name: "bracketed access log keeps offset",
			line: `192.168.1.1 - - [15/Jun/2024:10:30:00 +0000] "GET /index.html HTTP/1.1" 200 1234`,
			want: LogRecord{
				Timestamp:        "15/Jun/2024:10:30:00 +0000",
				TimestampPattern: "Bracketed access log",
				Level:            "INFO",
				SourceAddress:    "192.168.1.1",
				StatusCode:       "200",
			},
		},
		{
			name: "bare access log timestamp",
			line: "15/Jun/2024:10:30:00 GET /health",
			want: LogRecord{
				Timestamp:        "15/Jun/2024:10:30:00",
				TimestampPattern: "Access log",
				Level:            "INFO",
			},
		},
		{
			name: "bracketed pattern wins over datetime",
			line: "2024-01-15 10:30:00 proxy [15/Jan/2024:10:30:00 -0500] relay",
			want: LogRecord{
				Timestamp:        "15/Jan/2024:10:30:00 -0500",
				TimestampPattern: "Bracketed access log",
				Level:            "INFO",
			},
		},
		{
			name: "iso T separator is not matched",
			line: "2024-01-15T10:30:00 started",
			want: LogRecord{Level: "INFO"},
		},
		{
			name: "warning stays distinct from warn",
			line: "2024-01-15 10:30:00 warning disk low",
			want: LogRecord{
				Timestamp:        "2024-01-15 10:30:00",
				TimestampPattern: "Datetime",
				Level:            "WARNING",
			},
		},
		{
			name: "lower case level is upper-cased",
			line: "[worker] warn queue depth high",
			want: LogRecord{Level: "WARN"},
		},
		{
			name: "level needs word boundaries",
			line: "ERRORS were INFORMATIONAL",
			want: LogRecord{Level: "INFO"},
		},
		{
			name: "first level wins",
			line: "DEBUG retrying after ERROR",
			want: LogRecord{Level: "DEBUG"},
		},
		{
			name: "address octets are not range checked",
			line: "peer 999.999.999.999 rejected",
			want: LogRecord{Level: "INFO", SourceAddress: "999.999.999.999"},
		},
		{
			name: "address with port",
			line: "connect to 10.0.0.1:8080 ok",
			want: LogRecord{Level: "INFO", SourceAddress: "10.0.0.1"},
		},
		{
			name: "username label stops at comma",
			line: "Username: alice, role=admin",
			want: LogRecord{Level: "INFO", Actor: "alice"},
		},
		{
			name: "login label with whitespace separator",
			line: "LOGIN bob from console",
			want: LogRecord{Level: "INFO", Actor: "bob"},
		},
		{
			name: "label needs a separator",
			line: "username=bob",
			want: LogRecord{Level: "INFO"},
		},
		{
			name: "status heuristic false positive on port",
			line: "listening on port 443 now",
			want: LogRecord{Level: "INFO", StatusCode: "443"},
		},
		{
			name: "four digit run is not a status",
			line: "sent 4040 bytes",
			want: LogRecord{Level: "INFO"},
		},
		{
			name: "status needs leading whitespace",
			line: "500 internal error",
			want: LogRecord{Level: "ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line, 7)

			tt.want.ID = 7
			tt.want.Raw = tt.line
			tt.want.Message = tt.line

			if got != tt.want {
				t.Errorf("Parse() = %+v\nwant %+v", got, tt.want)
			}
		})
	}
}

func TestParse_TrimsTerminatorsOnly(t *testing.T) {
	got := Parse("  indented INFO line  \r\n", 0)
	if got.Raw != "  indented INFO line  " {
		t.Errorf("Raw = %q, want leading and trailing spaces kept", got.Raw)
	}
	if got.Message != got.Raw {
		t.Errorf("Message = %q, want %q", got.Message, got.Raw)
	}
}

func TestParse_AdversarialInput(t *testing.T) {
	lines := []string{
		"",
		"[",
		"[[[[]]]]",
		strings.Repeat("9", 10000),
		strings.Repeat("user: ", 500),
		"\x00\xff\xfe invalid utf8",
		"1.2.3.",
	}

	for _, line := range lines {
		rec := Parse(line, 0)
		if rec.Level == "" {
			t.Errorf("Parse(%q) left Level empty", line)
		}
	}
}

func TestParse_ASCIIOnlyCaseFolding(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantLevel string
		wantActor string
	}{
		{"mixed case keeps actor case", "Warning USERNAME: MaryJane ok", "WARNING", "MaryJane"},
		{"long s in label", "u\u017Fer: mallory logged in", "INFO", ""},
		{"long s in username label", "u\u017Fername: eve", "INFO", ""},
		{"folded label skipped for a real one", "u\u017Fer: mallory, user: bob ERROR", "ERROR", "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.line, 0)
			if got.Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", got.Level, tt.wantLevel)
			}
			if got.Actor != tt.wantActor {
				t.Errorf("Actor = %q, want %q", got.Actor, tt.wantActor)
			}
		})
	}
}

func TestLowerASCII(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"already lower", "already lower"},
		{"MiXeD 123", "mixed 123"},
		{"\u212A\u017F\u00C9X", "\u212A\u017F\u00C9x"},
	}
	for _, tt := range tests {
		got := LowerASCII(tt.in)
		if got != tt.want {
			t.Errorf("LowerASCII(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if len(got) != len(tt.in) {
			t.Errorf("LowerASCII(%q) changed length", tt.in)
		}
	}
}

func TestParseLines_AssignsSequentialIDs(t *testing.T) {
	lines := []string{"a", "b ERROR", "c", "d", "e"}

	records := ParseLines(lines)

	if len(records) != len(lines) {
		t.Fatalf("got %d records, want %d", len(records), len(lines))
	}
	for i, rec := range records {
		if rec.ID != uint(i) {
			t.Errorf("records[%d].ID = %d, want %d", i, rec.ID, i)
		}
		if rec.Raw != lines[i] {
			t.Errorf("records[%d].Raw = %q, want %q", i, rec.Raw, lines[i])
		}
	}
}

func TestParseLines_Empty(t *testing.T) {
	records := ParseLines(nil)
	if len(records) != 0 {
		t.Errorf("ParseLines(nil) = %v, want empty", records)
	}
}

func TestTimestampPatterns_Order(t *testing.T) {
	patterns := TimestampPatterns()
	want := []string{"Bracketed access log", "Access log", "Datetime"}

	if len(patterns) != len(want) {
		t.Fatalf("got %d patterns, want %d", len(patterns), len(want))
	}
	for i, p := range patterns {
		if p.Name != want[i] {
			t.Errorf("patterns[%d] = %q, want %q", i, p.Name, want[i])
		}
		for _, ex := range p.Examples {
			if !p.Pattern.MatchString(ex) {
				t.Errorf("pattern %q does not match its example %q", p.Name, ex)
			}
		}
	}
}

func TestMeasureCoverage(t *testing.T) {
	records := ParseLines([]string{
		"2024-01-15 10:30:00 ERROR user: jdoe 192.168.1.5 login failed 403",
		`10.0.0.2 - - [15/Jun/2024:10:30:00 +0000] "GET / HTTP/1.1" 200 12`,
		"plain text",
		"INFO ready",
	})

	cov := MeasureCoverage(records)

	if cov.Total != 4 {
		t.Errorf("Total = %d, want 4", cov.Total)
	}

	wantFields := map[string]int{
		FieldTimestamp:     2,
		FieldLevel:         2,
		FieldSourceAddress: 2,
		FieldActor:         1,
		FieldStatusCode:    2,
	}
	for field, want := range wantFields {
		if got := cov.Fields[field]; got != want {
			t.Errorf("Fields[%s] = %d, want %d", field, got, want)
		}
	}

	if cov.TimestampPatterns["Datetime"] != 1 {
		t.Errorf("Datetime matches = %d, want 1", cov.TimestampPatterns["Datetime"])
	}
	if cov.TimestampPatterns["Bracketed access log"] != 1 {
		t.Errorf("Bracketed matches = %d, want 1", cov.TimestampPatterns["Bracketed access log"])
	}

	if got := cov.Ratio(FieldActor); got != 0.25 {
		t.Errorf("Ratio(actor) = %v, want 0.25", got)
	}
}

func TestMeasureCoverage_Empty(t *testing.T) {
	cov := MeasureCoverage(nil)
	if cov.Ratio(FieldTimestamp) != 0 {
		t.Errorf("Ratio() on empty batch = %v, want 0", cov.Ratio(FieldTimestamp))
	}
	if len(cov.Fields) != len(FieldNames()) {
		t.Errorf("Fields has %d entries, want %d", len(cov.Fields), len(FieldNames()))
	}
}
