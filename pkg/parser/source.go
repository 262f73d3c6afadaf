package parser

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

// MaxLineSize is the longest line ReadLines accepts.
const MaxLineSize = 1024 * 1024

// ReadLines splits r into lines, dropping lines that are empty or contain
// only whitespace. Kept lines are returned verbatim minus their terminator,
// except that each run of invalid UTF-8 becomes U+FFFD, so a line reads back
// the same after a JSON round trip.
func ReadLines(ctx context.Context, r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var lines []string
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line := strings.ToValidUTF8(strings.TrimSuffix(scanner.Text(), "\r"), "\uFFFD")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}

// ReadFile reads the non-blank lines of the file at path.
func ReadFile(ctx context.Context, path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}
	defer f.Close()

	lines, err := ReadLines(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
