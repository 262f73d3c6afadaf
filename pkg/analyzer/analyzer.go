package analyzer

import (
	"sync"

	"github.com/ccollicutt/forensilog/pkg/parser"
)

// minChunk is the smallest slice of records handed to a single worker.
const minChunk = 1024

// Analyzer reduces record batches into reports.
type Analyzer struct {
	workers int
}

// Option configures analyzer behavior.
type Option func(*Analyzer)

// WithWorkers splits the reduction across n goroutines. The report is
// identical to the single-worker result for any n.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates an analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{workers: 1}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze reduces records into a report in a single left-to-right pass.
func Analyze(records []parser.LogRecord) *Report {
	r := newReport()
	for i := range records {
		r.add(&records[i])
	}
	return r
}

// Analyze reduces records into a report, fanning out over contiguous chunks
// when more than one worker is configured.
func (a *Analyzer) Analyze(records []parser.LogRecord) *Report {
	chunks := splitChunks(len(records), a.workers)
	if len(chunks) <= 1 {
		return Analyze(records)
	}

	partials := make([]*Report, len(chunks))
	var wg sync.WaitGroup
	for i, c := range chunks {
		wg.Add(1)
		go func(i int, lo, hi int) {
			defer wg.Done()
			partials[i] = Analyze(records[lo:hi])
		}(i, c[0], c[1])
	}
	wg.Wait()

	out := newReport()
	for _, p := range partials {
		out.merge(p)
	}
	return out
}

func newReport() *Report {
	return &Report{
		Errors:     []parser.LogRecord{},
		Suspicious: []parser.LogRecord{},
	}
}

// add folds one record into the report. Field order follows the reduction
// contract: levels, addresses, actors, errors, suspicious, time range.
func (r *Report) add(rec *parser.LogRecord) {
	r.Total++
	r.Levels.Inc(rec.Level)

	if rec.SourceAddress != "" {
		r.Addresses.Inc(rec.SourceAddress)
	}
	if rec.Actor != "" {
		r.Actors.Inc(rec.Actor)
	}
	if IsErrorLevel(rec.Level) {
		r.Errors = append(r.Errors, *rec)
	}
	if IsSuspicious(rec.Raw) {
		r.Suspicious = append(r.Suspicious, *rec)
	}
	if rec.Timestamp != "" {
		if r.TimeRange.Start == "" {
			r.TimeRange.Start = rec.Timestamp
		}
		r.TimeRange.End = rec.Timestamp
	}
}

// merge appends a partial report computed over the records that directly
// follow the ones already folded into r.
func (r *Report) merge(p *Report) {
	r.Total += p.Total
	r.Levels.Merge(&p.Levels)
	r.Addresses.Merge(&p.Addresses)
	r.Actors.Merge(&p.Actors)
	r.Errors = append(r.Errors, p.Errors...)
	r.Suspicious = append(r.Suspicious, p.Suspicious...)

	if r.TimeRange.Start == "" {
		r.TimeRange.Start = p.TimeRange.Start
	}
	if p.TimeRange.End != "" {
		r.TimeRange.End = p.TimeRange.End
	}
}

// splitChunks divides n items into at most workers contiguous [lo, hi)
// ranges, using fewer workers when each would get under minChunk items.
func splitChunks(n, workers int) [][2]int {
	if n == 0 {
		return nil
	}
	if limit := n / minChunk; workers > limit {
		workers = limit
	}
	if workers < 1 {
		workers = 1
	}

	size := (n + workers - 1) / workers
	chunks := make([][2]int, 0, workers)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		chunks = append(chunks, [2]int{lo, hi})
	}
	return chunks
}
