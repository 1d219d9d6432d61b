package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// progressReporter writes a one-line running tally of an ingestion run.
// Batches update it from pool workers, so it is safe for concurrent use.
type progressReporter struct {
	mu      sync.Mutex
	writer  io.Writer
	total   int
	done    int
	every   int
	nextAt  int
	started time.Time
}

// newProgressReporter reports every `every` completed sources out of total.
func newProgressReporter(writer io.Writer, total, every int) *progressReporter {
	if every < 1 {
		every = 1
	}
	return &progressReporter{
		writer:  writer,
		total:   total,
		every:   every,
		nextAt:  every,
		started: time.Now(),
	}
}

// Add records n completed sources, emitting a line when the report
// threshold is crossed.
func (p *progressReporter) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done += n
	if p.done > p.total {
		p.done = p.total
	}
	if p.done >= p.nextAt {
		p.write()
		p.nextAt = p.done + p.every
	}
}

// Close emits the final tally and terminates the progress line.
func (p *progressReporter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = p.total
	p.write()
	fmt.Fprintln(p.writer)
}

// write emits the tally. Callers hold the lock.
func (p *progressReporter) write() {
	var pct float64
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.started).Seconds()
	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f sources/s",
		p.done, p.total, pct, rate)
}
