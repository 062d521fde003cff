// Package sink emulates the delivery stream's destination buffering for
// local runs: transformed records accumulate until a size or age threshold
// passes, then flush to object storage as line-delimited JSON.
package sink

import (
	"log"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

type Buffer struct {
	mu           sync.Mutex
	Name         string
	lines        [][]byte
	seen         map[uint64]struct{}
	bytes        int
	totalRecords int
	flushCount   int
	lastFlush    time.Time
}

func NewBuffer(name string) *Buffer {
	return &Buffer{
		Name:      name,
		lines:     make([][]byte, 0),
		seen:      make(map[uint64]struct{}),
		lastFlush: time.Now(),
	}
}

// Add appends one record line. Identical lines within a buffer window are
// dropped by content digest; the dispatcher may deliver an object more than
// once. Returns whether the line was kept.
func (b *Buffer) Add(line []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	digest := xxhash.Sum64(line)
	if _, exists := b.seen[digest]; exists {
		return false
	}

	b.lines = append(b.lines, line)
	b.seen[digest] = struct{}{}
	b.bytes += len(line)
	b.totalRecords++
	return true
}

// Flush drains the buffered lines and resets the dedupe window.
func (b *Buffer) Flush() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.lines) == 0 {
		return nil
	}

	flushed := b.lines
	b.lines = make([][]byte, 0)
	b.seen = make(map[uint64]struct{})
	b.bytes = 0
	b.flushCount++
	b.lastFlush = time.Now()

	return flushed
}

// Size reports the buffered byte count.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bytes
}

// ShouldFlush checks the size and age thresholds.
func (b *Buffer) ShouldFlush(maxBytes int, maxAge time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.lines) == 0 {
		return false
	}
	return b.bytes >= maxBytes || time.Since(b.lastFlush) >= maxAge
}

func (b *Buffer) Metrics() {
	b.mu.Lock()
	defer b.mu.Unlock()

	sinceFlush := time.Since(b.lastFlush)

	log.Printf("[Metrics] Sink buffer for %s - size: %d bytes, total: %d, flushes: %d, last_flush: %v ago",
		b.Name,
		b.bytes,
		b.totalRecords,
		b.flushCount,
		sinceFlush,
	)
}
