package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// MemorySink keeps records in process memory.
// Appends are serialized, readers use the last published snapshot
// and never wait for writers.
type MemorySink struct {
	mu         sync.Mutex
	snapshot   atomic.Pointer[[]*Record]
	maxEntries int
}

// NewMemorySink returns an in-memory sink keeping at most maxEntries records,
// or all records when maxEntries is not positive
func NewMemorySink(maxEntries int) *MemorySink {
	s := &MemorySink{maxEntries: maxEntries}
	s.snapshot.Store(&[]*Record{})
	return s
}

// Name returns the sink name
func (m *MemorySink) Name() string {
	return "memory"
}

// Append stores the record
func (m *MemorySink) Append(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur := *m.snapshot.Load()
	start := 0
	if m.maxEntries > 0 && len(cur) >= m.maxEntries {
		start = len(cur) - m.maxEntries + 1
	}

	next := make([]*Record, 0, len(cur)-start+1)
	next = append(next, cur[start:]...)
	c := *rec
	next = append(next, &c)
	m.snapshot.Store(&next)
	return nil
}

// QueryRecent returns up to limit records, most recent first
func (m *MemorySink) QueryRecent(_ context.Context, limit int) ([]*Record, error) {
	limit = NormalizeLimit(limit)
	cur := *m.snapshot.Load()

	n := min(limit, len(cur))
	list := make([]*Record, 0, n)
	for i := len(cur) - 1; i >= len(cur)-n; i-- {
		c := *cur[i]
		list = append(list, &c)
	}
	return list, nil
}

// Len returns the number of stored records
func (m *MemorySink) Len() int {
	return len(*m.snapshot.Load())
}
