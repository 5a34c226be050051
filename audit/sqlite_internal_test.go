package audit

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSink_QueryDuringWrite(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteSink(ctx, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Append(ctx, NewRecord("s1", "math", "committed", "4", "success")))

	// hold the only writer connection in an open transaction
	tx, err := s.writer.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_logs (id, session_id, tool, input, output, status, timestamp) VALUES ('x', 's1', 'math', 'pending', '', 'success', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	qctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	list, err := s.QueryRecent(qctx, 5)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "committed", list[0].Input)
}

func TestSQLiteSink_ConcurrentAppendQuery(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteSink(ctx, filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer s.Close()

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, 2*n)
	for i := 0; i < n; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			errs <- s.Append(ctx, NewRecord("s1", "finance", "AAPL", "175.50", "success"))
		}()
		go func() {
			defer wg.Done()
			_, err := s.QueryRecent(ctx, 5)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	list, err := s.QueryRecent(ctx, MaxLimit)
	require.NoError(t, err)
	assert.Len(t, list, n)
}

func TestSQLiteSink_MemorySharesConnection(t *testing.T) {
	s, err := NewSQLiteSink(context.Background(), ":memory:")
	require.NoError(t, err)
	defer s.Close()
	assert.Same(t, s.writer, s.reader)
}
