package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite" // register sqlite driver
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS audit_logs (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL,
	session_id TEXT NOT NULL,
	tool TEXT NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	status TEXT NOT NULL,
	timestamp TEXT NOT NULL
)`

// SQLiteSink stores records in the audit_logs table.
// Appends go through a single writer connection, queries use a separate
// read pool so they do not wait for in-flight appends.
type SQLiteSink struct {
	writer *sql.DB
	reader *sql.DB
}

// ReadPoolSize is the number of read connections of a file database
const ReadPoolSize = 4

// NewSQLiteSink opens the database file and creates the audit_logs table if needed.
// Use ":memory:" for a transient database, it is served by a single connection.
func NewSQLiteSink(ctx context.Context, path string) (*SQLiteSink, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	writer, err := openSQLite(dsn, 1)
	if err != nil {
		return nil, err
	}
	if _, err = writer.ExecContext(ctx, sqliteSchema); err != nil {
		_ = writer.Close()
		return nil, errors.Wrap(err, "failed to create audit_logs table")
	}
	if path == ":memory:" {
		return &SQLiteSink{writer: writer, reader: writer}, nil
	}

	reader, err := openSQLite(dsn+"&_pragma=query_only(1)", ReadPoolSize)
	if err != nil {
		_ = writer.Close()
		return nil, err
	}
	return &SQLiteSink{writer: writer, reader: reader}, nil
}

func openSQLite(dsn string, maxConns int) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite db")
	}
	db.SetMaxOpenConns(maxConns)
	return db, nil
}

// Name returns the sink name
func (s *SQLiteSink) Name() string {
	return "sqlite"
}

// Append stores the record
func (s *SQLiteSink) Append(ctx context.Context, rec *Record) error {
	_, err := s.writer.ExecContext(ctx,
		`INSERT INTO audit_logs (id, session_id, tool, input, output, status, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.ToolName, rec.Input, rec.Output, rec.Status,
		rec.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return errors.Wrap(err, "failed to insert audit record")
	}
	return nil
}

// QueryRecent returns up to limit records, most recent first
func (s *SQLiteSink) QueryRecent(ctx context.Context, limit int) ([]*Record, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, session_id, tool, input, output, status, timestamp FROM audit_logs ORDER BY seq DESC LIMIT ?`,
		NormalizeLimit(limit),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query audit records")
	}
	defer rows.Close()

	var list []*Record
	for rows.Next() {
		var (
			rec Record
			ts  string
		)
		if err = rows.Scan(&rec.ID, &rec.SessionID, &rec.ToolName, &rec.Input, &rec.Output, &rec.Status, &ts); err != nil {
			return nil, errors.Wrap(err, "failed to scan audit record")
		}
		if rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, errors.Wrapf(err, "invalid timestamp in record %s", rec.ID)
		}
		list = append(list, &rec)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read audit records")
	}
	return list, nil
}

// Close closes the database
func (s *SQLiteSink) Close() error {
	err := s.writer.Close()
	if s.reader != s.writer {
		if rerr := s.reader.Close(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return err
}
