package ingest

import (
	"context"
	"database/sql"
	"fmt"
)

// WriteFunc is a callback that performs database writes inside a transaction.
type WriteFunc func(ctx context.Context, tx *sql.Tx) error

// BatchWriter buffers write operations and runs each full batch inside one
// transaction. A batch either commits entirely or is rolled back. After a
// failed batch the writer refuses further work and reports the error.
//
// BatchWriter is not safe for concurrent use.
type BatchWriter struct {
	db     *sql.DB
	buf    []WriteFunc
	cap    int
	closed bool
	err    error

	// OnCommit is called after each committed batch with its size.
	OnCommit func(n int)
}

// NewBatchWriter creates a new BatchWriter.
// db: the database connection to use for transactions. nil runs the
// callbacks with a nil transaction, which tests use.
// bufferSize: flush when buffer reaches this size.
func NewBatchWriter(db *sql.DB, bufferSize int) *BatchWriter {
	if bufferSize <= 0 {
		bufferSize = 10
	}
	return &BatchWriter{
		db:  db,
		buf: make([]WriteFunc, 0, bufferSize),
		cap: bufferSize,
	}
}

// Submit enqueues a write function and flushes when the buffer is full.
func (bw *BatchWriter) Submit(ctx context.Context, w WriteFunc) error {
	if bw.closed {
		return ErrBatchWriterClosed
	}
	if bw.err != nil {
		return bw.err
	}
	bw.buf = append(bw.buf, w)
	if len(bw.buf) >= bw.cap {
		return bw.Flush(ctx)
	}
	return nil
}

// Pending reports the number of buffered, uncommitted writes.
func (bw *BatchWriter) Pending() int { return len(bw.buf) }

// Flush commits the buffered writes now.
func (bw *BatchWriter) Flush(ctx context.Context) error {
	if bw.err != nil {
		return bw.err
	}
	if len(bw.buf) == 0 {
		return nil
	}
	batch := bw.buf
	bw.buf = make([]WriteFunc, 0, bw.cap)

	if err := bw.executeBatch(ctx, batch); err != nil {
		bw.err = err
		return err
	}
	if bw.OnCommit != nil {
		bw.OnCommit(len(batch))
	}
	return nil
}

func (bw *BatchWriter) executeBatch(ctx context.Context, batch []WriteFunc) error {
	if bw.db == nil {
		for _, w := range batch {
			if err := w(ctx, nil); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := bw.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // ignored if committed
	}()

	for _, w := range batch {
		if err := w(ctx, tx); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch (%d items): %w", len(batch), err)
	}
	return nil
}

// Close flushes the remaining writes and stops accepting submissions.
func (bw *BatchWriter) Close(ctx context.Context) error {
	if bw.closed {
		return ErrBatchWriterClosed
	}
	err := bw.Flush(ctx)
	bw.closed = true
	return err
}

// Discard drops the buffered writes without running them and closes the writer.
func (bw *BatchWriter) Discard() int {
	n := len(bw.buf)
	bw.buf = nil
	bw.closed = true
	return n
}

var ErrBatchWriterClosed = &BatchWriterError{"batch writer closed"}

type BatchWriterError struct{ msg string }

func (e *BatchWriterError) Error() string { return e.msg }
