package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestTable(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id INTEGER PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func insertVal(val string) WriteFunc {
	return func(ctx context.Context, tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO test (val) VALUES (?)", val)
		return err
	}
}

func rowCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM test").Scan(&count); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return count
}

func TestBatchWriterTransactions(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()
	ctx := context.Background()

	bw := NewBatchWriter(db, 2)
	var commits []int
	bw.OnCommit = func(n int) { commits = append(commits, n) }

	for _, v := range []string{"A", "B", "C"} {
		if err := bw.Submit(ctx, insertVal(v)); err != nil {
			t.Fatalf("submit %s: %v", v, err)
		}
	}
	// A and B committed at capacity; C waits for Close.
	if got := rowCount(t, db); got != 2 {
		t.Fatalf("expected 2 rows before close, got %d", got)
	}
	if bw.Pending() != 1 {
		t.Fatalf("expected 1 pending write, got %d", bw.Pending())
	}

	if err := bw.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if got := rowCount(t, db); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}
	if fmt.Sprint(commits) != "[2 1]" {
		t.Fatalf("commits = %v, want [2 1]", commits)
	}
	if err := bw.Close(ctx); err != ErrBatchWriterClosed {
		t.Fatalf("second close: expected ErrBatchWriterClosed, got %v", err)
	}
	if err := bw.Submit(ctx, insertVal("D")); err != ErrBatchWriterClosed {
		t.Fatalf("submit after close: expected ErrBatchWriterClosed, got %v", err)
	}
}

func TestBatchWriterRollback(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()
	ctx := context.Background()

	bw := NewBatchWriter(db, 2)
	committed := false
	bw.OnCommit = func(int) { committed = true }

	// Batch of 2: First succeeds, second fails. Whole batch should roll back.
	if err := bw.Submit(ctx, insertVal("C")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	intentional := errors.New("intentional error")
	err := bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return intentional
	})
	if !errors.Is(err, intentional) {
		t.Fatalf("expected intentional error from flush, got %v", err)
	}
	if committed {
		t.Fatal("OnCommit called for a rolled back batch")
	}

	// Verify table is empty (rollback worked)
	if got := rowCount(t, db); got != 0 {
		t.Fatalf("expected 0 rows (rollback), got %d", got)
	}

	// The writer stays failed.
	if err := bw.Submit(ctx, insertVal("D")); !errors.Is(err, intentional) {
		t.Fatalf("submit after failure: got %v", err)
	}
	if err := bw.Close(ctx); !errors.Is(err, intentional) {
		t.Fatalf("close after failure: got %v", err)
	}
}

func TestBatchWriterFlushesBySize(t *testing.T) {
	ctx := context.Background()
	bw := NewBatchWriter(nil, 5)
	called := 0
	batches := 0
	bw.OnCommit = func(int) { batches++ }
	for i := 0; i < 12; i++ {
		if err := bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			called++
			return nil
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}
	if called != 10 {
		t.Fatalf("expected 10 calls before close, got %d", called)
	}
	if err := bw.Close(ctx); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if called != 12 || batches != 3 {
		t.Fatalf("expected 12 calls in 3 batches, got %d in %d", called, batches)
	}
}

func TestBatchWriterDiscard(t *testing.T) {
	ctx := context.Background()
	bw := NewBatchWriter(nil, 10)
	called := 0
	for i := 0; i < 3; i++ {
		bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			called++
			return nil
		})
	}
	if n := bw.Discard(); n != 3 {
		t.Fatalf("Discard() = %d, want 3", n)
	}
	if called != 0 {
		t.Fatalf("discarded writes ran %d times", called)
	}
	if err := bw.Submit(ctx, func(context.Context, *sql.Tx) error { return nil }); err != ErrBatchWriterClosed {
		t.Fatalf("submit after discard: got %v", err)
	}
}

func TestBatchWriterCanceledContext(t *testing.T) {
	db := openTestTable(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bw := NewBatchWriter(db, 1)
	if err := bw.Submit(ctx, insertVal("A")); err == nil {
		t.Fatal("expected error beginning a transaction with a canceled context")
	}
	if got := rowCount(t, db); got != 0 {
		t.Fatalf("expected 0 rows, got %d", got)
	}
}
