// Package ingest imports corpus records into the comment store.
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/japaniel/semnet/pkg/corpus"
	"github.com/japaniel/semnet/pkg/db"
)

// Importer writes comments into the database in transactional batches.
type Importer struct {
	DB        *sql.DB
	BatchSize int
	// DefaultItem labels records whose Item is empty. If it is also empty
	// such records are rejected.
	DefaultItem string
	// Logger is used for informational messages. nil means no logging.
	Logger *slog.Logger
	// OnProgress is called after each committed batch with the number of
	// processed records and the total.
	OnProgress func(current, total int)
}

// NewImporter creates a new Importer.
func NewImporter(conn *sql.DB) *Importer {
	return &Importer{
		DB:        conn,
		BatchSize: 100,
	}
}

// Result summarizes an import.
type Result struct {
	// Inserted counts newly stored comments.
	Inserted int
	// Duplicates counts comments the item already had.
	Duplicates int
	// Empty counts records without any text, which are not stored.
	Empty int
	// Items counts the distinct items touched.
	Items int
}

// Import stores records. Items are created on first use. Context
// cancellation is checked between records; batches already committed stay
// committed and are reflected in the returned Result.
func (im *Importer) Import(ctx context.Context, records []corpus.Record) (Result, error) {
	var res Result
	if err := ctx.Err(); err != nil {
		return res, err
	}

	itemIDs, err := im.resolveItems(records)
	if err != nil {
		return res, err
	}
	res.Items = len(itemIDs)

	// pending is folded into res when its batch commits.
	var pending Result
	processed, reported := 0, 0
	bw := NewBatchWriter(im.DB, im.BatchSize)
	bw.OnCommit = func(n int) {
		res.Inserted += pending.Inserted
		res.Duplicates += pending.Duplicates
		pending = Result{}
		if im.OnProgress != nil {
			im.OnProgress(processed, len(records))
			reported = processed
		}
	}

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			dropped := bw.Discard()
			im.logf("import canceled", "committed", res.Inserted, "dropped", dropped)
			return res, err
		}
		processed++

		content := strings.TrimSpace(r.Content)
		if content == "" {
			res.Empty++
			continue
		}
		itemID := itemIDs[im.itemTitle(r)]

		err := bw.Submit(ctx, func(ctx context.Context, tx *sql.Tx) error {
			added, err := db.InsertComment(tx, itemID, content)
			if err != nil {
				return err
			}
			if added {
				pending.Inserted++
			} else {
				pending.Duplicates++
			}
			return nil
		})
		if err != nil {
			bw.Discard()
			return res, fmt.Errorf("import comments: %w", err)
		}
	}

	if err := bw.Close(ctx); err != nil {
		return res, fmt.Errorf("import comments: %w", err)
	}
	if im.OnProgress != nil && reported != len(records) {
		im.OnProgress(len(records), len(records))
	}
	if res.Empty > 0 {
		im.warnf("skipped records without text", "count", res.Empty)
	}
	im.logf("import complete",
		"items", res.Items,
		"inserted", res.Inserted,
		"duplicates", res.Duplicates,
	)
	return res, nil
}

func (im *Importer) itemTitle(r corpus.Record) string {
	if t := strings.TrimSpace(r.Item); t != "" {
		return t
	}
	return strings.TrimSpace(im.DefaultItem)
}

// resolveItems creates every item referenced by records with text.
func (im *Importer) resolveItems(records []corpus.Record) (map[string]int64, error) {
	ids := make(map[string]int64)
	for i, r := range records {
		if strings.TrimSpace(r.Content) == "" {
			continue
		}
		title := im.itemTitle(r)
		if title == "" {
			return nil, fmt.Errorf("record %d has no item and no default item is set", i)
		}
		if _, ok := ids[title]; ok {
			continue
		}
		id, err := db.CreateOrGetItem(im.DB, title)
		if err != nil {
			return nil, fmt.Errorf("failed to persist item %q: %w", title, err)
		}
		ids[title] = id
	}
	return ids, nil
}

func (im *Importer) logf(msg string, args ...any) {
	if im.Logger != nil {
		im.Logger.Info(msg, args...)
	}
}

func (im *Importer) warnf(msg string, args ...any) {
	if im.Logger != nil {
		im.Logger.Warn(msg, args...)
	}
}
