package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrItemNotFound is returned when no item has the requested title.
var ErrItemNotFound = errors.New("item not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// CreateOrGetItem returns the id of the item with title, inserting it if needed.
func CreateOrGetItem(db DBExecutor, title string) (int64, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return 0, fmt.Errorf("item title must be non-empty")
	}

	const maxRetries = 3

	var id int64
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := db.QueryRow(`SELECT id FROM items WHERE title = ?`, trimmed).Scan(&id)
		if err == nil {
			return id, nil
		}
		if err != sql.ErrNoRows {
			return 0, err
		}

		res, err := db.Exec(`INSERT INTO items (title) VALUES (?)`, trimmed)
		if err != nil {
			// Another writer inserted the same title; look it up again.
			if isUniqueConstraintErr(err) {
				continue
			}
			return 0, err
		}
		return res.LastInsertId()
	}

	return 0, fmt.Errorf("could not create or get item after %d retries", maxRetries)
}

// InsertComment stores content under itemID. It reports false when the item
// already has an identical comment.
func InsertComment(db DBExecutor, itemID int64, content string) (bool, error) {
	if itemID <= 0 {
		return false, fmt.Errorf("itemID must be positive")
	}
	res, err := db.Exec(`INSERT OR IGNORE INTO comments (item_id, content) VALUES (?, ?)`, itemID, content)
	if err != nil {
		return false, fmt.Errorf("insert comment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CommentsForItem returns the comment texts of an item in insertion order.
func CommentsForItem(db DBExecutor, itemID int64) ([]string, error) {
	rows, err := db.Query(`SELECT content FROM comments WHERE item_id = ? ORDER BY id`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AllComments returns every stored comment ordered by item, then insertion.
func AllComments(db DBExecutor) ([]string, error) {
	rows, err := db.Query(`SELECT content FROM comments ORDER BY item_id, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetItemByTitle looks an item up by its exact title.
func GetItemByTitle(db DBExecutor, title string) (Item, error) {
	var it Item
	err := db.QueryRow(`SELECT id, title, added_at FROM items WHERE title = ?`, strings.TrimSpace(title)).
		Scan(&it.ID, &it.Title, &it.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Item{}, fmt.Errorf("%w: %q", ErrItemNotFound, title)
	}
	if err != nil {
		return Item{}, err
	}
	return it, nil
}

// ListItems returns every item with its comment count, ordered by title.
func ListItems(db DBExecutor) ([]ItemSummary, error) {
	rows, err := db.Query(`SELECT i.id, i.title, i.added_at, COUNT(c.id)
		FROM items i LEFT JOIN comments c ON c.item_id = i.id
		GROUP BY i.id
		ORDER BY i.title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ItemSummary
	for rows.Next() {
		var s ItemSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.AddedAt, &s.CommentCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
