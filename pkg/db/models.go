package db

import "time"

// Item is a film, product or page that comments belong to.
type Item struct {
	ID      int64
	Title   string
	AddedAt time.Time
}

// Comment is one stored review comment.
type Comment struct {
	ID      int64
	ItemID  int64
	Content string
	AddedAt time.Time
}

// ItemSummary is an item together with its number of stored comments.
type ItemSummary struct {
	Item
	CommentCount int
}
