package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lysyi3m/raiplaysound-rss/app/feed"
)

// SQLPageRepository keeps the latest conversion outcome per feed.
type SQLPageRepository struct {
	db *DB
}

func NewPageRepository(db *DB) *SQLPageRepository {
	return &SQLPageRepository{db: db}
}

// RecordPage upserts the outcome of a conversion. A failed run keeps the
// title and type learned from earlier successful runs.
func (r *SQLPageRepository) RecordPage(run feed.PageRun) error {
	processedAt := run.ProcessedAt
	if processedAt.IsZero() {
		processedAt = time.Now().UTC()
	}

	var feedUpdatedAt sql.NullInt64
	if !run.FeedUpdatedAt.IsZero() {
		feedUpdatedAt = sql.NullInt64{Int64: run.FeedUpdatedAt.Unix(), Valid: true}
	}

	_, err := r.db.Exec(`
		INSERT INTO pages (name, url, title, page_type, item_count, status, error, last_processed_at, feed_updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO UPDATE SET
			url = excluded.url,
			title = CASE WHEN excluded.title != '' THEN excluded.title ELSE pages.title END,
			page_type = CASE WHEN excluded.page_type != '' THEN excluded.page_type ELSE pages.page_type END,
			item_count = excluded.item_count,
			status = excluded.status,
			error = excluded.error,
			last_processed_at = excluded.last_processed_at,
			feed_updated_at = COALESCE(excluded.feed_updated_at, pages.feed_updated_at)
	`, run.Name, run.URL, run.Title, run.PageType, run.ItemCount, run.Status, run.Error,
		processedAt.Unix(), feedUpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to record page %s: %w", run.Name, err)
	}

	return nil
}

func (r *SQLPageRepository) GetPage(name string) (*Page, error) {
	row := r.db.QueryRow(`
		SELECT name, url, title, page_type, item_count, status, error, last_processed_at, feed_updated_at
		FROM pages
		WHERE name = ?
	`, name)

	page, err := scanPage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	return page, nil
}

// ListPages returns every recorded page, most recently processed first.
func (r *SQLPageRepository) ListPages() ([]Page, error) {
	rows, err := r.db.Query(`
		SELECT name, url, title, page_type, item_count, status, error, last_processed_at, feed_updated_at
		FROM pages
		ORDER BY last_processed_at DESC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		pages = append(pages, *page)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pages: %w", err)
	}

	return pages, nil
}

func (r *SQLPageRepository) GetPageCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

func (r *SQLPageRepository) GetStatusCounts() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM pages GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count page statuses: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate status counts: %w", err)
	}

	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (*Page, error) {
	var page Page
	var processedAt int64
	var feedUpdatedAt sql.NullInt64

	err := row.Scan(&page.Name, &page.URL, &page.Title, &page.PageType, &page.ItemCount,
		&page.Status, &page.Error, &processedAt, &feedUpdatedAt)
	if err != nil {
		return nil, err
	}

	page.LastProcessedAt = time.Unix(processedAt, 0).UTC()
	if feedUpdatedAt.Valid {
		t := time.Unix(feedUpdatedAt.Int64, 0).UTC()
		page.FeedUpdatedAt = &t
	}

	return &page, nil
}
