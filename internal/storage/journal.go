package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// keepPerPage bounds how many drafts each page retains; older rows are
// trimmed opportunistically on append.
const keepPerPage = 20

// Draft is one journaled copy of a page's content.
type Draft struct {
	ID        int64
	Page      string
	Content   string
	CreatedAt time.Time
}

// Append journals a draft for page, trimming that page's history to
// the retention bound.
func (d *DB) Append(page, content string) error {
	if _, err := d.db.Exec(
		`INSERT INTO drafts (page, content) VALUES (?, ?)`, page, content,
	); err != nil {
		return fmt.Errorf("append draft for %s: %w", page, err)
	}
	if _, err := d.db.Exec(
		`DELETE FROM drafts WHERE page = ? AND id NOT IN (
			SELECT id FROM drafts WHERE page = ? ORDER BY id DESC LIMIT ?
		)`, page, page, keepPerPage,
	); err != nil {
		return fmt.Errorf("trim drafts for %s: %w", page, err)
	}
	return nil
}

// Latest returns the newest draft for page, or ok=false when none
// exists.
func (d *DB) Latest(page string) (Draft, bool, error) {
	var dr Draft
	// the driver hands DATETIME columns back as time.Time
	err := d.db.QueryRow(
		`SELECT id, page, content, created_at FROM drafts WHERE page = ? ORDER BY id DESC LIMIT 1`,
		page,
	).Scan(&dr.ID, &dr.Page, &dr.Content, &dr.CreatedAt)
	if err == sql.ErrNoRows {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, fmt.Errorf("load latest draft for %s: %w", page, err)
	}
	return dr, true, nil
}

// List returns a page's drafts, newest first.
func (d *DB) List(page string) ([]Draft, error) {
	rows, err := d.db.Query(
		`SELECT id, page, content, created_at FROM drafts WHERE page = ? ORDER BY id DESC`,
		page,
	)
	if err != nil {
		return nil, fmt.Errorf("list drafts for %s: %w", page, err)
	}
	defer rows.Close()
	var out []Draft
	for rows.Next() {
		var dr Draft
		if err := rows.Scan(&dr.ID, &dr.Page, &dr.Content, &dr.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

// Prune deletes drafts older than the cutoff across all pages and
// reports how many went.
func (d *DB) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format("2006-01-02 15:04:05")
	res, err := d.db.Exec(`DELETE FROM drafts WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune drafts: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Clear drops all drafts for page, typically after a confirmed save.
func (d *DB) Clear(page string) error {
	if _, err := d.db.Exec(`DELETE FROM drafts WHERE page = ?`, page); err != nil {
		return fmt.Errorf("clear drafts for %s: %w", page, err)
	}
	return nil
}
