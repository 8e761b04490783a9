package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/esemi/travian-manager/internal/models"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS raids (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id TEXT NOT NULL,
	list TEXT NOT NULL,
	tier TEXT NOT NULL,
	mask TEXT NOT NULL,
	x INTEGER NOT NULL,
	y INTEGER NOT NULL,
	escort INTEGER NOT NULL DEFAULT 0,
	sent_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS raids_sent_at ON raids(sent_at);
`

// fixed width so text order matches time order
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Journal is the SQLite raid journal
type Journal struct {
	db *sql.DB
}

// JournalFilter narrows History results
type JournalFilter struct {
	List  string
	Mask  string
	Since time.Time
	Limit int
}

// OpenJournal opens or creates the journal database at path
func OpenJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	// one writer; the run loop is single-threaded anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record appends one raid entry
func (j *Journal) Record(ctx context.Context, e models.RaidEntry) error {
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO raids (cycle_id, list, tier, mask, x, y, escort, sent_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CycleID, e.List, string(e.Tier), e.Mask, e.X, e.Y, e.Escort, e.SentAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to record raid: %w", err)
	}
	return nil
}

// History returns journal entries newest first
func (j *Journal) History(ctx context.Context, f JournalFilter) ([]models.RaidEntry, error) {
	query := `SELECT cycle_id, list, tier, mask, x, y, escort, sent_at FROM raids WHERE 1=1`
	var args []any
	if f.List != "" {
		query += ` AND list = ?`
		args = append(args, f.List)
	}
	if f.Mask != "" {
		query += ` AND mask = ?`
		args = append(args, f.Mask)
	}
	if !f.Since.IsZero() {
		query += ` AND sent_at >= ?`
		args = append(args, f.Since.UTC().Format(timeLayout))
	}
	query += ` ORDER BY sent_at DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []models.RaidEntry
	for rows.Next() {
		var (
			e      models.RaidEntry
			tier   string
			sentAt string
		)
		if err := rows.Scan(&e.CycleID, &e.List, &tier, &e.Mask, &e.X, &e.Y, &e.Escort, &sentAt); err != nil {
			return nil, fmt.Errorf("failed to read journal row: %w", err)
		}
		e.Tier = models.Tier(tier)
		e.SentAt, _ = time.Parse(timeLayout, sentAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByTier sums journal entries per tier since the given time
func (j *Journal) CountByTier(ctx context.Context, since time.Time) (map[models.Tier]int, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT tier, COUNT(*) FROM raids WHERE sent_at >= ? GROUP BY tier`,
		since.UTC().Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count raids: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Tier]int)
	for rows.Next() {
		var (
			tier string
			n    int
		)
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, err
		}
		counts[models.Tier(tier)] = n
	}
	return counts, rows.Err()
}
