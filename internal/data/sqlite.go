package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
)

// WatermarkDB persists per-conversation watermarks in SQLite.
type WatermarkDB struct {
	db *sql.DB
}

// NewWatermarkDB opens (creating if needed) the watermark database at dbPath.
func NewWatermarkDB(dbPath string) (*WatermarkDB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS watermarks (
			conversation_id TEXT PRIMARY KEY,
			last_ts TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &WatermarkDB{db: db}, nil
}

// LoadAll returns every persisted watermark keyed by conversation ID.
func (w *WatermarkDB) LoadAll(ctx context.Context) (map[string]domain.Timestamp, error) {
	rows, err := w.db.QueryContext(ctx, `
		SELECT conversation_id, last_ts FROM watermarks
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load watermarks: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.Timestamp)
	for rows.Next() {
		var id, ts string
		if err := rows.Scan(&id, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan watermark: %w", err)
		}
		result[id] = domain.Timestamp(ts)
	}
	return result, rows.Err()
}

// Save upserts the watermark for a conversation.
func (w *WatermarkDB) Save(ctx context.Context, conversationID string, ts domain.Timestamp) error {
	_, err := w.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO watermarks (conversation_id, last_ts, updated_at)
		VALUES (?, ?, ?)
	`, conversationID, string(ts), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save watermark: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (w *WatermarkDB) Close() error {
	return w.db.Close()
}

var _ repo.WatermarkRepo = (*WatermarkDB)(nil)
