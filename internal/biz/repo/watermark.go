package repo

import (
	"context"

	"slack-wa-relay/internal/biz/domain"
)

// WatermarkRepo persists per-conversation watermarks (SQLite), so a restart
// can resume from the last processed message instead of re-seeding to "now".
// Optional: when absent, watermarks are purely in-memory.
type WatermarkRepo interface {
	// LoadAll returns every persisted watermark.
	LoadAll(ctx context.Context) (map[string]domain.Timestamp, error)

	// Save upserts the watermark for a conversation.
	Save(ctx context.Context, conversationID string, ts domain.Timestamp) error

	Close() error
}
