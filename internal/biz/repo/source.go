package repo

import (
	"context"

	"slack-wa-relay/internal/biz/domain"
)

// SourceRepo is the source-platform repository interface.
// Responsible for reading conversations and messages from the Slack Web API.
type SourceRepo interface {
	// ListDirectConversations enumerates all direct and group-direct
	// conversations visible to the configured identity, paginating until
	// exhausted.
	ListDirectConversations(ctx context.Context) ([]domain.Conversation, error)

	// LatestTimestamp returns the timestamp of the most recent message in a
	// conversation, or the zero timestamp if it has no history. Used only to
	// seed watermarks at bootstrap.
	LatestTimestamp(ctx context.Context, conversationID string) (domain.Timestamp, error)

	// FetchSince returns new messages strictly after the given timestamp,
	// capped at one page. Ordering is not guaranteed; callers sort.
	FetchSince(ctx context.Context, conversationID string, since domain.Timestamp) ([]domain.Message, error)

	// SelfID returns the user ID of the authenticated identity, used to
	// recognize self-authored messages.
	SelfID(ctx context.Context) (string, error)

	// DownloadAttachment fetches the attachment bytes using the polling
	// credential.
	DownloadAttachment(ctx context.Context, att domain.Attachment) ([]byte, error)
}

// UserRepo resolves user identifiers to display names.
type UserRepo interface {
	GetUserName(ctx context.Context, userID string) (string, error)
}
