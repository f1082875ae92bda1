package data

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/slack-go/slack"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
)

const defaultPageSize = 200

// SlackRepo implements repo.SourceRepo and repo.UserRepo on top of the Slack
// Web API, polled with a user token.
type SlackRepo struct {
	client   *slack.Client
	token    string // needed for raw attachment downloads
	http     *http.Client
	pageSize int
}

// NewSlackRepo creates a Slack repository. pageSize caps how many messages a
// single FetchSince call returns; zero applies the default.
func NewSlackRepo(client *slack.Client, token string, pageSize int) *SlackRepo {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &SlackRepo{
		client:   client,
		token:    token,
		http:     &http.Client{Timeout: 60 * time.Second},
		pageSize: pageSize,
	}
}

// ListDirectConversations enumerates im and mpim conversations, paginating
// until the cursor is exhausted.
func (r *SlackRepo) ListDirectConversations(ctx context.Context) ([]domain.Conversation, error) {
	var result []domain.Conversation
	cursor := ""
	for {
		channels, next, err := r.client.GetConversationsContext(ctx, &slack.GetConversationsParameters{
			Types:  []string{"im", "mpim"},
			Limit:  1000,
			Cursor: cursor,
		})
		if err != nil {
			return nil, fmt.Errorf("conversations.list: %w", err)
		}
		for _, ch := range channels {
			result = append(result, domain.Conversation{ID: ch.ID, IsGroup: ch.IsMpIM})
		}
		if next == "" {
			return result, nil
		}
		cursor = next
	}
}

// LatestTimestamp returns the timestamp of the newest message in the
// conversation, or the zero timestamp when it has no history.
func (r *SlackRepo) LatestTimestamp(ctx context.Context, conversationID string) (domain.Timestamp, error) {
	resp, err := r.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: conversationID,
		Limit:     1,
	})
	if err != nil {
		return "", fmt.Errorf("conversations.history: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", nil
	}
	return domain.Timestamp(resp.Messages[0].Timestamp), nil
}

// FetchSince returns one page of messages strictly newer than since.
func (r *SlackRepo) FetchSince(ctx context.Context, conversationID string, since domain.Timestamp) ([]domain.Message, error) {
	resp, err := r.client.GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: conversationID,
		Oldest:    string(since),
		Inclusive: false,
		Limit:     r.pageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("conversations.history: %w", err)
	}
	var result []domain.Message
	for _, m := range resp.Messages {
		result = append(result, messageFromSlack(conversationID, m))
	}
	return result, nil
}

// SelfID resolves the authenticated user via auth.test.
func (r *SlackRepo) SelfID(ctx context.Context) (string, error) {
	resp, err := r.client.AuthTestContext(ctx)
	if err != nil {
		return "", fmt.Errorf("auth.test: %w", err)
	}
	return resp.UserID, nil
}

// GetUserName resolves a user ID to the best available display name.
func (r *SlackRepo) GetUserName(ctx context.Context, userID string) (string, error) {
	user, err := r.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("users.info: %w", err)
	}
	return displayName(user), nil
}

func displayName(u *slack.User) string {
	if u == nil {
		return ""
	}
	if u.Profile.RealNameNormalized != "" {
		return u.Profile.RealNameNormalized
	}
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}

// DownloadAttachment fetches the file bytes from the private download URL
// using the polling credential.
func (r *SlackRepo) DownloadAttachment(ctx context.Context, att domain.Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.DownloadURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", att.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %d", att.Name, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// messageFromSlack maps a Slack API message onto the domain model. Files
// without any usable URL are dropped.
func messageFromSlack(conversationID string, m slack.Message) domain.Message {
	msg := domain.Message{
		ConversationID: conversationID,
		SenderID:       m.User,
		TS:             domain.Timestamp(m.Timestamp),
		Subtype:        m.SubType,
		Text:           m.Text,
	}
	for _, f := range m.Files {
		url := f.URLPrivateDownload
		if url == "" {
			url = f.URLPrivate
		}
		if url == "" {
			url = f.Permalink
		}
		if url == "" {
			continue
		}
		msg.Attachments = append(msg.Attachments, domain.Attachment{
			ID:          f.ID,
			Name:        f.Name,
			MimeType:    f.Mimetype,
			DownloadURL: url,
			Size:        f.Size,
		})
	}
	return msg
}

var (
	_ repo.SourceRepo = (*SlackRepo)(nil)
	_ repo.UserRepo   = (*SlackRepo)(nil)
)
