package data

import (
	"testing"

	"github.com/slack-go/slack"
)

func TestMessageFromSlack(t *testing.T) {
	m := slack.Message{Msg: slack.Msg{
		User:      "U123",
		Timestamp: "1700000000.000100",
		Text:      "hi there",
	}}
	m.Files = []slack.File{
		{
			ID:                 "F1",
			Name:               "shot.png",
			Mimetype:           "image/png",
			URLPrivateDownload: "https://files.example/dl/F1",
			Size:               42,
		},
		{
			ID:         "F2",
			Name:       "notes.pdf",
			Mimetype:   "application/pdf",
			URLPrivate: "https://files.example/priv/F2",
		},
		{ID: "F3", Name: "no-url.bin"},
	}

	got := messageFromSlack("D100", m)
	if got.ConversationID != "D100" || got.SenderID != "U123" {
		t.Errorf("identity fields = %+v", got)
	}
	if string(got.TS) != "1700000000.000100" {
		t.Errorf("ts = %q", got.TS)
	}
	if got.Text != "hi there" {
		t.Errorf("text = %q", got.Text)
	}
	if len(got.Attachments) != 2 {
		t.Fatalf("attachments = %d, want 2 (no-URL file dropped)", len(got.Attachments))
	}
	if got.Attachments[0].DownloadURL != "https://files.example/dl/F1" {
		t.Errorf("first URL = %q, want download URL preferred", got.Attachments[0].DownloadURL)
	}
	if got.Attachments[1].DownloadURL != "https://files.example/priv/F2" {
		t.Errorf("second URL = %q, want private URL fallback", got.Attachments[1].DownloadURL)
	}
	if got.Attachments[0].Size != 42 {
		t.Errorf("size = %d", got.Attachments[0].Size)
	}
}

func TestMessageFromSlack_Subtype(t *testing.T) {
	m := slack.Message{Msg: slack.Msg{
		SubType:   "channel_join",
		Timestamp: "1700000001.000000",
	}}
	got := messageFromSlack("D100", m)
	if got.Subtype != "channel_join" {
		t.Errorf("subtype = %q", got.Subtype)
	}
	if !got.IsSystemEvent() {
		t.Error("channel_join should be a system event")
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *slack.User
		want string
	}{
		{
			name: "prefers normalized real name",
			user: &slack.User{
				Name:     "alice.w",
				RealName: "Alice Wong",
				Profile:  slack.UserProfile{RealNameNormalized: "Alice Wong N"},
			},
			want: "Alice Wong N",
		},
		{
			name: "falls back to real name",
			user: &slack.User{Name: "alice.w", RealName: "Alice Wong"},
			want: "Alice Wong",
		},
		{
			name: "falls back to handle",
			user: &slack.User{Name: "alice.w"},
			want: "alice.w",
		},
		{
			name: "nil user",
			user: nil,
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := displayName(tt.user); got != tt.want {
				t.Errorf("displayName = %q, want %q", got, tt.want)
			}
		})
	}
}
