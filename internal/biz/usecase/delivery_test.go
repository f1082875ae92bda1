package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
)

// mockDest scripts per-call failures and records every operation.
type mockDest struct {
	// textErrs[to] is consumed one error per SendText call; nil means success.
	textErrs  map[string][]error
	mediaErrs []error // consumed one per image/document send
	uploadErr error

	texts     []string // "to|body"
	templates []string
	images    []string // "to|mediaID|caption"
	documents []string // "to|mediaID|filename|caption"
	uploads   int
}

func (m *mockDest) SendText(ctx context.Context, to, body string) error {
	if errs := m.textErrs[to]; len(errs) > 0 {
		err := errs[0]
		m.textErrs[to] = errs[1:]
		if err != nil {
			return err
		}
	}
	m.texts = append(m.texts, to+"|"+body)
	return nil
}

func (m *mockDest) UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.uploads++
	return fmt.Sprintf("media-%d", m.uploads), nil
}

func (m *mockDest) nextMediaErr() error {
	if len(m.mediaErrs) == 0 {
		return nil
	}
	err := m.mediaErrs[0]
	m.mediaErrs = m.mediaErrs[1:]
	return err
}

func (m *mockDest) SendImage(ctx context.Context, to, mediaID, caption string) error {
	if err := m.nextMediaErr(); err != nil {
		return err
	}
	m.images = append(m.images, to+"|"+mediaID+"|"+caption)
	return nil
}

func (m *mockDest) SendDocument(ctx context.Context, to, mediaID, filename, caption string) error {
	if err := m.nextMediaErr(); err != nil {
		return err
	}
	m.documents = append(m.documents, to+"|"+mediaID+"|"+filename+"|"+caption)
	return nil
}

func (m *mockDest) SendTemplate(ctx context.Context, to string) error {
	m.templates = append(m.templates, to)
	return nil
}

func sessionExpiredErr() error {
	return &repo.SendError{StatusCode: 400, Code: repo.ErrCodeReengagement, Body: "re-engagement required"}
}

func newTestDelivery(dest *mockDest, destinations ...string) (*Delivery, *[]time.Duration) {
	d := NewDelivery(dest, DeliveryConfig{Destinations: destinations}, zerolog.Nop())
	var sleeps []time.Duration
	d.sleep = func(dur time.Duration) { sleeps = append(sleeps, dur) }
	return d, &sleeps
}

func TestSendTextResilient_SessionRecovery(t *testing.T) {
	dest := &mockDest{textErrs: map[string][]error{"5511999": {sessionExpiredErr(), nil}}}
	d, sleeps := newTestDelivery(dest, "5511999")

	if err := d.SendTextResilient(context.Background(), "5511999", "hello"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(dest.templates) != 1 {
		t.Errorf("Expected exactly one handshake, got %d", len(dest.templates))
	}
	if len(dest.texts) != 1 {
		t.Errorf("Expected exactly one delivered text, got %d", len(dest.texts))
	}
	if len(*sleeps) != 1 || (*sleeps)[0] != DefaultSessionSettleDelay {
		t.Errorf("Expected one settle pause of %v, got %v", DefaultSessionSettleDelay, *sleeps)
	}
}

func TestSendTextResilient_RetryFailureSurfacesNewError(t *testing.T) {
	retryErr := &repo.SendError{StatusCode: 500, Code: 1, Body: "server error"}
	dest := &mockDest{textErrs: map[string][]error{"5511999": {sessionExpiredErr(), retryErr}}}
	d, _ := newTestDelivery(dest, "5511999")

	err := d.SendTextResilient(context.Background(), "5511999", "hello")
	var se *repo.SendError
	if !errors.As(err, &se) || se.Code != 1 {
		t.Fatalf("Expected the retry's error to surface, got %v", err)
	}
	if len(dest.templates) != 1 {
		t.Errorf("Expected exactly one handshake, got %d", len(dest.templates))
	}
}

func TestSendTextResilient_OtherErrorsSkipHandshake(t *testing.T) {
	sendErr := &repo.SendError{StatusCode: 401, Code: 190, Body: "invalid token"}
	dest := &mockDest{textErrs: map[string][]error{"5511999": {sendErr}}}
	d, _ := newTestDelivery(dest, "5511999")

	if err := d.SendTextResilient(context.Background(), "5511999", "hello"); !errors.Is(err, sendErr) {
		t.Fatalf("Expected the original error, got %v", err)
	}
	if len(dest.templates) != 0 {
		t.Errorf("Expected no handshake for non-session errors, got %d", len(dest.templates))
	}
}

func TestSendMediaResilient_MimeRouting(t *testing.T) {
	dest := &mockDest{}
	d, _ := newTestDelivery(dest, "5511999")

	if err := d.SendMediaResilient(context.Background(), "5511999", "header", []byte("png"), "pic.png", "image/png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := d.SendMediaResilient(context.Background(), "5511999", "header", []byte("pdf"), "doc.pdf", "application/pdf"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(dest.images) != 1 || len(dest.documents) != 1 {
		t.Errorf("Expected 1 image and 1 document, got %d and %d", len(dest.images), len(dest.documents))
	}
}

func TestSendMediaResilient_UploadsOnceOnRetry(t *testing.T) {
	// First image send fails with session expiry, the retry succeeds. The
	// payload must not be uploaded a second time.
	dest := &mockDest{mediaErrs: []error{sessionExpiredErr()}}
	d, _ := newTestDelivery(dest, "5511999")

	if err := d.SendMediaResilient(context.Background(), "5511999", "header", []byte("png"), "pic.png", "image/png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if dest.uploads != 1 {
		t.Errorf("Expected a single upload, got %d", dest.uploads)
	}
	if len(dest.templates) != 1 {
		t.Errorf("Expected exactly one handshake, got %d", len(dest.templates))
	}
	if len(dest.images) != 1 {
		t.Errorf("Expected the image delivered on retry, got %d", len(dest.images))
	}
}

func TestSendMediaResilient_CaptionTruncated(t *testing.T) {
	dest := &mockDest{}
	d, _ := newTestDelivery(dest, "5511999")

	header := strings.Repeat("h", 2*domain.MaxCaptionLen)
	if err := d.SendMediaResilient(context.Background(), "5511999", header, []byte("png"), "pic.png", "image/png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	caption := strings.SplitN(dest.images[0], "|", 3)[2]
	if len([]rune(caption)) != domain.MaxCaptionLen {
		t.Errorf("Expected caption truncated to %d runes, got %d", domain.MaxCaptionLen, len([]rune(caption)))
	}
}

func TestSendMediaResilient_UploadFailure(t *testing.T) {
	dest := &mockDest{uploadErr: fmt.Errorf("%w: status 500", repo.ErrUploadFailed)}
	d, _ := newTestDelivery(dest, "5511999")

	err := d.SendMediaResilient(context.Background(), "5511999", "header", []byte("png"), "pic.png", "image/png")
	if !errors.Is(err, repo.ErrUploadFailed) {
		t.Fatalf("Expected upload failure, got %v", err)
	}
	if len(dest.images)+len(dest.documents) != 0 {
		t.Error("Expected no send after a failed upload")
	}
}

func TestBroadcastText_PartialSuccess(t *testing.T) {
	failure := &repo.SendError{StatusCode: 500, Code: 1, Body: "boom"}
	dest := &mockDest{textErrs: map[string][]error{
		"1111": {failure},
		"3333": {failure},
	}}
	d, _ := newTestDelivery(dest, "1111", "2222", "3333")

	if !d.BroadcastText(context.Background(), "hello") {
		t.Error("Expected delivery to count as successful with one destination reached")
	}
	if len(dest.texts) != 1 || !strings.HasPrefix(dest.texts[0], "2222|") {
		t.Errorf("Expected only 2222 reached, got %v", dest.texts)
	}
}

func TestBroadcastText_AllFail(t *testing.T) {
	failure := &repo.SendError{StatusCode: 500, Code: 1, Body: "boom"}
	dest := &mockDest{textErrs: map[string][]error{
		"1111": {failure},
		"2222": {failure},
	}}
	d, _ := newTestDelivery(dest, "1111", "2222")

	if d.BroadcastText(context.Background(), "hello") {
		t.Error("Expected failure when no destination is reached")
	}
}
