package repo

import (
	"context"
	"errors"
	"fmt"
)

// WhatsApp Cloud API error codes indicating that no 24-hour conversation
// window is open with the recipient.
const (
	ErrCodeReengagement  = 131047
	ErrCodeOutsideWindow = 131051
)

// ErrUploadFailed marks media upload failures.
var ErrUploadFailed = errors.New("media upload failed")

// SendError is a failed send reported by the destination platform.
type SendError struct {
	StatusCode int    // HTTP status
	Code       int    // platform error code
	Body       string // raw response body, for diagnostics
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send failed: status %d, code %d: %s", e.StatusCode, e.Code, e.Body)
}

// SessionExpired reports whether the error indicates an expired
// conversational session window.
func (e *SendError) SessionExpired() bool {
	return e.Code == ErrCodeReengagement || e.Code == ErrCodeOutsideWindow
}

// IsSessionExpired reports whether err is a SendError carrying one of the
// session-expired codes.
func IsSessionExpired(err error) bool {
	var se *SendError
	return errors.As(err, &se) && se.SessionExpired()
}

// DestinationRepo is the destination-platform repository interface.
// Responsible for delivering payloads via the WhatsApp Cloud API.
type DestinationRepo interface {
	// SendText delivers a plain text body.
	SendText(ctx context.Context, to, body string) error

	// UploadMedia uploads a binary payload and returns the opaque media
	// handle consumed by SendImage/SendDocument. Failures wrap
	// ErrUploadFailed.
	UploadMedia(ctx context.Context, data []byte, filename, mimeType string) (string, error)

	// SendImage delivers a previously uploaded image with a caption.
	SendImage(ctx context.Context, to, mediaID, caption string) error

	// SendDocument delivers a previously uploaded document with a caption.
	SendDocument(ctx context.Context, to, mediaID, filename, caption string) error

	// SendTemplate sends the pre-approved handshake template, the only
	// message type deliverable outside an active session window.
	SendTemplate(ctx context.Context, to string) error
}
