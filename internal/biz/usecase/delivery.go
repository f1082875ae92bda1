package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
)

// DeliveryConfig contains delivery configuration.
type DeliveryConfig struct {
	// Destinations is the fan-out set of destination phone numbers.
	Destinations []string

	// SessionSettleDelay is the pause between sending the handshake template
	// and retrying the original payload, giving the platform time to register
	// the new session window.
	SessionSettleDelay time.Duration
}

// DefaultSessionSettleDelay mirrors the platform's observed settle time.
const DefaultSessionSettleDelay = 1200 * time.Millisecond

// Delivery wraps the destination repository with session-expiry recovery and
// fan-out semantics.
type Delivery struct {
	dest  repo.DestinationRepo
	cfg   DeliveryConfig
	log   zerolog.Logger
	sleep func(time.Duration)
}

// NewDelivery creates a delivery usecase.
func NewDelivery(dest repo.DestinationRepo, cfg DeliveryConfig, log zerolog.Logger) *Delivery {
	if cfg.SessionSettleDelay <= 0 {
		cfg.SessionSettleDelay = DefaultSessionSettleDelay
	}
	return &Delivery{
		dest:  dest,
		cfg:   cfg,
		log:   log.With().Str("component", "delivery").Logger(),
		sleep: time.Sleep,
	}
}

// SendTextResilient sends a text body; on a session-expired failure it sends
// the handshake template, waits for the session to settle, and retries the
// text exactly once. Any other failure, or a second failure after the
// handshake, propagates to the caller.
func (d *Delivery) SendTextResilient(ctx context.Context, to, body string) error {
	err := d.dest.SendText(ctx, to, body)
	if !repo.IsSessionExpired(err) {
		return err
	}
	if err := d.reopenSession(ctx, to); err != nil {
		return err
	}
	return d.dest.SendText(ctx, to, body)
}

// SendMediaResilient uploads the payload, then sends it as an image or
// document (selected by MIME-type prefix) with a caption derived from
// header. Session-expired failures get the same handshake-and-retry cycle
// as text; the upload is not repeated on retry.
func (d *Delivery) SendMediaResilient(ctx context.Context, to, header string, data []byte, filename, mimeType string) error {
	mediaID, err := d.dest.UploadMedia(ctx, data, filename, mimeType)
	if err != nil {
		return err
	}
	caption := domain.Truncate(header, domain.MaxCaptionLen)

	err = d.sendMediaOnce(ctx, to, mediaID, filename, caption, mimeType)
	if !repo.IsSessionExpired(err) {
		return err
	}
	if err := d.reopenSession(ctx, to); err != nil {
		return err
	}
	return d.sendMediaOnce(ctx, to, mediaID, filename, caption, mimeType)
}

func (d *Delivery) sendMediaOnce(ctx context.Context, to, mediaID, filename, caption, mimeType string) error {
	if strings.HasPrefix(mimeType, "image/") {
		return d.dest.SendImage(ctx, to, mediaID, caption)
	}
	return d.dest.SendDocument(ctx, to, mediaID, filename, caption)
}

func (d *Delivery) reopenSession(ctx context.Context, to string) error {
	d.log.Info().Str("to", to).Msg("session expired, sending handshake template")
	if err := d.dest.SendTemplate(ctx, to); err != nil {
		return err
	}
	d.sleep(d.cfg.SessionSettleDelay)
	return nil
}

// BroadcastText attempts resilient text delivery to every destination
// independently and reports whether at least one succeeded. Per-destination
// failures are logged, never raised.
func (d *Delivery) BroadcastText(ctx context.Context, body string) bool {
	delivered := false
	for _, to := range d.cfg.Destinations {
		if err := d.SendTextResilient(ctx, to, body); err != nil {
			d.log.Error().Err(err).Str("to", to).Msg("text delivery failed")
			continue
		}
		delivered = true
	}
	return delivered
}

// BroadcastMedia is BroadcastText for binary payloads.
func (d *Delivery) BroadcastMedia(ctx context.Context, header string, data []byte, filename, mimeType string) bool {
	delivered := false
	for _, to := range d.cfg.Destinations {
		if err := d.SendMediaResilient(ctx, to, header, data, filename, mimeType); err != nil {
			d.log.Error().Err(err).Str("to", to).Str("file", filename).Msg("media delivery failed")
			continue
		}
		delivered = true
	}
	return delivered
}
