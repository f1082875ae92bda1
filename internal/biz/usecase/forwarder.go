package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"slack-wa-relay/internal/biz/domain"
	"slack-wa-relay/internal/biz/repo"
)

// ForwarderConfig contains forwarding policy configuration.
type ForwarderConfig struct {
	// ForwardSelf forwards messages authored by the monitored identity.
	ForwardSelf bool

	// SeenRetention bounds the dedup set: entries older than this are pruned
	// each tick. Must comfortably exceed the poll-overlap window.
	SeenRetention time.Duration

	// Format is the wording used for headers and digests.
	Format domain.Format
}

// DefaultSeenRetention keeps dedup entries for a day.
const DefaultSeenRetention = 24 * time.Hour

// disposition classifies a fetched message before any network call.
type disposition int

const (
	dispositionForward disposition = iota
	dispositionDuplicate
	dispositionSystemEvent
	dispositionSelf
)

func (d disposition) String() string {
	switch d {
	case dispositionForward:
		return "forward"
	case dispositionDuplicate:
		return "duplicate"
	case dispositionSystemEvent:
		return "system_event"
	case dispositionSelf:
		return "self"
	}
	return "unknown"
}

// Forwarder is the top-level polling orchestrator. Bootstrap enumerates
// conversations and seeds watermarks; each Tick polls every conversation,
// classifies new messages, consults the cooldown gate and either forwards or
// records suppression, then flushes due digests. All state is owned by the
// forwarder and mutated only from the tick loop.
type Forwarder struct {
	source   repo.SourceRepo
	names    *NameResolver
	delivery *Delivery

	marks *domain.WatermarkStore
	seen  *domain.SeenSet
	gate  *domain.CooldownGate

	store    repo.WatermarkRepo   // optional durable watermarks
	rewriter repo.SummaryRewriter // optional digest polish

	cfg           ForwarderConfig
	selfID        string
	conversations []domain.Conversation

	log zerolog.Logger
	now func() time.Time
}

// NewForwarder creates a forwarder. store and rewriter may be nil.
func NewForwarder(
	source repo.SourceRepo,
	names *NameResolver,
	delivery *Delivery,
	gate *domain.CooldownGate,
	store repo.WatermarkRepo,
	rewriter repo.SummaryRewriter,
	cfg ForwarderConfig,
	log zerolog.Logger,
) *Forwarder {
	if cfg.SeenRetention <= 0 {
		cfg.SeenRetention = DefaultSeenRetention
	}
	return &Forwarder{
		source:   source,
		names:    names,
		delivery: delivery,
		marks:    domain.NewWatermarkStore(),
		seen:     domain.NewSeenSet(),
		gate:     gate,
		store:    store,
		rewriter: rewriter,
		cfg:      cfg,
		log:      log.With().Str("component", "forwarder").Logger(),
		now:      time.Now,
	}
}

// Bootstrap resolves the monitored identity, enumerates conversations and
// seeds each watermark to the most recent existing message, so history from
// before startup is never forwarded. Persisted watermarks, when available,
// take precedence and let the relay resume across restarts.
func (f *Forwarder) Bootstrap(ctx context.Context) error {
	selfID, err := f.source.SelfID(ctx)
	if err != nil {
		return fmt.Errorf("resolve self identity: %w", err)
	}
	f.selfID = selfID

	conversations, err := f.source.ListDirectConversations(ctx)
	if err != nil {
		return fmt.Errorf("list conversations: %w", err)
	}
	f.conversations = conversations

	var persisted map[string]domain.Timestamp
	if f.store != nil {
		persisted, err = f.store.LoadAll(ctx)
		if err != nil {
			f.log.Error().Err(err).Msg("loading persisted watermarks failed, seeding from history")
		}
	}

	for _, conv := range conversations {
		ts, ok := persisted[conv.ID]
		if !ok {
			ts, err = f.source.LatestTimestamp(ctx, conv.ID)
			if err != nil {
				return fmt.Errorf("seed watermark for %s: %w", conv.ID, err)
			}
			if ts == "" {
				ts = domain.TimestampFromTime(f.now())
			}
		}
		f.marks.Initialize(conv.ID, ts)
		f.gate.Init(conv.ID)
	}

	f.log.Info().
		Int("conversations", len(conversations)).
		Bool("forward_self", f.cfg.ForwardSelf).
		Msg("monitoring conversations")
	return nil
}

// Tick polls every conversation once, sequentially. A failure in one
// conversation is logged and does not abort the tick for the others.
func (f *Forwarder) Tick(ctx context.Context) {
	for _, conv := range f.conversations {
		if err := f.processConversation(ctx, conv); err != nil {
			f.log.Error().Err(err).Str("conversation", conv.ID).Msg("poll failed")
		}
	}
	if pruned := f.seen.Prune(f.now().Add(-f.cfg.SeenRetention)); pruned > 0 {
		f.log.Debug().Int("pruned", pruned).Msg("pruned dedup entries")
	}
}

func (f *Forwarder) processConversation(ctx context.Context, conv domain.Conversation) error {
	since := f.marks.Get(conv.ID)
	messages, err := f.source.FetchSince(ctx, conv.ID, since)
	if err != nil {
		// Watermark untouched: affected messages are retried next tick.
		return fmt.Errorf("fetch since %s: %w", since, err)
	}

	// API ordering is not trusted.
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].TS.Before(messages[j].TS)
	})

	for i := range messages {
		f.processMessage(ctx, conv, &messages[i])
	}

	f.flushDigest(ctx, conv.ID)
	return nil
}

// classify decides what happens to a fetched message. Marking the dedup set
// happens here, so discarded messages are also recorded as seen.
func (f *Forwarder) classify(msg *domain.Message) disposition {
	if !f.seen.MarkIfNew(msg.ConversationID, msg.TS) {
		return dispositionDuplicate
	}
	if msg.IsSystemEvent() {
		return dispositionSystemEvent
	}
	if !f.cfg.ForwardSelf && msg.IsFrom(f.selfID) {
		return dispositionSelf
	}
	return dispositionForward
}

func (f *Forwarder) processMessage(ctx context.Context, conv domain.Conversation, msg *domain.Message) {
	// The watermark advances whatever happens below: suppressed and
	// discarded messages are processed too.
	defer f.advance(ctx, conv.ID, msg.TS)

	if disp := f.classify(msg); disp != dispositionForward {
		f.log.Debug().
			Str("conversation", conv.ID).
			Str("ts", string(msg.TS)).
			Str("reason", disp.String()).
			Msg("discarding message")
		return
	}

	sender := f.cfg.Format.UnknownSender
	if msg.SenderID != "" {
		sender = f.names.Resolve(ctx, msg.SenderID)
	}
	header := f.cfg.Format.HeaderLine(sender, msg.TS)
	preview := msg.Preview()

	if f.gate.InCooldown(conv.ID) {
		if preview != "" {
			f.gate.RecordSuppressed(conv.ID, sender, preview, msg.TS, 0)
		}
		if len(msg.Attachments) > 0 {
			f.gate.RecordSuppressed(conv.ID, sender, preview, msg.TS, len(msg.Attachments))
		}
		return
	}

	if preview != "" {
		body := domain.Truncate(header+"\n\n"+preview, domain.MaxBodyLen)
		if f.delivery.BroadcastText(ctx, body) {
			f.gate.RecordDelivered(conv.ID)
		}
	}

	for _, att := range msg.Attachments {
		data, err := f.source.DownloadAttachment(ctx, att)
		if err != nil {
			// Only this attachment is lost; the message's text and the
			// remaining attachments still go out.
			f.log.Warn().Err(err).
				Str("conversation", conv.ID).
				Str("ts", string(msg.TS)).
				Str("file", att.Name).
				Msg("attachment download failed")
			continue
		}
		filename := att.Name
		if filename == "" {
			filename = "slack-file-" + att.ID
		}
		caption := header
		if preview != "" {
			caption = header + "\n\n" + preview
		}
		if f.delivery.BroadcastMedia(ctx, caption, data, filename, att.MimeType) {
			f.gate.RecordDelivered(conv.ID)
		}
	}
}

func (f *Forwarder) advance(ctx context.Context, conversationID string, ts domain.Timestamp) {
	if !f.marks.Advance(conversationID, ts) {
		return
	}
	if f.store == nil {
		return
	}
	if err := f.store.Save(ctx, conversationID, ts); err != nil {
		f.log.Error().Err(err).Str("conversation", conversationID).Msg("persisting watermark failed")
	}
}

func (f *Forwarder) flushDigest(ctx context.Context, conversationID string) {
	rec, ok := f.gate.PendingSummary(conversationID)
	if !ok {
		return
	}
	digest := rec.Digest(f.cfg.Format)
	if f.rewriter != nil {
		polished, err := f.rewriter.Rewrite(ctx, digest)
		if err != nil {
			f.log.Warn().Err(err).Msg("digest rewrite failed, using plain digest")
		} else if polished != "" {
			digest = domain.Truncate(polished, domain.MaxBodyLen)
		}
	}
	if f.delivery.BroadcastText(ctx, digest) {
		f.gate.RecordDelivered(conversationID)
		f.gate.ClearSuppressed(conversationID)
		f.log.Info().Str("conversation", conversationID).Int("count", rec.Count).Msg("delivered burst digest")
	}
}
