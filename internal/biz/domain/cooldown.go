package domain

import (
	"fmt"
	"time"
)

// SuppressionRecord accumulates statistics about messages withheld while a
// conversation's cooldown window is active. The preview and sender always
// reflect the most recent suppressed message.
type SuppressionRecord struct {
	Count       int
	Attachments int
	FirstTS     Timestamp
	LastTS      Timestamp
	LastSender  string
	LastPreview string
}

// Digest formats the record as a human-readable burst summary.
func (r *SuppressionRecord) Digest(f Format) string {
	attachments := ""
	if r.Attachments > 0 {
		attachments = fmt.Sprintf(f.DigestAttachments, r.Attachments)
	}
	from := r.FirstTS.Time().Format(f.TimeLayout)
	to := r.LastTS.Time().Format(f.TimeLayout)
	body := fmt.Sprintf(f.DigestLine, r.Count, attachments, from, to)
	if r.LastPreview != "" {
		body += fmt.Sprintf(f.DigestLast, r.LastSender, Truncate(r.LastPreview, MaxPreviewLen))
	}
	return Truncate(body, MaxBodyLen)
}

// CooldownGate enforces the per-conversation minimum interval between
// successive destination deliveries. While the window is active, forwarding
// attempts are folded into a SuppressionRecord; once it expires the record
// is flushed as a digest. The gate is evaluated independently per
// conversation, never globally.
type CooldownGate struct {
	cooldown       time.Duration
	summaryEnabled bool

	lastNotify map[string]time.Time
	suppressed map[string]*SuppressionRecord

	now func() time.Time
}

// NewCooldownGate creates a gate with the given window. When summaryEnabled
// is false, suppressed bursts are dropped silently instead of being digested.
func NewCooldownGate(cooldown time.Duration, summaryEnabled bool) *CooldownGate {
	return &CooldownGate{
		cooldown:       cooldown,
		summaryEnabled: summaryEnabled,
		lastNotify:     make(map[string]time.Time),
		suppressed:     make(map[string]*SuppressionRecord),
		now:            time.Now,
	}
}

// SetClock replaces the gate's clock. Tests only.
func (g *CooldownGate) SetClock(now func() time.Time) {
	g.now = now
}

// Init seeds a conversation so its first real message is delivered
// immediately (the cooldown window starts out already expired).
func (g *CooldownGate) Init(conversationID string) {
	g.lastNotify[conversationID] = time.Time{}
}

// InCooldown reports whether the conversation's window is still active.
func (g *CooldownGate) InCooldown(conversationID string) bool {
	return g.now().Sub(g.lastNotify[conversationID]) < g.cooldown
}

// RecordSuppressed creates or updates the conversation's suppression record.
// This is the path taken for every message or attachment batch arriving
// while the window is active.
func (g *CooldownGate) RecordSuppressed(conversationID, sender, preview string, ts Timestamp, attachments int) {
	rec, ok := g.suppressed[conversationID]
	if !ok {
		rec = &SuppressionRecord{FirstTS: ts, LastSender: sender, LastPreview: preview}
		g.suppressed[conversationID] = rec
	}
	rec.Count++
	rec.Attachments += attachments
	rec.LastTS = ts
	if preview != "" {
		rec.LastPreview = preview
	}
	if sender != "" {
		rec.LastSender = sender
	}
}

// RecordDelivered resets the conversation's cooldown clock after a
// successful delivery (text, media or digest).
func (g *CooldownGate) RecordDelivered(conversationID string) {
	g.lastNotify[conversationID] = g.now()
}

// PendingSummary returns the conversation's suppression record once the
// cooldown window has expired. The record stays in place until the caller
// confirms delivery via ClearSuppressed, so a failed flush is retried on the
// next tick.
func (g *CooldownGate) PendingSummary(conversationID string) (*SuppressionRecord, bool) {
	if !g.summaryEnabled {
		return nil, false
	}
	rec, ok := g.suppressed[conversationID]
	if !ok || g.InCooldown(conversationID) {
		return nil, false
	}
	return rec, true
}

// ClearSuppressed deletes the conversation's suppression record after its
// digest has been delivered.
func (g *CooldownGate) ClearSuppressed(conversationID string) {
	delete(g.suppressed, conversationID)
}
