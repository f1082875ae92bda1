package domain

import "fmt"

// Length limits for outbound WhatsApp payloads.
const (
	MaxBodyLen    = 1000 // text message body
	MaxCaptionLen = 900  // media caption
	MaxPreviewLen = 300  // digest preview of the last suppressed message
)

// Format holds the wording used for forwarded messages and burst digests.
// All fields have working defaults; deployments can override them from a
// YAML file.
type Format struct {
	Header            string // fmt verbs: sender, localized time
	UnknownSender     string
	DigestLine        string // fmt verbs: count, attachment chunk, from, to
	DigestAttachments string // fmt verb: attachment count
	DigestLast        string // fmt verbs: sender, preview
	TimeLayout        string
}

// DefaultFormat returns the built-in wording.
func DefaultFormat() Format {
	return Format{
		Header:            "💬 Slack DM from %s — %s",
		UnknownSender:     "someone",
		DigestLine:        "🔔 Slack digest: %d new message(s)%s between %s and %s.",
		DigestAttachments: ", %d attachment(s)",
		DigestLast:        "\nLast: %s: %s",
		TimeLayout:        "02/01/2006 15:04:05",
	}
}

// HeaderLine renders the header prepended to every forwarded message.
func (f Format) HeaderLine(sender string, ts Timestamp) string {
	return fmt.Sprintf(f.Header, sender, ts.Time().Format(f.TimeLayout))
}

// Truncate shortens s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
