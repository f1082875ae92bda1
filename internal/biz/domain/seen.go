package domain

import "time"

// SeenSet records (conversation, timestamp) pairs that have already been
// processed, so messages falling inside the overlap between consecutive poll
// windows are not forwarded twice. Entries are pruned by message timestamp
// once they are older than the poll-overlap retention window.
type SeenSet struct {
	entries map[string]Timestamp
}

// NewSeenSet creates an empty seen set.
func NewSeenSet() *SeenSet {
	return &SeenSet{entries: make(map[string]Timestamp)}
}

func seenKey(conversationID string, ts Timestamp) string {
	return conversationID + ":" + string(ts)
}

// MarkIfNew records the pair and returns true if it was unseen; returns
// false if the pair was already recorded.
func (s *SeenSet) MarkIfNew(conversationID string, ts Timestamp) bool {
	key := seenKey(conversationID, ts)
	if _, ok := s.entries[key]; ok {
		return false
	}
	s.entries[key] = ts
	return true
}

// Prune drops entries whose message timestamp is older than the cutoff and
// returns the number of entries removed.
func (s *SeenSet) Prune(cutoff time.Time) int {
	limit := TimestampFromTime(cutoff)
	removed := 0
	for key, ts := range s.entries {
		if ts.Before(limit) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of recorded entries.
func (s *SeenSet) Len() int {
	return len(s.entries)
}
