package domain

// WatermarkStore tracks, per conversation, the timestamp of the last
// processed message. The watermark is monotonically non-decreasing: Advance
// ignores timestamps at or below the current value.
type WatermarkStore struct {
	last map[string]Timestamp
}

// NewWatermarkStore creates an empty watermark store.
func NewWatermarkStore() *WatermarkStore {
	return &WatermarkStore{last: make(map[string]Timestamp)}
}

// Initialize sets the starting watermark for a conversation. Called once per
// conversation at bootstrap.
func (s *WatermarkStore) Initialize(conversationID string, ts Timestamp) {
	s.last[conversationID] = ts
}

// Advance moves the watermark forward to ts and reports whether it moved.
// Out-of-order or duplicate timestamps leave the watermark untouched.
func (s *WatermarkStore) Advance(conversationID string, ts Timestamp) bool {
	if !ts.After(s.last[conversationID]) {
		return false
	}
	s.last[conversationID] = ts
	return true
}

// Get returns the current watermark for a conversation. Uninitialized
// conversations return the zero timestamp.
func (s *WatermarkStore) Get(conversationID string) Timestamp {
	return s.last[conversationID]
}
