package domain

import "testing"

func TestWatermarkStore_Advance(t *testing.T) {
	s := NewWatermarkStore()
	s.Initialize("D123", "100.000000")

	if !s.Advance("D123", "101.000000") {
		t.Error("Expected advance to a newer timestamp")
	}
	if got := s.Get("D123"); got != "101.000000" {
		t.Errorf("Expected watermark 101.000000, got %s", got)
	}
}

func TestWatermarkStore_Monotonic(t *testing.T) {
	s := NewWatermarkStore()
	s.Initialize("D123", "100.000000")
	s.Advance("D123", "105.000000")

	// Out-of-order batch must not move the watermark backwards.
	if s.Advance("D123", "103.000000") {
		t.Error("Expected no advance for an older timestamp")
	}
	if s.Advance("D123", "105.000000") {
		t.Error("Expected no advance for an equal timestamp")
	}
	if got := s.Get("D123"); got != "105.000000" {
		t.Errorf("Expected watermark 105.000000, got %s", got)
	}
}

func TestWatermarkStore_Uninitialized(t *testing.T) {
	s := NewWatermarkStore()
	if got := s.Get("D404"); got != "" {
		t.Errorf("Expected zero watermark, got %s", got)
	}
}
