package domain

import (
	"testing"
	"time"
)

func TestSeenSet_MarkIfNew(t *testing.T) {
	s := NewSeenSet()

	if !s.MarkIfNew("D123", "100.000001") {
		t.Error("Expected first mark to report new")
	}
	if s.MarkIfNew("D123", "100.000001") {
		t.Error("Expected duplicate mark to report seen")
	}
	if !s.MarkIfNew("D456", "100.000001") {
		t.Error("Expected same timestamp in another conversation to be new")
	}
}

func TestSeenSet_Prune(t *testing.T) {
	s := NewSeenSet()
	now := time.Now()

	old := TimestampFromTime(now.Add(-48 * time.Hour))
	fresh := TimestampFromTime(now.Add(-time.Minute))
	s.MarkIfNew("D123", old)
	s.MarkIfNew("D123", fresh)

	removed := s.Prune(now.Add(-24 * time.Hour))
	if removed != 1 {
		t.Fatalf("Expected 1 entry pruned, got %d", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("Expected 1 entry left, got %d", s.Len())
	}
	if s.MarkIfNew("D123", fresh) {
		t.Error("Expected fresh entry to survive pruning")
	}
	if !s.MarkIfNew("D123", old) {
		t.Error("Expected pruned entry to be markable again")
	}
}
