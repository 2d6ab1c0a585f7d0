package sharding_test

import (
	"testing"
	"time"

	"verso/internal/sharding"
)

func TestAssignCoversAllShards(t *testing.T) {
	for _, width := range []int{2, 3, 5, 8} {
		for minute := 0; minute < 60; minute++ {
			now := time.Date(2025, 3, 1, 10, minute, 0, 0, time.UTC)
			seen := make(map[int]bool, width)
			for ordinal := 0; ordinal < width; ordinal++ {
				shard := sharding.Assign(ordinal, width, now)
				if shard < 0 || shard >= width {
					t.Fatalf("width %d ordinal %d: shard %d out of range", width, ordinal, shard)
				}
				if seen[shard] {
					t.Fatalf("width %d minute %d: shard %d assigned twice", width, minute, shard)
				}
				seen[shard] = true
			}
		}
	}
}

func TestAssignRotatesOverTime(t *testing.T) {
	const width = 3
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	first := sharding.Assign(0, width, base)
	same := sharding.Assign(0, width, base.Add(time.Duration(width-1)*time.Minute))
	if first != same {
		t.Fatalf("expected stable assignment within rotation period, got %d then %d", first, same)
	}

	rotated := sharding.Assign(0, width, base.Add(time.Duration(width)*time.Minute))
	if rotated != (first+1)%width {
		t.Fatalf("expected shard to advance by one after %d minutes, got %d -> %d", width, first, rotated)
	}
}

func TestAssignSingleWorker(t *testing.T) {
	for minute := 0; minute < 60; minute++ {
		now := time.Date(2025, 3, 1, 10, minute, 0, 0, time.UTC)
		if shard := sharding.Assign(0, 1, now); shard != 0 {
			t.Fatalf("expected shard 0 for single worker, got %d", shard)
		}
	}
}

func TestRotationPeriod(t *testing.T) {
	if got := sharding.RotationPeriod(4); got != 4*time.Minute {
		t.Fatalf("expected 4m rotation, got %s", got)
	}
	if got := sharding.RotationPeriod(0); got != time.Minute {
		t.Fatalf("expected 1m rotation floor, got %s", got)
	}
}
