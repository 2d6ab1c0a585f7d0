// Package sharding maps worker ordinals to shards of the work item id
// space. Assignment is a pure function of the ordinal and the wall clock,
// so a fixed pool of workers covers every shard at every instant without
// any cross-worker coordination, and coverage rotates over time so a
// stalled worker cannot permanently starve one shard.
package sharding

import "time"

// Assign returns the shard in [0, width) that the worker with the given
// 0-based ordinal services at time now. The assignment shifts by one shard
// every width minutes; at any fixed instant the pool's assignments are a
// permutation of [0, width).
func Assign(ordinal, width int, now time.Time) int {
	if width <= 1 {
		return 0
	}
	rotation := now.Minute() / width
	return (ordinal + rotation) % width
}

// RotationPeriod returns how long a worker stays on one shard.
func RotationPeriod(width int) time.Duration {
	if width < 1 {
		width = 1
	}
	return time.Duration(width) * time.Minute
}
