// Package notifications posts terminal work item outcomes to an optional
// webhook. Delivery is fire-and-forget: failures are logged by callers and
// never affect queue state.
package notifications
