package stage

import (
	"context"

	"verso/internal/queue"
)

// Handler describes the contract the workflow manager needs from each
// pipeline stage. Prepare runs cheap validation before the stage deadline
// starts; Execute does the work and must respect context cancellation.
type Handler interface {
	Prepare(context.Context, *queue.Item) error
	Execute(context.Context, *queue.Item) error
	HealthCheck(context.Context) Health
}
