package port

import (
	"context"

	"github.com/rl1809/campus-canteen/internal/core/domain"
)

type EventPublisher interface {
	// Publish hands a committed event to the journal without blocking
	Publish(event domain.Event)
}

type EventSink interface {
	// Record writes one event to external storage
	Record(ctx context.Context, event domain.Event) error
}
