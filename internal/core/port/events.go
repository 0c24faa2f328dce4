package port

import (
	"context"

	"github.com/ome/openmicroscopy-sub033/internal/core/domain"
)

// EventSink receives observer notifications from the import state machine.
// Delivery is synchronous; implementations may buffer and flush at step
// boundaries.
type EventSink interface {
	OnEvent(ev domain.ImportEvent)
}

// EventPublisher pushes fileset-registered messages to the broker for
// asynchronous downstream processing.
type EventPublisher interface {
	PublishFilesetRegistered(ctx context.Context, msg domain.FilesetRegistered) error
}

// EventConsumer is an interface to define an event consumer (kafka, nats, ...)
type EventConsumer interface {
	Subscribe(ctx context.Context, handler MessageService) error
	Close() error
}

// MessageService is an interface to define message handling
type MessageService interface {
	HandleMessage(ctx context.Context, data []byte) error
}
