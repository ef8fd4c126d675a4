package runtime

import (
	"context"
	"log/slog"

	"duochat/contract"
	"duochat/domain/event"
)

// Broadcaster fans domain events out to every live connection of a
// target user set.
//
// It provides best-effort delivery with no guarantees regarding
// durability or retries: a connection that cannot accept the event right
// now is skipped. Per-connection ordering is preserved because each sink
// owns a single writer draining its queue.
//
// Broadcaster is safe for concurrent use by multiple goroutines.
type Broadcaster struct {
	log      *slog.Logger
	registry contract.IRegistry
}

func NewBroadcaster(log *slog.Logger, registry contract.IRegistry) *Broadcaster {
	return &Broadcaster{log: log, registry: registry}
}

// Publish delivers e to each live connection of each target identity.
// The registry lock is released before any sink is touched, so one
// stalled connection never blocks unrelated registry mutations.
func (b *Broadcaster) Publish(ctx context.Context, targets []string, e event.DomainEvent) {
	sinks := b.registry.LiveConnectionsOf(targets)
	for _, sink := range sinks {
		if err := sink.Consume(ctx, e); err != nil {
			b.log.Debug("event dropped on publish",
				"type", e.EventType(),
				"error", err)
		}
	}
}
