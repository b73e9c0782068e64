package interfaces

import "context"

// EventPublisher fans ledger lifecycle events out to collaborators.
// Publishing is best-effort from the engine's point of view: a failed publish
// never rolls back a committed write.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event any) error
}
