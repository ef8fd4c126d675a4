//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"

	"duochat/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
}

// Worker doesn't protect itself.
// Can be silly, focused.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one live connection's inbox. Consume must never block the
// caller for long: implementations enqueue and drop on backpressure.
type EventSink interface {
	Consume(ctx context.Context, e event.DomainEvent) error
}

// IRegistry maps a user identity to the set of its open live connections.
// All operations are total; validating the identity is the caller's job,
// not the registry's.
type IRegistry interface {
	Bind(identity string, sink EventSink)
	Unbind(identity string, sink EventSink)
	LiveConnectionsOf(identities []string) []EventSink
}

// IBroadcaster fans an event out to every live connection of every target
// identity. Offline targets contribute nothing; delivery is best-effort.
type IBroadcaster interface {
	Publish(ctx context.Context, targets []string, e event.DomainEvent)
}
