package runtime

import (
	"context"
	"log/slog"
	"testing"

	"duochat/contract"
	"duochat/domain/event"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return logs.GetLoggerFromLevel(slog.LevelDebug)
}

type fakeSink struct {
	received []event.DomainEvent
}

func (s *fakeSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.received = append(s.received, e)
	return nil
}

func TestRegistry_Bind_One_Identity_One_Connection(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &fakeSink{}

	// Given nobody is connected
	req.Empty(registry.LiveConnectionsOf([]string{"alice"}))

	// When a connection binds
	registry.Bind("alice", sink)

	// Then it is the only live connection of that identity
	sinks := registry.LiveConnectionsOf([]string{"alice"})
	req.Len(sinks, 1)
	req.Contains(sinks, contract.EventSink(sink))
	req.Equal(1, registry.ConnectionCount("alice"))
}

func TestRegistry_Bind_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &fakeSink{}

	// When the same connection binds twice
	registry.Bind("alice", sink)
	registry.Bind("alice", sink)

	// Then it is registered once
	req.Len(registry.LiveConnectionsOf([]string{"alice"}), 1)
}

func TestRegistry_Multiple_Connections_Per_Identity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	tab1 := &fakeSink{}
	tab2 := &fakeSink{}

	// When the same user opens two tabs
	registry.Bind("alice", tab1)
	registry.Bind("alice", tab2)

	// Then both connections are live
	req.Len(registry.LiveConnectionsOf([]string{"alice"}), 2)
	req.Equal(2, registry.ConnectionCount("alice"))
}

func TestRegistry_Unbind_Removes_Empty_Entry(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &fakeSink{}

	// Given a bound connection
	registry.Bind("alice", sink)

	// When it unbinds
	registry.Unbind("alice", sink)

	// Then no dangling empty set is left behind
	req.Empty(registry.LiveConnectionsOf([]string{"alice"}))
	req.Equal(0, registry.ConnectionCount("alice"))
}

func TestRegistry_Unbind_Unknown_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	registry.Unbind("ghost", &fakeSink{})

	req.Empty(registry.LiveConnectionsOf([]string{"ghost"}))
}

func TestRegistry_LiveConnectionsOf_Skips_Offline_Identities(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	sink := &fakeSink{}

	registry.Bind("alice", sink)

	// Offline bob contributes nothing; alice's connection is still there
	sinks := registry.LiveConnectionsOf([]string{"alice", "bob"})
	req.Len(sinks, 1)
}
