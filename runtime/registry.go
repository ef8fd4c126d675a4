package runtime

import (
	"sync"

	"duochat/contract"
)

type sinkSet map[contract.EventSink]struct{}

// Registry tracks which live connections belong to which user identity.
// A user may have many simultaneous connections (several tabs, devices);
// each one is a distinct sink under the same identity.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]sinkSet
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]sinkSet)}
}

// Bind registers a connection under an identity. Re-binding the same pair
// is a no-op, so callers don't need to track whether they already did.
func (r *Registry) Bind(identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[identity]; !ok {
		r.sessions[identity] = make(sinkSet)
	}
	r.sessions[identity][sink] = struct{}{}
}

// Unbind removes a connection from an identity. The identity entry is
// dropped entirely once its last connection goes, so the map never holds
// empty sets. Unbinding something that was never bound is a no-op.
func (r *Registry) Unbind(identity string, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sinks, ok := r.sessions[identity]
	if !ok {
		return
	}
	delete(sinks, sink)
	if len(sinks) == 0 {
		delete(r.sessions, identity)
	}
}

// LiveConnectionsOf resolves every given identity into its open
// connections. Identities with no entry contribute nothing; an offline
// user is not an error here.
func (r *Registry) LiveConnectionsOf(identities []string) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sinks []contract.EventSink
	for _, identity := range identities {
		for sink := range r.sessions[identity] {
			sinks = append(sinks, sink)
		}
	}
	return sinks
}

// ConnectionCount reports how many connections an identity currently has.
func (r *Registry) ConnectionCount(identity string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[identity])
}
