package server

import (
	"sync"

	"github.com/RawatRahul14/ragpipe/rag"
)

// SessionRegistry maps session identifiers to their bound retrievers. The
// upload path binds a retriever; the query path looks it up. It is an
// explicit dependency of the server, not a process-wide global, so tests
// and concurrent servers get independent registries.
type SessionRegistry struct {
	mu         sync.RWMutex
	retrievers map[string]rag.Retriever
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{retrievers: make(map[string]rag.Retriever)}
}

// Bind associates a retriever with a session, replacing any previous one.
func (r *SessionRegistry) Bind(sessionID string, retriever rag.Retriever) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retrievers[sessionID] = retriever
}

// Get returns the retriever bound to a session.
func (r *SessionRegistry) Get(sessionID string) (rag.Retriever, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	retriever, ok := r.retrievers[sessionID]
	return retriever, ok
}

// Len returns the number of bound sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.retrievers)
}
