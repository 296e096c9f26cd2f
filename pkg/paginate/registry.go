package paginate

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownSession = errors.New("pager session not found")

// Registry routes incoming actions to live sessions by token.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) add(session *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.token] = session
}

func (r *Registry) remove(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, token)
}

func (r *Registry) Lookup(token string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	return session, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Dispatch hands action to the session behind token.
func (r *Registry) Dispatch(ctx context.Context, token string, actorID int64, action Action) (bool, error) {
	session, ok := r.Lookup(token)
	if !ok {
		return false, ErrUnknownSession
	}
	return session.Handle(ctx, actorID, action)
}
