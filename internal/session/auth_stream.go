package session

import (
	"sync"

	"tokoaing/internal/domain/entity"
	"tokoaing/internal/domain/repository"
)

// AuthStream is the authentication state of one client. Observers get the current identity
// on subscribe and every identity emitted afterwards, nil meaning signed out.
type AuthStream struct {
	mu        sync.Mutex
	emitMu    sync.Mutex
	current   *entity.Identity
	observers map[int]func(*entity.Identity)
	nextID    int
}

func NewAuthStream() *AuthStream {
	return &AuthStream{
		observers: make(map[int]func(*entity.Identity)),
	}
}

func (a *AuthStream) Current() *entity.Identity {
	a.mu.Lock()
	defer a.mu.Unlock()
	return cloneIdentity(a.current)
}

func (a *AuthStream) Subscribe(fn func(*entity.Identity)) repository.Subscription {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.observers[id] = fn
	current := cloneIdentity(a.current)
	a.mu.Unlock()

	fn(current)

	var once sync.Once
	return repository.SubscriptionFunc(func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.observers, id)
			a.mu.Unlock()
		})
	})
}

func (a *AuthStream) Emit(identity *entity.Identity) {
	a.emitMu.Lock()
	defer a.emitMu.Unlock()

	a.mu.Lock()
	a.current = cloneIdentity(identity)
	observers := make([]func(*entity.Identity), 0, len(a.observers))
	for _, fn := range a.observers {
		observers = append(observers, fn)
	}
	a.mu.Unlock()

	for _, fn := range observers {
		fn(cloneIdentity(identity))
	}
}

func (a *AuthStream) ObserverCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.observers)
}

func cloneIdentity(identity *entity.Identity) *entity.Identity {
	if identity == nil {
		return nil
	}
	copied := *identity
	return &copied
}
