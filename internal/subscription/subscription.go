// Package subscription keeps ordered handler lists which are copied under lock and invoked
// outside of it.
package subscription

import (
	"sync"
	"sync/atomic"
)

// Set holds handlers of type T in registration order.
type Set[T any] struct {
	mu       sync.RWMutex
	sid      atomic.Int64
	handlers []*entry[T]
}

type entry[T any] struct {
	sid     int64
	handler T
}

// Subscription represents interest in the events of a Set.
type Subscription struct {
	once        sync.Once
	sid         int64
	unsubscribe func(sid int64)
}

// Unsubscribe removes the handler. It is safe to call more than once and on a nil
// Subscription.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.unsubscribe(s.sid)
	})
}

// Subscribe appends handler. The same handler may be subscribed multiple times and is then
// invoked multiple times.
func (s *Set[T]) Subscribe(handler T) *Subscription {
	sid := s.sid.Add(1)

	s.mu.Lock()
	s.handlers = append(s.handlers, &entry[T]{sid: sid, handler: handler})
	s.mu.Unlock()

	return &Subscription{sid: sid, unsubscribe: s.remove}
}

// Handlers returns a copy of the current handlers, safe to range over without holding any
// lock.
func (s *Set[T]) Handlers() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	handlers := make([]T, 0, len(s.handlers))
	for _, e := range s.handlers {
		handlers = append(handlers, e.handler)
	}
	return handlers
}

// Len returns the number of subscribed handlers.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.handlers)
}

// Clear removes all handlers.
func (s *Set[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers = nil
}

func (s *Set[T]) remove(sid int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.handlers {
		if e.sid == sid {
			s.handlers = append(s.handlers[:i:i], s.handlers[i+1:]...)
			return
		}
	}
}
