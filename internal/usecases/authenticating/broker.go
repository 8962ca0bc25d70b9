package authenticating

import (
	"sync"
	"time"
)

type SessionEventType string

const (
	SessionStarted SessionEventType = "started"
	SessionEnded   SessionEventType = "ended"
)

type SessionEvent struct {
	Type      SessionEventType `json:"type"`
	SessionID string           `json:"session_id"`
	UserID    int              `json:"user_id"`
	At        time.Time        `json:"at"`
}

// broker delivers session events to in-process subscribers.
// Callbacks run synchronously on the publishing goroutine and must not block.
type broker struct {
	mu          sync.RWMutex
	nextID      int
	subscribers map[int]func(SessionEvent)
}

func newBroker() *broker {
	return &broker{subscribers: make(map[int]func(SessionEvent))}
}

func (b *broker) subscribe(fn func(SessionEvent)) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, id)
			b.mu.Unlock()
		})
	}
}

func (b *broker) publish(event SessionEvent) {
	b.mu.RLock()
	callbacks := make([]func(SessionEvent), 0, len(b.subscribers))
	for _, fn := range b.subscribers {
		callbacks = append(callbacks, fn)
	}
	b.mu.RUnlock()

	for _, fn := range callbacks {
		fn(event)
	}
}
