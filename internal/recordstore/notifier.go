package recordstore

import (
	"context"
	"sync"
)

// Notifier fans out "collection changed" signals to subscribers.
// Signals carry no payload: receivers re-read the collection.
type Notifier interface {
	Notify(ctx context.Context, collection string) error
	Listen(collection string) (<-chan struct{}, func(), error)
}

// Hub is the in-process fan-out shared by every Notifier implementation.
// Each listener channel buffers one pending signal; bursts coalesce into it.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[string]map[int]chan struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[int]chan struct{})}
}

// Subscribe registers a listener for collection and returns its signal
// channel plus a release func. Release is safe to call more than once.
func (h *Hub) Subscribe(collection string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan struct{}, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]chan struct{})
	}
	h.subs[collection][id] = ch

	var once sync.Once
	release := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if subs, ok := h.subs[collection]; ok {
				if _, ok := subs[id]; ok {
					delete(subs, id)
					close(ch)
				}
				if len(subs) == 0 {
					delete(h.subs, collection)
				}
			}
		})
	}

	return ch, release
}

// Listeners reports how many subscribers collection has
func (h *Hub) Listeners(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// Broadcast signals every listener of collection without blocking
func (h *Hub) Broadcast(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs[collection] {
		signal(ch)
	}
}

// BroadcastAll signals every listener of every collection
func (h *Hub) BroadcastAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, subs := range h.subs {
		for _, ch := range subs {
			signal(ch)
		}
	}
}

// Close closes every listener channel; later subscriptions get a closed channel
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for collection, subs := range h.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(h.subs, collection)
	}
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// LocalNotifier delivers change signals inside the current process only
type LocalNotifier struct {
	*Hub
}

var _ Notifier = (*LocalNotifier)(nil)

func NewLocalNotifier() *LocalNotifier {
	return &LocalNotifier{Hub: NewHub()}
}

func (n *LocalNotifier) Notify(_ context.Context, collection string) error {
	n.Broadcast(collection)
	return nil
}

func (n *LocalNotifier) Listen(collection string) (<-chan struct{}, func(), error) {
	ch, release := n.Subscribe(collection)
	return ch, release, nil
}
