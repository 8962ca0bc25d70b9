package postgres

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/vfg2006/sales-dashboard-api/internal/recordstore"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

const (
	channelPrefix        = "records_"
	minReconnectInterval = 10 * time.Second
	maxReconnectInterval = time.Minute
	pingInterval         = 90 * time.Second
)

// Listener delivers record changes between processes through LISTEN/NOTIFY.
// Any instance writing to a collection wakes the subscribers of every instance.
type Listener struct {
	*recordstore.Hub

	conn     *Connection
	listener *pq.Listener

	mu        sync.Mutex
	listening map[string]bool
	done      chan struct{}
	closeOnce sync.Once
}

var _ recordstore.Notifier = (*Listener)(nil)

func NewListener(conn *Connection) *Listener {
	l := &Listener{
		Hub:       recordstore.NewHub(),
		conn:      conn,
		listening: make(map[string]bool),
		done:      make(chan struct{}),
	}

	l.listener = pq.NewListener(conn.DSN(), minReconnectInterval, maxReconnectInterval, l.reportProblem)

	go l.run()

	return l
}

func channelName(collection string) string {
	return channelPrefix + collection
}

// Notify publishes a change of collection to every listening process
func (l *Listener) Notify(ctx context.Context, collection string) error {
	_, err := l.conn.ExecContext(ctx, "SELECT pg_notify($1, '')", channelName(collection))
	return err
}

func (l *Listener) Listen(collection string) (<-chan struct{}, func(), error) {
	channel := channelName(collection)

	l.mu.Lock()
	if !l.listening[channel] {
		if err := l.listener.Listen(channel); err != nil && err != pq.ErrChannelAlreadyOpen {
			l.mu.Unlock()
			return nil, nil, err
		}
		l.listening[channel] = true
	}
	l.mu.Unlock()

	ch, release := l.Subscribe(collection)
	return ch, release, nil
}

// Close stops listening and closes every subscriber channel
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.done)
		err = l.listener.Close()
		l.Hub.Close()
	})
	return err
}

func (l *Listener) run() {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case n, ok := <-l.listener.Notify:
			if !ok {
				return
			}
			if n == nil {
				// reconnected: notifications may have been lost meanwhile
				l.BroadcastAll()
				continue
			}
			l.Broadcast(strings.TrimPrefix(n.Channel, channelPrefix))
		case <-ticker.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					log.L.WithError(err).Warn("postgres listener ping failed")
				}
			}()
		}
	}
}

func (l *Listener) reportProblem(event pq.ListenerEventType, err error) {
	switch event {
	case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
		log.L.WithError(err).Warn("postgres listener lost its connection")
	case pq.ListenerEventReconnected:
		log.L.Info("postgres listener reconnected")
	}
}
