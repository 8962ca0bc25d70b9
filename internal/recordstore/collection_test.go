package recordstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const waitFor = 2 * time.Second

func newProducts(t *testing.T) (*Collection[domain.Product], *LocalNotifier) {
	t.Helper()

	ctx := context.Background()
	conn, err := sqlite.Open(ctx, sqlite.MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, conn.Migrate(ctx))
	t.Cleanup(func() { conn.Close() })

	notifier := NewLocalNotifier()
	return NewCollection[domain.Product](ProductsCollection, repository.NewProductRepository(conn), notifier), notifier
}

func next[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(waitFor):
		require.FailNow(t, "no snapshot received")
	}
	var zero T
	return zero
}

func TestSubscribeReceivesSnapshotAfterEveryChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, _ := newProducts(t)

	updates, err := products.Subscribe(ctx)
	require.NoError(t, err)
	assert.Empty(t, next(t, updates))

	key, err := products.Create(ctx, domain.Product{Name: "Tea", Price: "10"})
	require.NoError(t, err)
	assert.Len(t, key, 20)

	snapshot := next(t, updates)
	require.Contains(t, snapshot, key)
	assert.Equal(t, domain.Product{ID: key, Name: "Tea", Price: "10"}, snapshot[key])

	require.NoError(t, products.Overwrite(ctx, key, domain.Product{Name: "Tea", Price: "12"}))
	assert.Equal(t, domain.Price("12"), next(t, updates)[key].Price)

	require.NoError(t, products.Delete(ctx, key))
	assert.Empty(t, next(t, updates))
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	products, _ := newProducts(t)

	key, err := products.Create(ctx, domain.Product{Name: "Tea", Price: "10"})
	require.NoError(t, err)

	require.NoError(t, products.Delete(ctx, key))
	require.NoError(t, products.Delete(ctx, key))

	_, ok, err := products.Find(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscriptionIsReleasedWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	products, notifier := newProducts(t)

	updates, err := products.Subscribe(ctx)
	require.NoError(t, err)
	next(t, updates)
	assert.Equal(t, 1, notifier.Listeners(ProductsCollection))

	cancel()

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-updates:
			return !ok
		default:
			return false
		}
	}, waitFor, 10*time.Millisecond)
	assert.Equal(t, 0, notifier.Listeners(ProductsCollection))
}

func TestSlowSubscriberOnlySeesLatestSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	products, _ := newProducts(t)
	updates, err := products.Subscribe(ctx)
	require.NoError(t, err)
	next(t, updates)

	for _, name := range []string{"A", "B", "C"} {
		_, err := products.Create(ctx, domain.Product{Name: name, Price: "1"})
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool {
		select {
		case snapshot := <-updates:
			return len(snapshot) == 3
		default:
			return false
		}
	}, waitFor, 10*time.Millisecond)
}

type failingTable struct {
	Table[domain.Product]
}

func (failingTable) Insert(context.Context, string, domain.Product) error {
	return errors.New("disk full")
}

func TestCreateFailureDoesNotNotify(t *testing.T) {
	ctx := context.Background()
	notifier := NewLocalNotifier()
	products := NewCollection[domain.Product](ProductsCollection, failingTable{}, notifier)

	signals, release, err := notifier.Listen(ProductsCollection)
	require.NoError(t, err)
	defer release()

	_, err = products.Create(ctx, domain.Product{Name: "Tea"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	select {
	case <-signals:
		t.Fatal("failed write must not signal subscribers")
	default:
	}
}

func TestHubCoalescesSignals(t *testing.T) {
	hub := NewHub()
	ch, release := hub.Subscribe("sales")

	hub.Broadcast("sales")
	hub.Broadcast("sales")
	hub.Broadcast("products")

	<-ch
	select {
	case <-ch:
		t.Fatal("signals should coalesce")
	default:
	}

	release()
	release()
	_, ok := <-ch
	assert.False(t, ok)

	hub.Close()
	closed, _ := hub.Subscribe("sales")
	_, ok = <-closed
	assert.False(t, ok)
}
