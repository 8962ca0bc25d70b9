// Package recordstore exposes SQL tables as realtime collections of keyed
// records. Every write is followed by a change signal, and every subscriber
// receives a fresh full snapshot after each signal.
package recordstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
	"github.com/vfg2006/sales-dashboard-api/pkg/utils"
)

const (
	ProductsCollection = "products"
	SalesCollection    = "sales"
)

// Table is the persistence a Collection writes through
type Table[T any] interface {
	List(ctx context.Context) (map[string]T, error)
	Get(ctx context.Context, key string) (T, bool, error)
	Insert(ctx context.Context, key string, record T) error
	Upsert(ctx context.Context, key string, record T) error
	Delete(ctx context.Context, key string) error
}

type Collection[T any] struct {
	name     string
	table    Table[T]
	notifier Notifier
	newKey   func() (string, error)
}

func NewCollection[T any](name string, table Table[T], notifier Notifier) *Collection[T] {
	return &Collection[T]{
		name:     name,
		table:    table,
		notifier: notifier,
		newKey:   utils.GenerateKey,
	}
}

func (c *Collection[T]) Name() string {
	return c.name
}

// Get reads the whole collection once
func (c *Collection[T]) Get(ctx context.Context) (map[string]T, error) {
	records, err := c.table.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "list %s", c.name)
	}
	if records == nil {
		records = make(map[string]T)
	}
	return records, nil
}

func (c *Collection[T]) Find(ctx context.Context, key string) (T, bool, error) {
	record, ok, err := c.table.Get(ctx, key)
	if err != nil {
		return record, false, errors.Wrapf(err, "get %s/%s", c.name, key)
	}
	return record, ok, nil
}

// Create stores record under a freshly generated key
func (c *Collection[T]) Create(ctx context.Context, record T) (string, error) {
	key, err := c.newKey()
	if err != nil {
		return "", errors.Wrap(err, "generate key")
	}

	if err := c.table.Insert(ctx, key, record); err != nil {
		return "", errors.Wrapf(err, "create %s", c.name)
	}

	c.changed(ctx)
	return key, nil
}

// Overwrite replaces the record at key, creating it when absent
func (c *Collection[T]) Overwrite(ctx context.Context, key string, record T) error {
	if err := c.table.Upsert(ctx, key, record); err != nil {
		return errors.Wrapf(err, "overwrite %s/%s", c.name, key)
	}

	c.changed(ctx)
	return nil
}

// Delete removes the record at key; a missing key is not an error
func (c *Collection[T]) Delete(ctx context.Context, key string) error {
	if err := c.table.Delete(ctx, key); err != nil {
		return errors.Wrapf(err, "delete %s/%s", c.name, key)
	}

	c.changed(ctx)
	return nil
}

// Subscribe pushes the current snapshot immediately and a new one after every
// change until ctx is done, then closes the channel. Only the most recent
// snapshot is buffered: a slow reader skips stale ones.
func (c *Collection[T]) Subscribe(ctx context.Context) (<-chan map[string]T, error) {
	signals, release, err := c.notifier.Listen(c.name)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", c.name)
	}

	initial, err := c.Get(ctx)
	if err != nil {
		release()
		return nil, err
	}

	out := make(chan map[string]T, 1)
	out <- initial

	go func() {
		defer close(out)
		defer release()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}

				snapshot, err := c.Get(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					log.ForContext(ctx).WithError(err).WithField("collection", c.name).Warn("could not refresh subscription")
					continue
				}

				replaceLatest(out, snapshot)
			}
		}
	}()

	return out, nil
}

func (c *Collection[T]) changed(ctx context.Context) {
	if err := c.notifier.Notify(ctx, c.name); err != nil {
		log.ForContext(ctx).WithError(err).WithField("collection", c.name).Error("could not publish change")
	}
}

// replaceLatest must only be called by the channel's single producer
func replaceLatest[T any](out chan T, value T) {
	select {
	case <-out:
	default:
	}
	out <- value
}
