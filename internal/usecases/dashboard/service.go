// Package dashboard turns the sales and products collections into the view
// shown by the public and admin dashboards, once or as a live stream.
package dashboard

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/aggregating"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type SalesSource interface {
	Get(ctx context.Context) (map[string]domain.Sale, error)
	Subscribe(ctx context.Context) (<-chan map[string]domain.Sale, error)
}

type ProductsSource interface {
	Get(ctx context.Context) (map[string]domain.Product, error)
	Subscribe(ctx context.Context) (<-chan map[string]domain.Product, error)
}

// Snapshot is the latest known content of both collections
type Snapshot struct {
	Sales    map[string]domain.Sale
	Products map[string]domain.Product
}

type Viewer interface {
	Current(ctx context.Context) (Snapshot, error)
	Watch(ctx context.Context) (<-chan Snapshot, error)
	Render(state ViewState, snapshot Snapshot) View
}

type Service struct {
	sales     SalesSource
	products  ProductsSource
	calendar  aggregating.Calendar
	formatter Formatter
	now       func() time.Time
}

func NewService(sales SalesSource, products ProductsSource, cfg *config.Config) (*Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	return &Service{
		sales:     sales,
		products:  products,
		calendar:  aggregating.NewCalendar(loc),
		formatter: NewFormatter(cfg.App.Locale, cfg.App.CurrencySymbol),
		now:       time.Now,
	}, nil
}

func (s *Service) Current(ctx context.Context) (Snapshot, error) {
	sales, err := s.sales.Get(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read sales")
	}

	products, err := s.products.Get(ctx)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "read products")
	}

	return Snapshot{Sales: sales, Products: products}, nil
}

// Watch subscribes to both collections and emits a combined snapshot once both
// have been received and again after every push. The channel keeps only the
// latest snapshot and is closed when ctx ends or a subscription stops.
func (s *Service) Watch(ctx context.Context) (<-chan Snapshot, error) {
	ctx, cancel := context.WithCancel(ctx)

	salesUpdates, err := s.sales.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "subscribe sales")
	}

	productUpdates, err := s.products.Subscribe(ctx)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "subscribe products")
	}

	out := make(chan Snapshot, 1)

	go func() {
		defer close(out)
		defer cancel()

		var current Snapshot
		var haveSales, haveProducts bool

		for {
			select {
			case <-ctx.Done():
				return
			case sales, ok := <-salesUpdates:
				if !ok {
					return
				}
				current.Sales, haveSales = sales, true
			case products, ok := <-productUpdates:
				if !ok {
					return
				}
				current.Products, haveProducts = products, true
			}

			if haveSales && haveProducts {
				select {
				case <-out:
				default:
				}
				out <- current
			}
		}
	}()

	return out, nil
}

// Render builds the view of snapshot for state at the current time
func (s *Service) Render(state ViewState, snapshot Snapshot) View {
	return Render(s.calendar, s.formatter, state, snapshot.Products, snapshot.Sales, s.now())
}
