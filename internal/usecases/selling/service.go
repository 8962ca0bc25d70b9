// Package selling implements the admin mutations: recording and editing sales,
// deleting them and managing the product catalog.
package selling

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/aggregating"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

//go:generate mockgen -source=service.go -destination=mocks/service.go -package=mocks

type SaleStore interface {
	Find(ctx context.Context, key string) (domain.Sale, bool, error)
	Create(ctx context.Context, sale domain.Sale) (string, error)
	Overwrite(ctx context.Context, key string, sale domain.Sale) error
	Delete(ctx context.Context, key string) error
}

type ProductStore interface {
	Find(ctx context.Context, key string) (domain.Product, bool, error)
	Create(ctx context.Context, product domain.Product) (string, error)
	Delete(ctx context.Context, key string) error
}

type Seller interface {
	SubmitSale(ctx context.Context, draft Draft) (Outcome, error)
	UpdateSale(ctx context.Context, id string, entries []domain.Entry) (Outcome, error)
	DeleteSale(ctx context.Context, id string) (Outcome, error)
	AddProduct(ctx context.Context, name, price string) (Outcome, error)
	DeleteProduct(ctx context.Context, id string) (Outcome, error)
	FindSale(ctx context.Context, id string) (domain.Sale, error)
	FindProduct(ctx context.Context, id string) (domain.Product, bool, error)
}

// Outcome reports whether a mutation reached the store and the form state that follows
type Outcome struct {
	Written bool   `json:"written"`
	Key     string `json:"key,omitempty"`
	Draft   Draft  `json:"draft"`
}

type Service struct {
	sales       SaleStore
	products    ProductStore
	errorPolicy string
	now         func() time.Time
}

func NewService(sales SaleStore, products ProductStore, cfg *config.Config) *Service {
	return &Service{
		sales:       sales,
		products:    products,
		errorPolicy: cfg.Store.ErrorPolicy,
		now:         time.Now,
	}
}

// SubmitSale writes the valid rows of draft: a new sale, or an overwrite of the
// sale being edited keeping its key and stored timestamp. A draft without
// valid rows is returned untouched.
func (s *Service) SubmitSale(ctx context.Context, draft Draft) (Outcome, error) {
	entries := draft.ValidEntries()
	if len(entries) == 0 {
		return Outcome{Draft: draft.Normalize()}, nil
	}

	if draft.Editing != nil {
		current, err := s.FindSale(ctx, draft.Editing.ID)
		if err != nil {
			return Outcome{Draft: draft.Normalize()}, err
		}
		return s.overwrite(ctx, current, entries, draft)
	}

	total := aggregating.SumEntries(entries)
	sale := domain.Sale{Entries: entries, Total: &total, Timestamp: domain.MillisOf(s.now())}

	key, err := s.sales.Create(ctx, sale)
	if err != nil {
		return s.failed(ctx, "create sale", "", err, draft)
	}

	log.ForContext(ctx).WithFields(log.Fields{"sale_id": key, "total": total.String()}).Info("sale recorded")
	return Outcome{Written: true, Key: key, Draft: NewDraft()}, nil
}

// UpdateSale replaces the entries of a stored sale
func (s *Service) UpdateSale(ctx context.Context, id string, entries []domain.Entry) (Outcome, error) {
	current, err := s.FindSale(ctx, id)
	if err != nil {
		return Outcome{Draft: NewDraft()}, err
	}

	draft := Draft{
		Entries: entries,
		Editing: &EditTarget{ID: current.ID, Timestamp: current.Timestamp},
	}

	valid := draft.ValidEntries()
	if len(valid) == 0 {
		return Outcome{Draft: draft.Normalize()}, nil
	}

	return s.overwrite(ctx, current, valid, draft)
}

// overwrite replaces the entries of current. Key and timestamp always come
// from the stored record.
func (s *Service) overwrite(ctx context.Context, current domain.Sale, entries []domain.Entry, draft Draft) (Outcome, error) {
	total := aggregating.SumEntries(entries)
	sale := domain.Sale{
		ID:        current.ID,
		Timestamp: current.Timestamp,
		Entries:   entries,
		Total:     &total,
	}

	if err := s.sales.Overwrite(ctx, sale.ID, sale); err != nil {
		return s.failed(ctx, "overwrite sale", sale.ID, err, draft)
	}

	log.ForContext(ctx).WithField("sale_id", sale.ID).Info("sale updated")
	return Outcome{Written: true, Key: sale.ID, Draft: NewDraft()}, nil
}

func (s *Service) FindSale(ctx context.Context, id string) (domain.Sale, error) {
	sale, ok, err := s.sales.Find(ctx, id)
	if err != nil {
		return domain.Sale{}, errors.Wrap(err, "find sale")
	}
	if !ok {
		return domain.Sale{}, ErrSaleNotFound
	}

	sale.ID = id
	return sale, nil
}

func (s *Service) FindProduct(ctx context.Context, id string) (domain.Product, bool, error) {
	product, ok, err := s.products.Find(ctx, id)
	if err != nil {
		return domain.Product{}, false, errors.Wrap(err, "find product")
	}
	return product, ok, nil
}

// DeleteSale removes a sale; an unknown id is not an error
func (s *Service) DeleteSale(ctx context.Context, id string) (Outcome, error) {
	if err := s.sales.Delete(ctx, id); err != nil {
		return s.failed(ctx, "delete sale", id, err, NewDraft())
	}

	log.ForContext(ctx).WithField("sale_id", id).Info("sale deleted")
	return Outcome{Written: true, Key: id, Draft: NewDraft()}, nil
}

// AddProduct creates a catalog product; blank name or price is ignored
func (s *Service) AddProduct(ctx context.Context, name, price string) (Outcome, error) {
	name = strings.TrimSpace(name)
	price = strings.TrimSpace(price)
	if name == "" || price == "" {
		return Outcome{Draft: NewDraft()}, nil
	}

	key, err := s.products.Create(ctx, domain.Product{Name: name, Price: domain.Price(price)})
	if err != nil {
		return s.failed(ctx, "create product", "", err, NewDraft())
	}

	log.ForContext(ctx).WithFields(log.Fields{"product_id": key, "name": name}).Info("product added")
	return Outcome{Written: true, Key: key, Draft: NewDraft()}, nil
}

// DeleteProduct removes a product; an unknown id is not an error
func (s *Service) DeleteProduct(ctx context.Context, id string) (Outcome, error) {
	if err := s.products.Delete(ctx, id); err != nil {
		return s.failed(ctx, "delete product", id, err, NewDraft())
	}

	log.ForContext(ctx).WithField("product_id", id).Info("product deleted")
	return Outcome{Written: true, Key: id, Draft: NewDraft()}, nil
}

// failed applies the store error policy. Under "log" the failure only reaches
// the logs and the form resets; under "surface" the caller gets the error and
// the draft it submitted.
func (s *Service) failed(ctx context.Context, operation, key string, err error, draft Draft) (Outcome, error) {
	logger := log.ForContext(ctx).WithError(err).WithField("operation", operation)
	if key != "" {
		logger = logger.WithField("key", key)
	}

	if s.errorPolicy == config.StoreErrorPolicySurface {
		logger.Warn("store write failed")
		return Outcome{Draft: draft.Normalize()}, &StoreError{Err: err, Operation: operation, Key: key}
	}

	logger.Error("store write failed")
	return Outcome{Draft: NewDraft()}, nil
}
