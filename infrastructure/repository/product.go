package repository

import (
	"context"
	"database/sql"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const productsTable = "products"

type ProductRepository interface {
	List(ctx context.Context) (map[string]domain.Product, error)
	Get(ctx context.Context, key string) (domain.Product, bool, error)
	Insert(ctx context.Context, key string, product domain.Product) error
	Upsert(ctx context.Context, key string, product domain.Product) error
	Delete(ctx context.Context, key string) error
}

type productRepository struct {
	conn database.Conn
}

func NewProductRepository(conn database.Conn) ProductRepository {
	return &productRepository{
		conn: conn,
	}
}

func (r *productRepository) List(ctx context.Context) (map[string]domain.Product, error) {
	query, args, err := builder(r.conn).
		Select("id", "name", "price").
		From(productsTable).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make(map[string]domain.Product)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Price); err != nil {
			return nil, err
		}
		products[product.ID] = product
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *productRepository) Get(ctx context.Context, key string) (domain.Product, bool, error) {
	query, args, err := builder(r.conn).
		Select("id", "name", "price").
		From(productsTable).
		Where("id = ?", key).
		ToSql()
	if err != nil {
		return domain.Product{}, false, err
	}

	var product domain.Product
	err = r.conn.QueryRowContext(ctx, query, args...).Scan(&product.ID, &product.Name, &product.Price)
	if err == sql.ErrNoRows {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, err
	}

	return product, true, nil
}

func (r *productRepository) Insert(ctx context.Context, key string, product domain.Product) error {
	query, args, err := builder(r.conn).
		Insert(productsTable).
		Columns("id", "name", "price").
		Values(key, product.Name, string(product.Price)).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

func (r *productRepository) Upsert(ctx context.Context, key string, product domain.Product) error {
	query, args, err := builder(r.conn).
		Insert(productsTable).
		Columns("id", "name", "price").
		Values(key, product.Name, string(product.Price)).
		Suffix("ON CONFLICT (id) DO UPDATE SET name = excluded.name, price = excluded.price").
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

func (r *productRepository) Delete(ctx context.Context, key string) error {
	query, args, err := builder(r.conn).
		Delete(productsTable).
		Where("id = ?", key).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}
