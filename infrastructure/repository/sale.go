package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
)

const salesTable = "sales"

type SaleRepository interface {
	List(ctx context.Context) (map[string]domain.Sale, error)
	ListSince(ctx context.Context, fromMillis int64) ([]domain.Sale, error)
	Get(ctx context.Context, key string) (domain.Sale, bool, error)
	Insert(ctx context.Context, key string, sale domain.Sale) error
	Upsert(ctx context.Context, key string, sale domain.Sale) error
	Delete(ctx context.Context, key string) error
}

type saleRepository struct {
	conn database.Conn
}

func NewSaleRepository(conn database.Conn) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

func (r *saleRepository) selectSales() squirrel.SelectBuilder {
	return builder(r.conn).
		Select("id", "timestamp", "entries", "total").
		From(salesTable)
}

func (r *saleRepository) List(ctx context.Context) (map[string]domain.Sale, error) {
	sales, err := r.query(ctx, r.selectSales())
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]domain.Sale, len(sales))
	for _, sale := range sales {
		byKey[sale.ID] = sale
	}

	return byKey, nil
}

// ListSince returns the sales at or after fromMillis, newest first
func (r *saleRepository) ListSince(ctx context.Context, fromMillis int64) ([]domain.Sale, error) {
	return r.query(ctx, r.selectSales().
		Where(squirrel.GtOrEq{"timestamp": fromMillis}).
		OrderBy("timestamp DESC"))
}

func (r *saleRepository) Get(ctx context.Context, key string) (domain.Sale, bool, error) {
	sales, err := r.query(ctx, r.selectSales().Where("id = ?", key))
	if err != nil {
		return domain.Sale{}, false, err
	}

	if len(sales) == 0 {
		return domain.Sale{}, false, nil
	}

	return sales[0], true, nil
}

func (r *saleRepository) Insert(ctx context.Context, key string, sale domain.Sale) error {
	insert, err := r.insertSale(key, sale)
	if err != nil {
		return err
	}

	return r.exec(ctx, insert)
}

func (r *saleRepository) Upsert(ctx context.Context, key string, sale domain.Sale) error {
	insert, err := r.insertSale(key, sale)
	if err != nil {
		return err
	}

	return r.exec(ctx, insert.Suffix(
		"ON CONFLICT (id) DO UPDATE SET timestamp = excluded.timestamp, entries = excluded.entries, total = excluded.total",
	))
}

func (r *saleRepository) Delete(ctx context.Context, key string) error {
	query, args, err := builder(r.conn).
		Delete(salesTable).
		Where("id = ?", key).
		ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

func (r *saleRepository) insertSale(key string, sale domain.Sale) (squirrel.InsertBuilder, error) {
	entries := sale.Entries
	if entries == nil {
		entries = []domain.Entry{}
	}

	// jsonb columns reject bytea, so the document travels as text
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return squirrel.InsertBuilder{}, fmt.Errorf("encode entries: %w", err)
	}

	var total decimal.NullDecimal
	if sale.Total != nil {
		total = decimal.NewNullDecimal(*sale.Total)
	}

	return builder(r.conn).
		Insert(salesTable).
		Columns("id", "timestamp", "entries", "total").
		Values(key, sale.Timestamp, string(entriesJSON), total), nil
}

func (r *saleRepository) exec(ctx context.Context, insert squirrel.InsertBuilder) error {
	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}

	_, err = r.conn.ExecContext(ctx, query, args...)
	return err
}

func (r *saleRepository) query(ctx context.Context, selectBuilder squirrel.SelectBuilder) ([]domain.Sale, error) {
	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales := make([]domain.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sales, nil
}

func scanSale(rows *sql.Rows) (domain.Sale, error) {
	var (
		sale    domain.Sale
		entries []byte
		total   sql.NullString
	)

	if err := rows.Scan(&sale.ID, &sale.Timestamp, &entries, &total); err != nil {
		return domain.Sale{}, err
	}

	// an unreadable entries document keeps the sale visible with no lines
	if len(entries) > 0 {
		if err := json.Unmarshal(entries, &sale.Entries); err != nil {
			sale.Entries = nil
		}
	}
	if sale.Entries == nil {
		sale.Entries = []domain.Entry{}
	}

	// an unreadable total is treated as missing and recomputed by readers
	if total.Valid {
		if value, err := decimal.NewFromString(total.String); err == nil {
			sale.Total = &value
		}
	}

	return sale, nil
}
