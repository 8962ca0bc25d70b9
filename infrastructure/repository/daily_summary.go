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

const dailySummariesTable = "daily_summaries"

type DailySummaryRepository interface {
	SaveOrUpdate(ctx context.Context, summaries []*domain.DailySummary) error
	List(ctx context.Context, fromDate, toDate string) ([]*domain.DailySummary, error)
}

type dailySummaryRepository struct {
	conn database.Conn
}

func NewDailySummaryRepository(conn database.Conn) DailySummaryRepository {
	return &dailySummaryRepository{
		conn: conn,
	}
}

// SaveOrUpdate upserts every summary in one transaction
func (r *dailySummaryRepository) SaveOrUpdate(ctx context.Context, summaries []*domain.DailySummary) error {
	if len(summaries) == 0 {
		return nil
	}

	return r.conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		for _, summary := range summaries {
			query, args, err := builder(r.conn).
				Insert(dailySummariesTable).
				Columns("date", "sales_count", "total", "updated_at").
				Values(summary.Date, summary.SalesCount, summary.Total.String(), millis(summary.UpdatedAt)).
				Suffix("ON CONFLICT (date) DO UPDATE SET sales_count = excluded.sales_count, total = excluded.total, updated_at = excluded.updated_at").
				ToSql()
			if err != nil {
				return err
			}

			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("save summary %s: %w", summary.Date, err)
			}
		}
		return nil
	})
}

// List returns summaries between the inclusive dates, newest first.
// An empty bound leaves that side open.
func (r *dailySummaryRepository) List(ctx context.Context, fromDate, toDate string) ([]*domain.DailySummary, error) {
	queryBuilder := builder(r.conn).
		Select("date", "sales_count", "total", "updated_at").
		From(dailySummariesTable).
		OrderBy("date DESC")

	if fromDate != "" {
		queryBuilder = queryBuilder.Where(squirrel.GtOrEq{"date": fromDate})
	}
	if toDate != "" {
		queryBuilder = queryBuilder.Where(squirrel.LtOrEq{"date": toDate})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]*domain.DailySummary, 0)
	for rows.Next() {
		var (
			summary   domain.DailySummary
			total     string
			updatedAt int64
		)

		if err := rows.Scan(&summary.Date, &summary.SalesCount, &total, &updatedAt); err != nil {
			return nil, err
		}

		summary.Total, err = decimal.NewFromString(total)
		if err != nil {
			summary.Total = decimal.Zero
		}
		summary.UpdatedAt = fromMillis(updatedAt)

		summaries = append(summaries, &summary)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return summaries, nil
}
