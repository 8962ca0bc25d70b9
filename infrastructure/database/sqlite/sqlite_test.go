package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
)

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()

	conn, err := Open(ctx, MemoryDSN)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.Migrate(ctx))
	require.NoError(t, conn.Migrate(ctx))

	for _, table := range []string{"products", "sales", "users", "sessions", "daily_summaries"} {
		var name string
		err := conn.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&name)
		assert.NoError(t, err, table)
		assert.Equal(t, table, name)
	}

	assert.Equal(t, database.SQLite, conn.Dialect())
}

func TestBuilderUsesQuestionPlaceholders(t *testing.T) {
	query, args, err := database.Builder(database.SQLite).
		Select("id").From("products").Where("id = ?", "p1").ToSql()
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM products WHERE id = ?", query)
	assert.Equal(t, []interface{}{"p1"}, args)

	query, _, err = database.Builder(database.Postgres).
		Select("id").From("products").Where("id = ?", "p1").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM products WHERE id = $1", query)
}
