// Package repository implements SQL persistence with squirrel, portable between
// the postgres and sqlite backends.
package repository

import (
	"time"

	"github.com/Masterminds/squirrel"
	jsoniter "github.com/json-iterator/go"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
)

//go:generate mockgen -source=user.go -destination=mocks/user.go -package=mocks
//go:generate mockgen -source=session.go -destination=mocks/session.go -package=mocks
//go:generate mockgen -source=sale.go -destination=mocks/sale.go -package=mocks
//go:generate mockgen -source=daily_summary.go -destination=mocks/daily_summary.go -package=mocks

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func builder(conn database.Conn) squirrel.StatementBuilderType {
	return database.Builder(conn.Dialect())
}

func millis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
