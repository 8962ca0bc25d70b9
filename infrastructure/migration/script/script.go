// Command script imports a JSON export of the hosted record store
// ({"products": {key: product}, "sales": {key: sale}}) into the configured
// database. Records keep their keys, so running it twice is harmless.
package main

import (
	"context"
	"os"
	"sort"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type export struct {
	Products map[string]domain.Product `json:"products"`
	Sales    map[string]domain.Sale    `json:"sales"`
}

type importResult struct {
	Products int
	Sales    int
	Errors   int
}

type migratingConn interface {
	database.Conn
	Migrate(ctx context.Context) error
}

func main() {
	file := pflag.StringP("file", "f", "export.json", "path of the JSON export to import")
	pflag.Parse()

	cfg, err := config.NewConfig()
	if err != nil {
		log.L.Fatal(err)
	}
	log.Configure(cfg.App.LogLevel)
	log.L.Info("starting import...")

	ctx := context.Background()

	data, err := readExport(*file)
	if err != nil {
		log.L.WithError(err).Fatal("could not read export")
	}

	conn, err := connect(ctx, cfg.Database)
	if err != nil {
		log.L.WithError(err).Fatal("could not connect to the database")
	}
	defer conn.Close()

	if err := conn.Migrate(ctx); err != nil {
		log.L.WithError(err).Fatal("could not create database schema")
	}

	result := importExport(ctx, repository.NewProductRepository(conn), repository.NewSaleRepository(conn), data)

	log.L.WithFields(log.Fields{
		"products": result.Products,
		"sales":    result.Sales,
		"errors":   result.Errors,
	}).Info("import finished")

	if result.Errors > 0 {
		os.Exit(1)
	}
}

func connect(ctx context.Context, dbConfig config.Database) (migratingConn, error) {
	if dbConfig.Driver == config.DriverPostgres {
		return postgres.NewConnection(ctx, dbConfig)
	}
	return sqlite.NewConnection(ctx, dbConfig)
}

func readExport(path string) (export, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return export{}, err
	}

	var data export
	if err := json.Unmarshal(raw, &data); err != nil {
		return export{}, errors.Wrapf(err, "decode %s", path)
	}

	return data, nil
}

// importExport upserts every record, counting failures instead of stopping at the first one
func importExport(ctx context.Context, products repository.ProductRepository, sales repository.SaleRepository, data export) importResult {
	var result importResult

	log.L.Infof("importing %d products...", len(data.Products))
	startTime := time.Now()

	for i, key := range sortedKeys(data.Products) {
		if err := products.Upsert(ctx, key, data.Products[key]); err != nil {
			log.L.WithError(err).Errorf("could not import product [%d/%d] %s", i+1, len(data.Products), key)
			result.Errors++
			continue
		}
		result.Products++
	}

	log.L.Infof("products imported in %v", time.Since(startTime))

	log.L.Infof("importing %d sales...", len(data.Sales))
	startTime = time.Now()

	for i, key := range sortedKeys(data.Sales) {
		if err := sales.Upsert(ctx, key, data.Sales[key]); err != nil {
			log.L.WithError(err).Errorf("could not import sale [%d/%d] %s", i+1, len(data.Sales), key)
			result.Errors++
			continue
		}
		result.Sales++

		if i > 0 && i%100 == 0 {
			log.L.Infof("progress: %d/%d sales", i+1, len(data.Sales))
		}
	}

	log.L.Infof("sales imported in %v", time.Since(startTime))

	return result
}

func sortedKeys[T any](records map[string]T) []string {
	keys := make([]string, 0, len(records))
	for key := range records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
