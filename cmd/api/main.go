package main

import (
	"context"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/database"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/database/sqlite"
	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/api"
	"github.com/vfg2006/sales-dashboard-api/internal/api/handler"
	"github.com/vfg2006/sales-dashboard-api/internal/config"
	"github.com/vfg2006/sales-dashboard-api/internal/domain"
	"github.com/vfg2006/sales-dashboard-api/internal/recordstore"
	"github.com/vfg2006/sales-dashboard-api/internal/scheduler"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
	"github.com/vfg2006/sales-dashboard-api/pkg/log"
)

// migratingConn is a connection that can create its own schema
type migratingConn interface {
	database.Conn
	Migrate(ctx context.Context) error
}

type notifier interface {
	recordstore.Notifier
	Close() error
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.L.Fatal(err)
	}

	log.Configure(cfg.App.LogLevel)
	log.L.Infof("log level set to %s", cfg.App.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, changes := openStore(ctx, cfg.Database)
	defer conn.Close()
	defer changes.Close()

	if err := conn.Migrate(ctx); err != nil {
		log.L.WithError(err).Fatal("could not create database schema")
	}

	productRepo := repository.NewProductRepository(conn)
	saleRepo := repository.NewSaleRepository(conn)
	userRepo := repository.NewUserRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	summaryRepo := repository.NewDailySummaryRepository(conn)

	products := recordstore.NewCollection[domain.Product](recordstore.ProductsCollection, productRepo, changes)
	sales := recordstore.NewCollection[domain.Sale](recordstore.SalesCollection, saleRepo, changes)

	authenticator := authenticating.NewService(userRepo, sessionRepo, cfg)
	ensureAdmin(ctx, authenticator, cfg.Auth)

	seller := selling.NewService(sales, products, cfg)

	viewer, err := dashboard.NewService(sales, products, cfg)
	if err != nil {
		log.L.Fatal(err)
	}

	dailySummaryService, err := scheduler.NewDailySummaryService(saleRepo, summaryRepo, authenticator, cfg)
	if err != nil {
		log.L.Fatal(err)
	}

	if err := dailySummaryService.Start(ctx); err != nil {
		log.L.WithError(err).Error("could not start the daily summary scheduler")
	}

	server, err := api.New(cfg, api.Services{
		Database:      conn,
		Authenticator: authenticator,
		Viewer:        viewer,
		Seller:        seller,
		Summaries:     summaryRepo,
		CronJobs: handler.CronJobServices{
			DailySummary: dailySummaryService,
		},
	})
	if err != nil {
		log.L.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		log.L.Error(err)
	}
}

// openStore connects to the configured database and picks the change
// notifier: postgres notifications reach every process, the local hub only
// this one
func openStore(ctx context.Context, dbConfig config.Database) (migratingConn, notifier) {
	switch dbConfig.Driver {
	case config.DriverPostgres:
		conn, err := postgres.NewConnection(ctx, dbConfig)
		if err != nil {
			log.L.WithError(err).Fatal("could not connect to PostgreSQL")
		}
		log.L.Info("connected to PostgreSQL")
		return conn, postgres.NewListener(conn)

	default:
		conn, err := sqlite.NewConnection(ctx, dbConfig)
		if err != nil {
			log.L.WithError(err).Fatal("could not open SQLite database")
		}
		log.L.WithField("path", dbConfig.DSN).Info("opened SQLite database")
		return conn, localNotifier{recordstore.NewLocalNotifier()}
	}
}

type localNotifier struct {
	*recordstore.LocalNotifier
}

func (n localNotifier) Close() error {
	n.LocalNotifier.Close()
	return nil
}

func ensureAdmin(ctx context.Context, auth authenticating.Authenticator, authConfig config.Auth) {
	if authConfig.AdminEmail == "" || authConfig.AdminPassword == "" {
		log.L.Info("no bootstrap admin configured")
		return
	}

	user, err := auth.EnsureAdmin(ctx, authConfig.AdminEmail, authConfig.AdminPassword, authConfig.AdminName)
	if err != nil {
		log.L.WithError(err).Fatal("could not create the bootstrap admin")
	}

	log.L.WithField("email", user.Email).Info("bootstrap admin ready")
}
