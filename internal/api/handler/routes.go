package handler

import (
	"net/http"

	"github.com/vfg2006/sales-dashboard-api/infrastructure/repository"
	"github.com/vfg2006/sales-dashboard-api/internal/api/handler/router"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/authenticating"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/dashboard"
	"github.com/vfg2006/sales-dashboard-api/internal/usecases/selling"
	"github.com/vfg2006/sales-dashboard-api/pkg/middleware"
)

func guarded() []router.Middleware {
	return []router.Middleware{middleware.RequireSession()}
}

func Healthcheck(db Pinger) []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(db),
		},
	}
}

func Authentication(service authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    middleware.LoginPath,
			Method:  http.MethodGet,
			Handler: LoginPage(),
		},
		{
			Path:    middleware.LoginPath,
			Method:  http.MethodPost,
			Handler: Login(service),
		},
		{
			Path:        "/logout",
			Method:      http.MethodPost,
			Handler:     Logout(service),
			Middlewares: guarded(),
		},
		{
			Path:        "/admin/me",
			Method:      http.MethodGet,
			Handler:     GetMe(service),
			Middlewares: guarded(),
		},
	}
}

func Dashboard(viewer dashboard.Viewer, auth authenticating.Authenticator) []router.Route {
	return []router.Route{
		{
			Path:    publicPath,
			Method:  http.MethodGet,
			Handler: PublicDashboard(viewer),
		},
		{
			Path:    "/stream",
			Method:  http.MethodGet,
			Handler: PublicStream(viewer),
		},
		{
			Path:        adminPath,
			Method:      http.MethodGet,
			Handler:     AdminDashboard(viewer),
			Middlewares: guarded(),
		},
		{
			Path:        "/admin/stream",
			Method:      http.MethodGet,
			Handler:     AdminStream(viewer, auth),
			Middlewares: guarded(),
		},
	}
}

const adminPrefix = "/admin"

func Selling(seller selling.Seller) router.Group {
	return router.Group{
		Prefix:      adminPrefix,
		Middlewares: guarded(),
		Routes: []router.Route{
			{
				Path:    "/sales",
				Method:  http.MethodPost,
				Handler: SubmitSale(seller),
			},
			{
				Path:    "/sales/:id",
				Method:  http.MethodPut,
				Handler: UpdateSale(seller),
			},
			{
				Path:    "/sales/:id",
				Method:  http.MethodDelete,
				Handler: DeleteSale(seller),
			},
			{
				Path:    "/products",
				Method:  http.MethodPost,
				Handler: AddProduct(seller),
			},
			{
				Path:    "/products/:id",
				Method:  http.MethodDelete,
				Handler: DeleteProduct(seller),
			},
			{
				Path:    "/form",
				Method:  http.MethodPost,
				Handler: FormTransition(seller),
			},
		},
	}
}

func DailySummaries(summaries repository.DailySummaryRepository) router.Group {
	return router.Group{
		Prefix:      adminPrefix,
		Middlewares: guarded(),
		Routes: []router.Route{
			{
				Path:    "/summaries",
				Method:  http.MethodGet,
				Handler: ListDailySummaries(summaries),
			},
		},
	}
}

func CronJobs(services CronJobServices) router.Group {
	return router.Group{
		Prefix:      adminPrefix,
		Middlewares: guarded(),
		Routes: []router.Route{
			{
				Path:    "/cron/:type/run",
				Method:  http.MethodPost,
				Handler: RunCronJob(services),
			},
			{
				Path:    "/cron",
				Method:  http.MethodGet,
				Handler: GetCronStatus(services),
			},
		},
	}
}
