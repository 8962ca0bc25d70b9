// Package router maps method and path pairs to handlers on top of httprouter.
// Routes can be grouped under a path prefix sharing a middleware chain.
package router

import (
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/vfg2006/sales-dashboard-api/pkg/apiErrors"
)

// Middleware wraps a handler. In every list the first middleware runs first.
type Middleware = func(http.Handler) http.Handler

type Route struct {
	Path        string
	Method      string
	Handler     http.Handler
	Middlewares []Middleware
}

// Group registers Routes under Prefix. The group middlewares run before the
// middlewares of each route.
type Group struct {
	Prefix      string
	Middlewares []Middleware
	Routes      []Route
}

type Option func(router *Router)

func WithRoutes(routes ...Route) Option {
	return func(router *Router) {
		router.AddRoutes(routes...)
	}
}

func WithGroup(group Group) Option {
	return func(router *Router) {
		router.AddGroup(group)
	}
}

type Router struct {
	mux        *httprouter.Router
	registered []string
}

// New builds a router whose unmatched requests get the JSON error body used by
// every other endpoint
func New(opts ...Option) *Router {
	mux := httprouter.New()
	mux.NotFound = http.HandlerFunc(notFound)
	mux.MethodNotAllowed = http.HandlerFunc(methodNotAllowed)

	router := &Router{mux: mux}
	for _, opt := range opts {
		opt(router)
	}

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *Router) AddRoutes(routes ...Route) {
	for _, route := range routes {
		r.handle(route.Method, route.Path, chain(route.Middlewares).Then(route.Handler))
	}
}

func (r *Router) AddGroup(group Group) {
	shared := chain(group.Middlewares)
	for _, route := range group.Routes {
		handler := shared.Extend(chain(route.Middlewares)).Then(route.Handler)
		r.handle(route.Method, joinPath(group.Prefix, route.Path), handler)
	}
}

// Routes lists the registered endpoints as "METHOD path", in registration order
func (r *Router) Routes() []string {
	routes := make([]string, len(r.registered))
	copy(routes, r.registered)
	return routes
}

func (r *Router) handle(method, path string, handler http.Handler) {
	r.mux.Handler(method, path, handler)
	r.registered = append(r.registered, method+" "+path)
}

func chain(middlewares []Middleware) alice.Chain {
	constructors := make([]alice.Constructor, len(middlewares))
	for i, m := range middlewares {
		constructors[i] = alice.Constructor(m)
	}
	return alice.New(constructors...)
}

func joinPath(prefix, path string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	switch {
	case path == "" || path == "/":
		if prefix == "" {
			return "/"
		}
		return prefix
	case strings.HasPrefix(path, "/"):
		return prefix + path
	default:
		return prefix + "/" + path
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	apiErrors.WriteError(w, apiErrors.ErrRouteNotFound, "no route for "+r.URL.Path, nil)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apiErrors.WriteError(w, apiErrors.ErrMethodNotAllowed, r.Method+" is not allowed on "+r.URL.Path, nil)
}
