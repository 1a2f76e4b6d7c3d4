// Package module wires forecasts into the API using modkit
package module

import (
	"net/http"

	modkit "takt/internal/modkit"
	"takt/internal/modkit/httpkit"
	str "takt/internal/platform/strings"
	fchttp "takt/internal/services/forecast/http"
	fcrepo "takt/internal/services/forecast/repo"
	fcsvc "takt/internal/services/forecast/service"
)

// Module implements the forecast module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc fcsvc.Service
}

// New constructs the forecast module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("forecast"), modkit.WithPrefix("/forecast")}, opts...)...)

	repo := fcrepo.NewPG()
	events := fcrepo.NewCH(deps.CH)
	svc := fcsvc.New(deps.PG, events, repo, fcsvc.FromConfig(deps.Cfg))

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptForecastPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		fchttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }
