package handlers

import (
	"io/fs"
	"net/http"

	"github.com/diewo77/go-records/internal/metrics"
	"github.com/diewo77/go-records/internal/services"
	"github.com/diewo77/go-records/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Deps is everything the router needs.
type Deps struct {
	DB      *gorm.DB
	Log     *logrus.Logger
	View    *view.Renderer
	Static  fs.FS
	Metrics *metrics.Metrics
	Clients *services.ClientService
	People  *services.PersonService
}

// NewRouter registers every page, asset and operational route.
func NewRouter(d Deps) http.Handler {
	pages := NewPages(d.View, d.Log)
	ch := NewClientHandler(pages, d.Clients)
	ph := NewPersonHandler(pages, d.People)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(Recoverer(pages))

	r.NotFound(pages.NotFound)
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		pages.Status(w, r, http.StatusMethodNotAllowed, "That action is not allowed here.")
	})

	r.Get("/", pages.Home(d.Clients.Count, d.People.Count))
	r.Get("/health", Health)
	r.Get("/healthz", Ready(d.DB))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	if d.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(d.Static))))
	}

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", ch.List)
		r.Get("/new", ch.New)
		r.Post("/", ch.Create)
		r.Get("/{id}", ch.View)
		r.Get("/{id}/edit", ch.Edit)
		r.Post("/{id}", ch.Update)
		r.Post("/{id}/delete", ch.Delete)
	})

	r.Route("/people", func(r chi.Router) {
		r.Get("/", ph.List)
		r.Get("/new", ph.New)
		r.Post("/", ph.Create)
		r.Get("/{id}", ph.View)
		r.Get("/{id}/edit", ph.Edit)
		r.Post("/{id}", ph.Update)
		r.Post("/{id}/delete", ph.Delete)
	})

	return r
}
