// Package handlers serves the HTML pages for clients and people plus the
// home, health and error pages.
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/diewo77/go-records/httpx"
	"github.com/diewo77/go-records/internal/db"
	"github.com/diewo77/go-records/internal/logging"
	"github.com/diewo77/go-records/view"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Pages renders the shared pages and the error responses every handler uses.
type Pages struct {
	view *view.Renderer
	log  *logrus.Logger
}

func NewPages(v *view.Renderer, log *logrus.Logger) *Pages {
	return &Pages{view: v, log: log}
}

func (p *Pages) entry(r *http.Request) *logrus.Entry {
	return logging.FromContext(r.Context(), p.log)
}

// render writes a page; a template failure falls back to a plain 500.
func (p *Pages) render(w http.ResponseWriter, r *http.Request, status int, name string, data map[string]any) {
	if err := p.view.Render(w, r, status, name, data); err != nil {
		p.entry(r).WithError(err).WithField("template", name).Error("render failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// NotFound renders the 404 status page.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Status(w, r, http.StatusNotFound, "The page you requested could not be found.")
}

// Status renders the status-code page for code.
func (p *Pages) Status(w http.ResponseWriter, r *http.Request, code int, msg string) {
	if code >= 400 {
		p.entry(r).WithFields(logrus.Fields{"status": code, "path": r.URL.Path}).
			Warnf("HTTP %d returned for path %s", code, r.URL.Path)
	}
	p.render(w, r, code, "status.html", map[string]any{
		"Status":  code,
		"Message": msg,
	})
}

// Error logs err and renders the error page with the request id.
func (p *Pages) Error(w http.ResponseWriter, r *http.Request, err error) {
	p.entry(r).WithError(err).Error("unhandled error")
	p.render(w, r, http.StatusInternalServerError, "error.html", nil)
}

// Counter reports how many active records exist. Implemented by the services.
type Counter func(ctx context.Context) (int, error)

// Home renders the landing page with active record counts.
func (p *Pages) Home(clients, people Counter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nc, err := clients(r.Context())
		if err != nil {
			p.Error(w, r, err)
			return
		}
		np, err := people(r.Context())
		if err != nil {
			p.Error(w, r, err)
			return
		}
		p.render(w, r, http.StatusOK, "home.html", map[string]any{
			"ClientCount": nc,
			"PersonCount": np,
		})
	}
}

// Health reports liveness without touching the database.
func Health(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready pings the database.
func Ready(conn *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(conn.WithContext(r.Context())); err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database unavailable", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok", "database": "ok"})
	}
}

// pathID parses the {id} route parameter.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// chiID returns the raw {id} parameter for logging.
func chiID(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// showDeleted reads the showDeleted query flag.
func showDeleted(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("showDeleted"))
	return v
}
