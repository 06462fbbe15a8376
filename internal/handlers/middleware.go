package handlers

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/diewo77/go-records/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// RequestLogger puts a request-scoped logrus entry (carrying the request id)
// in the context and logs each request once it finished.
func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			entry := log.WithField("request_id", middleware.GetReqID(r.Context()))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logging.WithEntry(r.Context(), entry)))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			entry.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}).Info("http request")
		})
	}
}

// Recoverer turns a panic into the error page.
func Recoverer(p *Pages) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				p.entry(r).WithField("stack", string(debug.Stack())).
					Errorf("Unhandled panic. Request ID: %s", middleware.GetReqID(r.Context()))
				p.Error(w, r, fmt.Errorf("panic: %v", rvr))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
