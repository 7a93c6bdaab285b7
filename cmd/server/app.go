package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/viktorvidual/invoices/httpx"
	"github.com/viktorvidual/invoices/internal/cache"
	"github.com/viktorvidual/invoices/internal/handlers"
	"github.com/viktorvidual/invoices/internal/logger"
	"go.uber.org/zap"
)

const headerRequestID = "X-Request-ID"

// App is the main application handler that sets up all routes.
type App struct {
	mux      *http.ServeMux
	handler  http.Handler
	log      *zap.Logger
	invoices *handlers.InvoiceHandler
	views    *cache.ViewCache
}

// NewApp creates a new application with all routes configured.
func NewApp(log *zap.Logger, invoices *handlers.InvoiceHandler, views *cache.ViewCache, allowedOrigins []string) *App {
	app := &App{
		mux:      http.NewServeMux(),
		log:      log,
		invoices: invoices,
		views:    views,
	}
	app.setupRoutes()

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", headerRequestID},
		AllowCredentials: true,
	})
	app.handler = alice.New(app.recoverPanic, app.logRequest, c.Handler).Then(app.mux)
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	ih := a.invoices

	// Invoice mutations
	a.mux.HandleFunc("POST /dashboard/invoices", ih.Create)
	a.mux.HandleFunc("POST /dashboard/invoices/{id}", ih.Update)
	a.mux.HandleFunc("PUT /dashboard/invoices/{id}", ih.Update)
	a.mux.HandleFunc("POST /dashboard/invoices/{id}/delete", ih.Delete)
	a.mux.HandleFunc("DELETE /dashboard/invoices/{id}", ih.Delete)

	// Reads are served through the view cache that mutations invalidate
	a.mux.Handle("GET /dashboard/invoices/{id}", cache.Middleware(a.views)(http.HandlerFunc(ih.Show)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// logRequest attaches a request scoped logger and logs the outcome.
func (a *App) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx, log := logger.WithRequestID(r.Context(), a.log, requestID)
		w.Header().Set(headerRequestID, requestID)

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r.WithContext(ctx))

		log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// recoverPanic turns a panic into a 500 response.
func (a *App) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				a.log.Error("panic recovered",
					zap.Error(fmt.Errorf("%v", rec)), zap.String("path", r.URL.Path), zap.Stack("stack"))
				w.Header().Set("Connection", "close")
				httpx.JSONError(w, http.StatusInternalServerError, "Internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}
