// Package server assembles the HTTP API: middleware, routes and lifecycle.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osse101/ItemForge_Go/internal/backpack"
	"github.com/osse101/ItemForge_Go/internal/catalog"
	"github.com/osse101/ItemForge_Go/internal/crafting"
	"github.com/osse101/ItemForge_Go/internal/drop"
	"github.com/osse101/ItemForge_Go/internal/economy"
	"github.com/osse101/ItemForge_Go/internal/eventlog"
	"github.com/osse101/ItemForge_Go/internal/handler"
	"github.com/osse101/ItemForge_Go/internal/logger"
	"github.com/osse101/ItemForge_Go/internal/metrics"
	"github.com/osse101/ItemForge_Go/internal/sse"
	"github.com/osse101/ItemForge_Go/internal/trade"
	"github.com/osse101/ItemForge_Go/internal/upgrade"
)

// Options configures the HTTP surface
type Options struct {
	Port              int
	APIKey            string
	AdminAPIKey       string
	TrustedProxies    []string
	MaxBodyBytes      int64
	RequestsPerWindow int
}

// Services are the engines the routes dispatch to
type Services struct {
	Store    handler.Pinger
	Drops    drop.Service
	Upgrades upgrade.Service
	Crafting crafting.Service
	Economy  economy.Service
	Backpack backpack.Service
	Catalog  catalog.Service
	Events   eventlog.Service
	Trades   trade.Service

	// Stream is optional; without it the live event route is not mounted
	Stream *sse.Hub
}

type Server struct {
	httpServer *http.Server
}

// NewServer creates a new Server instance
func NewServer(opts Options, svc Services) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", opts.Port),
			Handler:           NewRouter(opts, svc),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the chi router. Middleware runs outermost first.
func NewRouter(opts Options, svc Services) http.Handler {
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	proxies := ParseTrustedProxies(opts.TrustedProxies)
	tracker := NewActivityTracker(opts.RequestsPerWindow)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeadersMiddleware())
	r.Use(loggingMiddleware)
	r.Use(RateLimitMiddleware(proxies, tracker))
	r.Use(AuthMiddleware(opts.APIKey, proxies, tracker))
	r.Use(RequestSizeLimitMiddleware(maxBody))
	r.Use(metrics.Middleware)

	r.Get("/healthz", handler.HandleHealthz())
	r.Get("/readyz", handler.HandleReadyz(svc.Store))
	r.Get("/version", handler.HandleVersion())
	r.Handle("/metrics", promhttp.Handler())

	admin := handler.NewAdminHandler(svc.Catalog, svc.Events)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/drops", handler.HandleDrop(svc.Drops))
		r.Post("/combine", handler.HandleCombine(svc.Crafting))
		r.Get("/inventory", handler.HandleInventory(svc.Backpack))
		r.Get("/history", handler.HandleCallerHistory(svc.Events))
		if svc.Stream != nil {
			r.Get("/events/stream", sse.Handler(svc.Stream))
		}

		r.Route("/items/{id}", func(r chi.Router) {
			r.Get("/", handler.HandleGetItem(svc.Backpack))
			r.Get("/history", handler.HandleItemHistory(svc.Events))
			r.Post("/open", handler.HandleOpenBox(svc.Drops))
			r.Post("/upgrade/level", handler.HandleUpgradeLevel(svc.Upgrades))
			r.Post("/upgrade/points", handler.HandleUpgradeAddPoints(svc.Upgrades))
			r.Post("/transfer", handler.HandleTransfer(svc.Backpack))
			r.Post("/discard", handler.HandleDiscard(svc.Backpack))
			r.Post("/pickup", handler.HandlePickup(svc.Backpack))
		})

		r.Post("/trades", handler.HandleOpenTrade(svc.Trades))
		r.Route("/trades/{id}", func(r chi.Router) {
			r.Get("/", handler.HandleGetTrade(svc.Trades))
			r.Put("/offer", handler.HandleSetOffer(svc.Trades))
			r.Post("/approve", handler.HandleApproveTrade(svc.Trades))
			r.Post("/cancel", handler.HandleCancelTrade(svc.Trades))
		})

		r.Route("/shop", func(r chi.Router) {
			r.Post("/buy", handler.HandleBuy(svc.Economy))
			r.Post("/sell", handler.HandleSell(svc.Economy))
			r.Get("/quote/{id}", handler.HandleQuote(svc.Economy))
			r.Get("/prices", handler.HandlePriceList(svc.Economy))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(AdminMiddleware(opts.AdminAPIKey))

			r.Put("/drop-params/{tier}", admin.HandleSetDropParams)
			r.Put("/box-drop-params/{tier}", admin.HandleSetBoxDropParams)
			r.Get("/templates/{id}", admin.HandleGetTemplate)
			r.Put("/templates/{id}", admin.HandleUpsertTemplate)
			r.Put("/upgrade-rules", admin.HandleSetUpgradeRules)
			r.Post("/recipes", admin.HandleCreateRecipe)
			r.Get("/recipes", admin.HandleListRecipes)
			r.Post("/wallets/{owner}/grant", admin.HandleGrantCurrency)
			r.Get("/events", admin.HandleQueryEvents)
			r.Post("/events/cleanup", admin.HandleCleanupEvents)
			r.Get("/cache/stats", admin.HandleGetCacheStats)
		})
	})

	return r
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.written {
		rw.statusCode = statusCode
		rw.written = true
		rw.ResponseWriter.WriteHeader(statusCode)
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying Flusher
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// loggingMiddleware tags each request with a request id and logs start and
// completion. Probe and scrape paths are not logged.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		ctx := logger.WithRequestID(r.Context(), logger.GenerateRequestID())
		if caller := r.Header.Get(handler.HeaderCallerID); caller != "" {
			ctx = logger.WithCaller(ctx, caller)
		}
		r = r.WithContext(ctx)
		log := logger.FromContext(ctx)

		log.Info(LogMsgRequestStarted,
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr)

		sanitized := make(http.Header, len(r.Header))
		for k, v := range r.Header {
			if strings.EqualFold(k, HeaderAPIKey) || strings.EqualFold(k, HeaderAdminKey) || strings.EqualFold(k, HeaderAuthorization) {
				sanitized[k] = []string{RedactedValue}
			} else {
				sanitized[k] = v
			}
		}
		log.Debug(LogMsgRequestHeaders, "headers", sanitized)

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		log.Info(LogMsgRequestCompleted,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds())
	})
}

// Start serves until Stop is called
func (s *Server) Start() error {
	slog.Info(LogMsgServerStarting, "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
