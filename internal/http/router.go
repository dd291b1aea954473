package httpapi

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"

	"invadmin-stock-services/internal/cart"
	"invadmin-stock-services/internal/catalog"
	"invadmin-stock-services/internal/config"
	"invadmin-stock-services/internal/gateway"
	"invadmin-stock-services/internal/http/handlers"
	"invadmin-stock-services/internal/middleware"
	"invadmin-stock-services/internal/queue"
	"invadmin-stock-services/internal/reconcile"
	"invadmin-stock-services/internal/ws"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

func NewRouter(gatewayClient *gateway.Client, logger *zap.Logger, cfg config.Config, carts *cart.Store, events *queue.Publisher, wsServer *ws.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger(logger))
	r.Use(middleware.RequestID())

	if cfg.Env == "development" || len(cfg.CorsAllowedOrigins) > 0 {
		options := cors.Options{
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{
				"Accept",
				"Authorization",
				"Content-Type",
				"X-Requested-With",
				"Cache-Control",
			},
			AllowCredentials: true,
			MaxAge:           300,
		}

		if cfg.Env == "development" {
			options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
				return true
			}
		} else {
			options.AllowedOrigins = cfg.CorsAllowedOrigins
		}

		r.Use(cors.Handler(options))
	}

	h := &handlers.Handler{
		Logger:  logger,
		Config:  cfg,
		Gateway: gatewayClient,
		Catalog: catalog.New(gatewayClient, logger),
		Carts:   carts,
		Runs:    reconcile.NewRuns(),
		Events:  events,
		WS:      wsServer,
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/stock", func(r chi.Router) {
		r.Use(middleware.BearerSession())

		r.Get("/catalog", h.StockCatalog)

		r.Get("/cart", h.CartGet)
		r.Post("/cart/items", h.CartAddItem)
		r.Post("/cart/items/{itemId}/increment", h.CartIncrementItem)
		r.Post("/cart/items/{itemId}/decrement", h.CartDecrementItem)
		r.Delete("/cart/items/{itemId}", h.CartRemoveItem)
		r.Post("/cart/submit", h.CartSubmit)

		r.Get("/runs", h.RunList)
		r.Get("/runs/{runId}", h.RunGet)
		r.Get("/runs/{runId}/report", h.RunReportPDF)
	})

	if wsServer != nil {
		r.With(middleware.BearerSession()).Get("/ws/stock/runs", wsServer.StockRunsWS)
	}

	return r
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

// Hijack keeps the websocket upgrade working behind the logger wrapper.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Info("",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
