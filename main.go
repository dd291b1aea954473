package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"invadmin-stock-services/internal/cart"
	"invadmin-stock-services/internal/config"
	"invadmin-stock-services/internal/gateway"
	httpapi "invadmin-stock-services/internal/http"
	"invadmin-stock-services/internal/logger"
	"invadmin-stock-services/internal/queue"
	"invadmin-stock-services/internal/ws"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.GatewayBaseURL == "" {
		log.Fatal("GATEWAY_BASE_URL is required")
	}

	var events *queue.Publisher
	if cfg.RabbitMQURL != "" {
		qc, err := queue.New(cfg.RabbitMQURL)
		if err != nil {
			if cfg.Env == "production" {
				log.Fatal("rabbitmq connection failed", zap.Error(err))
			}
			log.Warn("rabbitmq connection failed; continuing without events", zap.Error(err))
			qc = nil
		}
		if qc != nil {
			if err := qc.EnsureExchange(queue.ExchangeEvents); err != nil {
				if cfg.Env == "production" {
					log.Fatal("rabbitmq exchange failed", zap.Error(err))
				}
				log.Warn("rabbitmq exchange failed; continuing without events", zap.Error(err))
				_ = qc.Close()
				qc = nil
			}
		}
		if qc != nil {
			defer qc.Close()
			events = queue.NewPublisher(qc, log)
			log.Info("stock events enabled", zap.String("exchange", queue.ExchangeEvents))
		}
	} else {
		log.Info("stock events disabled (RABBITMQ_URL is empty)")
	}

	gatewayClient := gateway.New(cfg.GatewayBaseURL, cfg.GatewayTimeout, log)
	carts := cart.NewStore(cfg.CartIdleTTL, log)
	wsServer := ws.New(log, cfg.WSHeartbeatInterval)

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go carts.RunJanitor(janitorCtx)

	apiServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(gatewayClient, log, cfg, carts, events, wsServer),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("stock api ready", zap.String("base", "/api/stock"))
		log.Info("stock ws ready", zap.String("base", "/ws/stock"))
		log.Info("stock service listening", zap.String("addr", cfg.HTTPAddr))
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxShutdown); err != nil {
		log.Error("http server shutdown failed", zap.Error(err))
	}
}
