package handlers

import (
	"context"

	"invadmin-stock-services/internal/cart"
	"invadmin-stock-services/internal/catalog"
	"invadmin-stock-services/internal/config"
	"invadmin-stock-services/internal/gateway"
	"invadmin-stock-services/internal/queue"
	"invadmin-stock-services/internal/reconcile"
	"invadmin-stock-services/internal/ws"

	"go.uber.org/zap"
)

// StockGateway is everything the handlers need from the backing store.
type StockGateway interface {
	ListItems(ctx context.Context) ([]gateway.Item, error)
	ListCategories(ctx context.Context) ([]gateway.Category, error)
	UpdateItem(ctx context.Context, itemID int64, update gateway.ItemUpdate) error
}

type Handler struct {
	Logger  *zap.Logger
	Config  config.Config
	Gateway StockGateway
	Catalog *catalog.Index
	Carts   *cart.Store
	Runs    *reconcile.Runs
	Events  *queue.Publisher
	WS      *ws.Server
}
