package queue

import (
	"context"
	"time"

	"go.uber.org/zap"
)

const (
	ExchangeEvents       = "invadmin.events"
	RoutingStockAdjusted = "stock.adjusted"
	RoutingRunCompleted  = "stock.run.completed"

	publishDeadline = 5 * time.Second
)

type StockAdjustedEvent struct {
	RunID         string    `json:"runId"`
	ItemID        int64     `json:"itemId"`
	ItemName      string    `json:"itemName"`
	Quantity      int       `json:"quantity"`
	PreviousStock int       `json:"previousStock"`
	NewStock      int       `json:"newStock"`
	AdjustedAt    time.Time `json:"adjustedAt"`
}

type RunCompletedEvent struct {
	RunID      string    `json:"runId"`
	Attempted  int       `json:"attempted"`
	Succeeded  int       `json:"succeeded"`
	Failed     int       `json:"failed"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Publisher is nil-safe: with no broker configured every publish is a no-op,
// and a failed publish is logged but never fails the stock write it follows.
type Publisher struct {
	client *Client
	logger *zap.Logger
}

func NewPublisher(client *Client, logger *zap.Logger) *Publisher {
	if client == nil {
		return nil
	}
	return &Publisher{client: client, logger: logger}
}

func (p *Publisher) StockAdjusted(event StockAdjustedEvent) {
	p.publish(RoutingStockAdjusted, event)
}

func (p *Publisher) RunCompleted(event RunCompletedEvent) {
	p.publish(RoutingRunCompleted, event)
}

func (p *Publisher) publish(routingKey string, payload any) {
	if p == nil || p.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishDeadline)
	defer cancel()
	if err := p.client.PublishJSON(ctx, ExchangeEvents, routingKey, payload); err != nil {
		p.logger.Warn("event publish failed",
			zap.String("routingKey", routingKey),
			zap.Error(err),
		)
	}
}
