package handlers

import (
	"net/http"

	"invadmin-stock-services/internal/queue"
	"invadmin-stock-services/internal/reconcile"
	"invadmin-stock-services/pkg/response"

	"go.uber.org/zap"
)

// CartSubmit freezes the session's cart and reconciles every staged line
// against a fresh read of the backing store, one write per line in cart
// order. The cart is cleared once the run completes, whatever the per-line
// outcomes; if the fresh read fails the run never starts and the cart thaws
// with its lines intact.
func (h *Handler) CartSubmit(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	c := h.Carts.Get(s.Key)

	entries, err := c.BeginSubmit()
	if err != nil {
		writeCartError(w, err)
		return
	}

	reconciler := reconcile.New(h.Gateway, h.Logger, func(runID string, entry reconcile.EntryResult) {
		if h.WS != nil {
			h.WS.EntryDone(s.Key, runID, entry)
		}
		if entry.Status == reconcile.EntryOK {
			h.Events.StockAdjusted(queue.StockAdjustedEvent{
				RunID:         runID,
				ItemID:        entry.ItemID,
				ItemName:      entry.ItemName,
				Quantity:      entry.Quantity,
				PreviousStock: entry.PreviousStock,
				NewStock:      entry.NewStock,
				AdjustedAt:    nowUTC(),
			})
		}
	})

	result, err := reconciler.Run(r.Context(), s.Key, entries)
	if err != nil {
		c.Abort()
		writeGatewayError(w, err)
		return
	}
	c.Finish()

	h.Runs.Save(result)
	h.Events.RunCompleted(queue.RunCompletedEvent{
		RunID:      result.RunID,
		Attempted:  result.Attempted,
		Succeeded:  result.Succeeded,
		Failed:     result.Failed(),
		FinishedAt: result.FinishedAt,
	})
	if h.WS != nil {
		h.WS.RunCompleted(s.Key, result)
	}

	if result.Failed() > 0 {
		h.Logger.Warn("stock run partially failed",
			zap.String("runId", result.RunID),
			zap.Int("failed", result.Failed()),
		)
	}
	response.Success(w, result)
}
