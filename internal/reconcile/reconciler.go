// Package reconcile turns a staged cart into authoritative stock writes: one
// fresh catalog read, then one full-record update per staged line, strictly
// in cart order.
package reconcile

import (
	"context"
	"time"

	"invadmin-stock-services/internal/cart"
	"invadmin-stock-services/internal/gateway"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var nowFunc = time.Now

// ErrRunCancelled is the per-entry code recorded for lines that were still
// pending when the run's context was cancelled. Cancellation is cooperative:
// it is only observed between entries, never mid-write.
const ErrRunCancelled = "RUN_CANCELLED"

// Store is the slice of the backing store the reconciler touches.
type Store interface {
	ListItems(ctx context.Context) ([]gateway.Item, error)
	UpdateItem(ctx context.Context, itemID int64, update gateway.ItemUpdate) error
}

// ProgressFunc observes each entry as it completes, in run order.
type ProgressFunc func(runID string, entry EntryResult)

type Reconciler struct {
	store    Store
	logger   *zap.Logger
	progress ProgressFunc
}

func New(store Store, logger *zap.Logger, progress ProgressFunc) *Reconciler {
	return &Reconciler{store: store, logger: logger, progress: progress}
}

// Run applies the staged entries against a fresh snapshot of the store.
//
// Every entry's new total is current stock from that snapshot plus the staged
// quantity, written back together with every other mutable field read from
// the same snapshot record. Entries are processed sequentially; one entry's
// failure is recorded and the run moves on. Two entries for the same item
// each compute from the snapshot independently, so the later write wins on
// the literal value rather than summing the deltas.
//
// A snapshot fetch failure aborts before any write and is the only error Run
// returns; everything after that point lands in the aggregate Result.
func (r *Reconciler) Run(ctx context.Context, sessionKey string, entries []cart.Entry) (*Result, error) {
	items, err := r.store.ListItems(ctx)
	if err != nil {
		r.logger.Warn("stock run snapshot fetch failed", zap.Error(err))
		return nil, err
	}

	snapshot := make(map[int64]gateway.Item, len(items))
	for _, item := range items {
		snapshot[item.ID] = item
	}

	result := &Result{
		RunID:      uuid.NewString(),
		SessionKey: sessionKey,
		Attempted:  len(entries),
		StartedAt:  nowFunc(),
		Entries:    make([]EntryResult, 0, len(entries)),
	}

	r.logger.Info("stock run started",
		zap.String("runId", result.RunID),
		zap.Int("entries", len(entries)),
	)

	for i, entry := range entries {
		if ctx.Err() != nil {
			r.recordCancelled(result, entries[i:])
			break
		}
		r.record(result, r.applyEntry(ctx, snapshot, entry))
	}

	result.FinishedAt = nowFunc()
	r.logger.Info("stock run finished",
		zap.String("runId", result.RunID),
		zap.Int("attempted", result.Attempted),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed()),
	)
	return result, nil
}

func (r *Reconciler) applyEntry(ctx context.Context, snapshot map[int64]gateway.Item, entry cart.Entry) EntryResult {
	item, ok := snapshot[entry.ItemID]
	if !ok {
		notFound := gateway.ItemNotFoundError(entry.ItemID)
		return EntryResult{
			ItemID:       entry.ItemID,
			Quantity:     entry.Quantity,
			Status:       EntryFailed,
			ErrorCode:    string(notFound.Code),
			ErrorMessage: notFound.Message,
		}
	}

	update := gateway.UpdateOf(item)
	update.Stock = item.Stock + entry.Quantity

	out := EntryResult{
		ItemID:        entry.ItemID,
		ItemName:      item.Name,
		Quantity:      entry.Quantity,
		PreviousStock: item.Stock,
		NewStock:      update.Stock,
	}
	if err := r.store.UpdateItem(ctx, entry.ItemID, update); err != nil {
		out.Status = EntryFailed
		out.ErrorCode = string(gateway.CodeOf(err))
		out.ErrorMessage = err.Error()
		return out
	}
	out.Status = EntryOK
	return out
}

func (r *Reconciler) record(result *Result, entry EntryResult) {
	result.Entries = append(result.Entries, entry)
	if entry.Status == EntryOK {
		result.Succeeded++
		r.logger.Info("stock entry applied",
			zap.String("runId", result.RunID),
			zap.Int64("itemId", entry.ItemID),
			zap.Int("previousStock", entry.PreviousStock),
			zap.Int("newStock", entry.NewStock),
		)
	} else {
		r.logger.Warn("stock entry failed",
			zap.String("runId", result.RunID),
			zap.Int64("itemId", entry.ItemID),
			zap.String("code", entry.ErrorCode),
			zap.String("message", entry.ErrorMessage),
		)
	}
	if r.progress != nil {
		r.progress(result.RunID, entry)
	}
}

func (r *Reconciler) recordCancelled(result *Result, pending []cart.Entry) {
	for _, entry := range pending {
		r.record(result, EntryResult{
			ItemID:       entry.ItemID,
			Quantity:     entry.Quantity,
			Status:       EntryFailed,
			ErrorCode:    ErrRunCancelled,
			ErrorMessage: "run cancelled before this entry was applied",
		})
	}
}
