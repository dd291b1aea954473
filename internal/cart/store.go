package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Store hands out one cart per session key. Carts are created on first touch
// and reaped after sitting idle, which is how "the staged cart is lost when
// the session ends" behaves server-side.
type Store struct {
	logger  *zap.Logger
	idleTTL time.Duration

	mu    sync.Mutex
	carts map[string]*storedCart
}

type storedCart struct {
	cart      *Cart
	lastTouch time.Time
}

func NewStore(idleTTL time.Duration, logger *zap.Logger) *Store {
	return &Store{
		logger:  logger,
		idleTTL: idleTTL,
		carts:   make(map[string]*storedCart),
	}
}

// Get returns the session's cart, creating it if needed, and refreshes the
// idle clock.
func (s *Store) Get(sessionKey string) *Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.carts[sessionKey]
	if !ok {
		entry = &storedCart{cart: New()}
		s.carts[sessionKey] = entry
	}
	entry.lastTouch = time.Now()
	return entry.cart
}

// Sweep drops carts idle past the TTL. A cart mid-submission is never
// reaped, whatever its idle time.
func (s *Store) Sweep() int {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key, entry := range s.carts {
		if entry.lastTouch.After(cutoff) {
			continue
		}
		if entry.cart.State() == StateSubmitting {
			continue
		}
		delete(s.carts, key)
		removed++
	}
	return removed
}

// RunJanitor sweeps periodically until ctx is done.
func (s *Store) RunJanitor(ctx context.Context) {
	ticker := time.NewTicker(s.idleTTL / 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := s.Sweep(); removed > 0 {
				s.logger.Info("idle carts reaped", zap.Int("count", removed))
			}
		}
	}
}
