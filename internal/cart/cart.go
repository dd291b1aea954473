// Package cart holds the staged bulk stock adjustment for one admin session.
// A cart lives only in process memory and is discarded once its session goes
// idle or its contents are submitted.
package cart

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")
	ErrSubmitting      = errors.New("cart is being submitted")
	ErrNotStaged       = errors.New("item is not staged in the cart")
	ErrEmpty           = errors.New("cart has no staged entries")
)

// UnpricedItemError reports a TotalValue call that hit an entry the supplied
// price lookup could not price. The total is an error in that case, never a
// silent zero.
type UnpricedItemError struct {
	ItemID int64
}

func (e *UnpricedItemError) Error() string {
	return fmt.Sprintf("no price available for item %d", e.ItemID)
}

type State string

const (
	StateStaging    State = "staging"
	StateSubmitting State = "submitting"
)

// Entry is one staged line: an item and the additive quantity to apply to its
// stock. Lines are not deduplicated; staging the same item twice keeps two
// lines.
type Entry struct {
	ItemID   int64 `json:"itemId"`
	Quantity int   `json:"quantity"`
}

// PriceLookup resolves a unit price for an item id. The second return is
// false when no price is known.
type PriceLookup func(itemID int64) (float64, bool)

type Cart struct {
	mu      sync.Mutex
	state   State
	entries []Entry
}

func New() *Cart {
	return &Cart{state: StateStaging}
}

// Add appends a new line. It never merges with an existing line for the same
// item; callers that want merged lines use MergedEntries before submitting.
func (c *Cart) Add(itemID int64, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStaging {
		return ErrSubmitting
	}
	c.entries = append(c.entries, Entry{ItemID: itemID, Quantity: quantity})
	return nil
}

// Increment raises the quantity of the first line matching itemID by one.
// First match wins when the item is staged on multiple lines.
func (c *Cart) Increment(itemID int64) error {
	return c.adjustFirst(itemID, +1)
}

// Decrement lowers the quantity of the first line matching itemID by one,
// flooring at 1. Reaching the floor never removes the line.
func (c *Cart) Decrement(itemID int64) error {
	return c.adjustFirst(itemID, -1)
}

func (c *Cart) adjustFirst(itemID int64, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStaging {
		return ErrSubmitting
	}
	for i := range c.entries {
		if c.entries[i].ItemID != itemID {
			continue
		}
		next := c.entries[i].Quantity + delta
		if next >= 1 {
			c.entries[i].Quantity = next
		}
		return nil
	}
	return ErrNotStaged
}

// Remove drops every line staged for itemID and reports how many lines were
// removed. Removal means "I no longer want this product in the bulk order",
// so it is per item, not per line.
func (c *Cart) Remove(itemID int64) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStaging {
		return 0, ErrSubmitting
	}
	kept := c.entries[:0]
	removed := 0
	for _, entry := range c.entries {
		if entry.ItemID == itemID {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	c.entries = kept
	if removed == 0 {
		return 0, ErrNotStaged
	}
	return removed, nil
}

// Entries returns a copy of the staged lines in staging order.
func (c *Cart) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Entry(nil), c.entries...)
}

// MergedEntries returns a copy with all lines for the same item summed into
// one, ordered by each item's first appearance. The cart itself is left
// unmerged.
func (c *Cart) MergedEntries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	index := make(map[int64]int, len(c.entries))
	merged := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		if at, ok := index[entry.ItemID]; ok {
			merged[at].Quantity += entry.Quantity
			continue
		}
		index[entry.ItemID] = len(merged)
		merged = append(merged, entry)
	}
	return merged
}

func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cart) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Cart) TotalQuantity() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, entry := range c.entries {
		total += entry.Quantity
	}
	return total
}

// TotalValue prices every staged line through lookup. An entry that cannot
// be priced fails the whole total with UnpricedItemError.
func (c *Cart) TotalValue(lookup PriceLookup) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0.0
	for _, entry := range c.entries {
		price, ok := lookup(entry.ItemID)
		if !ok {
			return 0, &UnpricedItemError{ItemID: entry.ItemID}
		}
		total += price * float64(entry.Quantity)
	}
	return total, nil
}

// BeginSubmit freezes the cart and returns a snapshot of its lines in staging
// order. While frozen every mutation returns ErrSubmitting, so the snapshot
// handed to reconciliation can never drift from what the user reviewed.
func (c *Cart) BeginSubmit() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateStaging {
		return nil, ErrSubmitting
	}
	if len(c.entries) == 0 {
		return nil, ErrEmpty
	}
	c.state = StateSubmitting
	return append([]Entry(nil), c.entries...), nil
}

// Finish empties the cart and returns it to a fresh staging state. Called
// after reconciliation completes, whether or not every entry succeeded.
func (c *Cart) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.state = StateStaging
}

// Abort unfreezes a cart whose reconciliation never started (for example the
// fresh snapshot fetch failed). The staged lines are kept intact.
func (c *Cart) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateStaging
}
