package handlers

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"

	"invadmin-stock-services/internal/cart"
	"invadmin-stock-services/internal/gateway"
	"invadmin-stock-services/pkg/response"

	"go.uber.org/zap"
)

type cartAddRequest struct {
	ItemID   int64   `json:"itemId"`
	Quantity float64 `json:"quantity"`
}

type cartPayload struct {
	Entries       []cart.Entry `json:"entries"`
	State         cart.State   `json:"state"`
	TotalQuantity int          `json:"totalQuantity"`
	TotalValue    *float64     `json:"totalValue"`
}

// CartGet returns the staged entries with totals. The cart value is priced
// from a live item read; when that read fails the entries are still returned
// and totalValue is null, so a gateway hiccup never hides the cart.
func (h *Handler) CartGet(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	c := h.Carts.Get(s.Key)

	payload := cartPayload{
		Entries:       c.Entries(),
		State:         c.State(),
		TotalQuantity: c.TotalQuantity(),
	}

	if items, err := h.Gateway.ListItems(r.Context()); err != nil {
		h.Logger.Warn("cart pricing read failed", zap.Error(err))
	} else {
		prices := make(map[int64]float64, len(items))
		for _, item := range items {
			prices[item.ID] = item.SellingPrice
		}
		value, err := c.TotalValue(func(itemID int64) (float64, bool) {
			price, ok := prices[itemID]
			return price, ok
		})
		if err != nil {
			h.Logger.Warn("cart has unpriceable entry", zap.Error(err))
		} else {
			payload.TotalValue = &value
		}
	}

	response.Success(w, payload)
}

func (h *Handler) CartAddItem(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}

	var req cartAddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}
	if req.ItemID <= 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item ID is required")
		return
	}
	if req.Quantity != math.Trunc(req.Quantity) {
		response.Error(w, http.StatusBadRequest, "INVALID_QUANTITY", "Quantity must be a whole number")
		return
	}

	c := h.Carts.Get(s.Key)
	if err := c.Add(req.ItemID, int(req.Quantity)); err != nil {
		writeCartError(w, err)
		return
	}
	response.Success(w, cartSummary(c))
}

func (h *Handler) CartIncrementItem(w http.ResponseWriter, r *http.Request) {
	h.cartLineAdjust(w, r, (*cart.Cart).Increment)
}

func (h *Handler) CartDecrementItem(w http.ResponseWriter, r *http.Request) {
	h.cartLineAdjust(w, r, (*cart.Cart).Decrement)
}

func (h *Handler) cartLineAdjust(w http.ResponseWriter, r *http.Request, adjust func(*cart.Cart, int64) error) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item ID is required")
		return
	}

	c := h.Carts.Get(s.Key)
	if err := adjust(c, itemID); err != nil {
		writeCartError(w, err)
		return
	}
	response.Success(w, cartSummary(c))
}

func (h *Handler) CartRemoveItem(w http.ResponseWriter, r *http.Request) {
	s, ok := session(w, r)
	if !ok {
		return
	}
	itemID, err := readPathInt64(r, "itemId")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Item ID is required")
		return
	}

	c := h.Carts.Get(s.Key)
	removed, err := c.Remove(itemID)
	if err != nil {
		writeCartError(w, err)
		return
	}

	payload := cartSummary(c)
	payload["removedLines"] = removed
	response.Success(w, payload)
}

func cartSummary(c *cart.Cart) map[string]any {
	return map[string]any{
		"entries":       c.Entries(),
		"state":         c.State(),
		"totalQuantity": c.TotalQuantity(),
	}
}

func writeCartError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		response.Error(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error())
	case errors.Is(err, cart.ErrSubmitting):
		response.Error(w, http.StatusConflict, "CART_SUBMITTING", "Cart is being submitted; try again shortly")
	case errors.Is(err, cart.ErrNotStaged):
		response.Error(w, http.StatusNotFound, "ITEM_NOT_STAGED", err.Error())
	case errors.Is(err, cart.ErrEmpty):
		response.Error(w, http.StatusBadRequest, "CART_EMPTY", err.Error())
	default:
		var ge *gateway.Error
		if errors.As(err, &ge) {
			response.Error(w, ge.StatusCode, string(ge.Code), ge.Message)
			return
		}
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
