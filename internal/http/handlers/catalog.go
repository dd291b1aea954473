package handlers

import (
	"errors"
	"net/http"

	"invadmin-stock-services/internal/catalog"
	"invadmin-stock-services/internal/gateway"
	"invadmin-stock-services/pkg/response"
)

type catalogItem struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	SellingPrice float64 `json:"sellingPrice"`
	Stock        int     `json:"stock"`
}

type catalogGroup struct {
	Name     string        `json:"name"`
	ImageURL *string       `json:"imageUrl"`
	Items    []catalogItem `json:"items"`
}

// StockCatalog returns the item catalog grouped by category, in the store's
// category order with the Uncategorized bucket last.
func (h *Handler) StockCatalog(w http.ResponseWriter, r *http.Request) {
	cat, err := h.Catalog.Load(r.Context())
	if err != nil {
		writeGatewayError(w, err)
		return
	}

	groups := catalog.GroupByCategory(cat.Items, cat.Categories)
	out := make([]catalogGroup, 0, len(groups))
	appendGroup := func(name string) {
		items, ok := groups[name]
		if !ok {
			return
		}
		group := catalogGroup{
			Name:     name,
			ImageURL: catalog.ResolveCategoryImage(name, cat.Categories),
			Items:    make([]catalogItem, 0, len(items)),
		}
		for _, item := range items {
			group.Items = append(group.Items, catalogItem{
				ID:           item.ID,
				Name:         item.Name,
				SellingPrice: item.SellingPrice,
				Stock:        item.Stock,
			})
		}
		out = append(out, group)
	}

	seen := make(map[string]struct{}, len(cat.Categories))
	for _, category := range cat.Categories {
		if _, dup := seen[category.Name]; dup {
			continue
		}
		seen[category.Name] = struct{}{}
		appendGroup(category.Name)
	}
	if _, ok := seen[catalog.UncategorizedBucket]; !ok {
		appendGroup(catalog.UncategorizedBucket)
	}

	response.Success(w, map[string]any{
		"categories": out,
		"itemCount":  len(cat.Items),
	})
}

func writeGatewayError(w http.ResponseWriter, err error) {
	var ge *gateway.Error
	if errors.As(err, &ge) {
		response.Error(w, ge.StatusCode, string(ge.Code), ge.Message)
		return
	}
	response.Error(w, http.StatusBadGateway, string(gateway.ErrFetchFailed), err.Error())
}
