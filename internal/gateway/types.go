package gateway

// Item is the authoritative record held by the backing store. Every field
// except Stock is read-only from this service's perspective, but all of them
// must be carried on an update so a stock write never blanks another field.
type Item struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	CategoryID    *int64  `json:"categoryId"`
	CategoryName  *string `json:"categoryName"`
	CostPrice     float64 `json:"costPrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"minStock"`
	MaxStock      int     `json:"maxStock"`
	ReorderPoint  int     `json:"reorderPoint"`
	ShelfLifeDays int     `json:"shelfLifeDays"`
}

type Category struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	ImageURL *string `json:"imageUrl"`
}

// ItemUpdate is the full mutable field set accepted by the store's per-item
// PUT. Construct it from a fresh Item read, never from cached catalog data.
type ItemUpdate struct {
	Name          string  `json:"name"`
	CostPrice     float64 `json:"costPrice"`
	SellingPrice  float64 `json:"sellingPrice"`
	Stock         int     `json:"stock"`
	MinStock      int     `json:"minStock"`
	MaxStock      int     `json:"maxStock"`
	ReorderPoint  int     `json:"reorderPoint"`
	ShelfLifeDays int     `json:"shelfLifeDays"`
}

// UpdateOf copies every mutable field of item into an ItemUpdate, stock
// included. Callers overwrite Stock with the new total before sending.
func UpdateOf(item Item) ItemUpdate {
	return ItemUpdate{
		Name:          item.Name,
		CostPrice:     item.CostPrice,
		SellingPrice:  item.SellingPrice,
		Stock:         item.Stock,
		MinStock:      item.MinStock,
		MaxStock:      item.MaxStock,
		ReorderPoint:  item.ReorderPoint,
		ShelfLifeDays: item.ShelfLifeDays,
	}
}
