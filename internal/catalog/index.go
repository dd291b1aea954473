// Package catalog produces the browsable, category-grouped view of the item
// catalog used while staging a bulk stock adjustment.
package catalog

import (
	"context"

	"invadmin-stock-services/internal/gateway"

	"go.uber.org/zap"
)

// UncategorizedBucket receives every item whose category cannot be resolved.
const UncategorizedBucket = "Uncategorized"

// Fetcher is the read surface the index needs from the backing store.
type Fetcher interface {
	ListItems(ctx context.Context) ([]gateway.Item, error)
	ListCategories(ctx context.Context) ([]gateway.Category, error)
}

type Catalog struct {
	Items      []gateway.Item
	Categories []gateway.Category
}

type Index struct {
	fetcher Fetcher
	logger  *zap.Logger
}

func New(fetcher Fetcher, logger *zap.Logger) *Index {
	return &Index{fetcher: fetcher, logger: logger}
}

// Load reads items and categories from the store. If either read fails the
// whole catalog is treated as empty: callers never see items without their
// categories or vice versa. Retry by calling Load again.
func (ix *Index) Load(ctx context.Context) (Catalog, error) {
	items, err := ix.fetcher.ListItems(ctx)
	if err != nil {
		ix.logger.Warn("catalog items fetch failed", zap.Error(err))
		return Catalog{}, err
	}
	categories, err := ix.fetcher.ListCategories(ctx)
	if err != nil {
		ix.logger.Warn("catalog categories fetch failed", zap.Error(err))
		return Catalog{}, err
	}
	return Catalog{Items: items, Categories: categories}, nil
}

// GroupByCategory buckets items under their category's display name. The join
// runs on the stable category identifier; name matching is a fallback for
// items that carry only a category name. Items with no resolvable category
// land in UncategorizedBucket. Inputs are not mutated and bucket contents
// preserve the input item order.
func GroupByCategory(items []gateway.Item, categories []gateway.Category) map[string][]gateway.Item {
	nameByID := make(map[int64]string, len(categories))
	knownNames := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		nameByID[category.ID] = category.Name
		knownNames[category.Name] = struct{}{}
	}

	groups := make(map[string][]gateway.Item, len(categories)+1)
	for _, category := range categories {
		groups[category.Name] = []gateway.Item{}
	}

	for _, item := range items {
		bucket := UncategorizedBucket
		switch {
		case item.CategoryID != nil:
			if name, ok := nameByID[*item.CategoryID]; ok {
				bucket = name
			}
		case item.CategoryName != nil:
			if _, ok := knownNames[*item.CategoryName]; ok {
				bucket = *item.CategoryName
			}
		}
		groups[bucket] = append(groups[bucket], item)
	}

	if _, isRealCategory := knownNames[UncategorizedBucket]; !isRealCategory && len(groups[UncategorizedBucket]) == 0 {
		delete(groups, UncategorizedBucket)
	}
	return groups
}

// ResolveCategoryImage returns the image reference for the named category, or
// nil when the category is unknown or carries no image. Callers decide what
// to render in the nil case; this never substitutes a placeholder.
func ResolveCategoryImage(categoryName string, categories []gateway.Category) *string {
	for _, category := range categories {
		if category.Name == categoryName {
			return category.ImageURL
		}
	}
	return nil
}
