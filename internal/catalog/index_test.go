package catalog

import (
	"context"
	"reflect"
	"testing"

	"invadmin-stock-services/internal/gateway"

	"go.uber.org/zap"
)

type fakeFetcher struct {
	items         []gateway.Item
	categories    []gateway.Category
	itemsErr      error
	categoriesErr error
}

func (f *fakeFetcher) ListItems(context.Context) ([]gateway.Item, error) {
	return f.items, f.itemsErr
}

func (f *fakeFetcher) ListCategories(context.Context) ([]gateway.Category, error) {
	return f.categories, f.categoriesErr
}

func ptrInt64(v int64) *int64    { return &v }
func ptrString(v string) *string { return &v }

func TestLoadNeverReturnsPartialCatalog(t *testing.T) {
	boom := gateway.FetchError("boom", nil)
	cases := []struct {
		name    string
		fetcher *fakeFetcher
	}{
		{
			name: "items fetch fails",
			fetcher: &fakeFetcher{
				itemsErr:   boom,
				categories: []gateway.Category{{ID: 1, Name: "Drinks"}},
			},
		},
		{
			name: "categories fetch fails",
			fetcher: &fakeFetcher{
				items:         []gateway.Item{{ID: 1, Name: "Cola"}},
				categoriesErr: boom,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ix := New(tc.fetcher, zap.NewNop())
			cat, err := ix.Load(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if len(cat.Items) != 0 || len(cat.Categories) != 0 {
				t.Fatalf("expected empty catalog on failure, got %+v", cat)
			}
		})
	}
}

func TestLoadRetryableAfterFailure(t *testing.T) {
	fetcher := &fakeFetcher{itemsErr: gateway.FetchError("down", nil)}
	ix := New(fetcher, zap.NewNop())

	if _, err := ix.Load(context.Background()); err == nil {
		t.Fatal("expected first load to fail")
	}

	fetcher.itemsErr = nil
	fetcher.items = []gateway.Item{{ID: 1, Name: "Cola"}}
	cat, err := ix.Load(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if len(cat.Items) != 1 {
		t.Fatalf("expected 1 item after retry, got %d", len(cat.Items))
	}
}

func TestGroupByCategory(t *testing.T) {
	categories := []gateway.Category{
		{ID: 1, Name: "Drinks"},
		{ID: 2, Name: "Snacks"},
	}
	items := []gateway.Item{
		{ID: 10, Name: "Cola", CategoryID: ptrInt64(1)},
		{ID: 11, Name: "Chips", CategoryID: ptrInt64(2)},
		{ID: 12, Name: "Water", CategoryID: ptrInt64(1)},
		{ID: 13, Name: "Mystery", CategoryID: ptrInt64(99)},
		{ID: 14, Name: "Loose", CategoryName: ptrString("Snacks")},
		{ID: 15, Name: "Orphan"},
	}

	groups := GroupByCategory(items, categories)

	if got := idsOf(groups["Drinks"]); !reflect.DeepEqual(got, []int64{10, 12}) {
		t.Fatalf("expected Drinks [10 12], got %v", got)
	}
	if got := idsOf(groups["Snacks"]); !reflect.DeepEqual(got, []int64{11, 14}) {
		t.Fatalf("expected Snacks [11 14], got %v", got)
	}
	if got := idsOf(groups[UncategorizedBucket]); !reflect.DeepEqual(got, []int64{13, 15}) {
		t.Fatalf("expected Uncategorized [13 15], got %v", got)
	}
}

func TestGroupByCategoryIdempotent(t *testing.T) {
	categories := []gateway.Category{{ID: 1, Name: "Drinks"}}
	items := []gateway.Item{
		{ID: 10, CategoryID: ptrInt64(1)},
		{ID: 11},
		{ID: 12, CategoryID: ptrInt64(1)},
	}

	first := GroupByCategory(items, categories)
	second := GroupByCategory(items, categories)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical grouping, got %v then %v", first, second)
	}
	if items[0].ID != 10 || len(items) != 3 {
		t.Fatal("expected inputs not to be mutated")
	}
}

func TestGroupByCategorySeedsEmptyCategories(t *testing.T) {
	categories := []gateway.Category{{ID: 1, Name: "Drinks"}, {ID: 2, Name: "Empty"}}
	groups := GroupByCategory(nil, categories)

	bucket, ok := groups["Empty"]
	if !ok {
		t.Fatal("expected an empty bucket for a category with no items")
	}
	if len(bucket) != 0 {
		t.Fatalf("expected empty bucket, got %d items", len(bucket))
	}
	if _, ok := groups[UncategorizedBucket]; ok {
		t.Fatal("expected no Uncategorized bucket when everything resolves")
	}
}

func TestResolveCategoryImage(t *testing.T) {
	categories := []gateway.Category{
		{ID: 1, Name: "Drinks", ImageURL: ptrString("https://cdn.example/drinks.png")},
		{ID: 2, Name: "Snacks"},
	}

	cases := []struct {
		name     string
		category string
		expected *string
	}{
		{name: "with image", category: "Drinks", expected: ptrString("https://cdn.example/drinks.png")},
		{name: "no image", category: "Snacks", expected: nil},
		{name: "unknown category", category: "Frozen", expected: nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ResolveCategoryImage(tc.category, categories)
			if tc.expected == nil {
				if got != nil {
					t.Fatalf("expected nil, got %q", *got)
				}
				return
			}
			if got == nil || *got != *tc.expected {
				t.Fatalf("expected %q, got %v", *tc.expected, got)
			}
		})
	}
}

func idsOf(items []gateway.Item) []int64 {
	out := make([]int64, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
