package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return New(server.URL, 5*time.Second, zap.NewNop())
}

func TestListItemsSendsBearerToken(t *testing.T) {
	var gotAuth string
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    []map[string]any{{"id": 1, "name": "Cola", "stock": 40}},
		})
	})

	ctx := WithToken(context.Background(), "opaque-token")
	items, err := client.ListItems(ctx)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if gotAuth != "Bearer opaque-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if len(items) != 1 || items[0].Name != "Cola" || items[0].Stock != 40 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestListItemsMapsFailuresToFetchError(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-success status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "success=false envelope",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"error":   "INTERNAL_ERROR",
					"message": "broken",
				})
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>nope</html>"))
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, tc.handler)
			_, err := client.ListItems(context.Background())
			if err == nil {
				t.Fatal("expected an error")
			}
			if CodeOf(err) != ErrFetchFailed {
				t.Fatalf("expected FETCH_FAILED, got %v", err)
			}
		})
	}
}

func TestListCategoriesDecodesImageRefs(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 1, "name": "Drinks", "imageUrl": "https://cdn.example/d.png"},
				{"id": 2, "name": "Snacks", "imageUrl": nil},
			},
		})
	})

	categories, err := client.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("list categories: %v", err)
	}
	if categories[0].ImageURL == nil || *categories[0].ImageURL != "https://cdn.example/d.png" {
		t.Fatalf("expected image url, got %v", categories[0].ImageURL)
	}
	if categories[1].ImageURL != nil {
		t.Fatalf("expected nil image url, got %q", *categories[1].ImageURL)
	}
}

func TestUpdateItemSendsFullRecord(t *testing.T) {
	var gotPath, gotMethod string
	var gotBody ItemUpdate
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	})

	update := ItemUpdate{
		Name:          "Cola",
		CostPrice:     7.5,
		SellingPrice:  12,
		Stock:         45,
		MinStock:      3,
		MaxStock:      200,
		ReorderPoint:  10,
		ShelfLifeDays: 30,
	}
	if err := client.UpdateItem(context.Background(), 1, update); err != nil {
		t.Fatalf("update item: %v", err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/items/1" {
		t.Fatalf("expected PUT /api/items/1, got %s %s", gotMethod, gotPath)
	}
	if gotBody != update {
		t.Fatalf("expected full record %+v, got %+v", update, gotBody)
	}
}

func TestUpdateItemErrorMapping(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected ErrorCode
	}{
		{name: "missing item", status: http.StatusNotFound, expected: ErrItemNotFound},
		{
			name:     "validation rejection",
			status:   http.StatusUnprocessableEntity,
			body:     `{"success":false,"error":"VALIDATION_ERROR","message":"stock above maximum"}`,
			expected: ErrUpdateRejected,
		},
		{name: "permission rejection", status: http.StatusForbidden, expected: ErrUpdateRejected},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				if tc.body != "" {
					_, _ = w.Write([]byte(tc.body))
				}
			})

			err := client.UpdateItem(context.Background(), 1, ItemUpdate{Name: "Cola", Stock: 45})
			if err == nil {
				t.Fatal("expected an error")
			}
			if CodeOf(err) != tc.expected {
				t.Fatalf("expected %s, got %v", tc.expected, err)
			}
		})
	}
}

func TestUpdateRejectedKeepsStoreMessage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"success":false,"message":"stock above maximum"}`))
	})

	err := client.UpdateItem(context.Background(), 1, ItemUpdate{Stock: 45})
	var ge *Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected gateway.Error, got %v", err)
	}
	if ge.Message != "stock above maximum" {
		t.Fatalf("expected store message preserved, got %q", ge.Message)
	}
}
