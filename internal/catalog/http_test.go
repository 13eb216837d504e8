package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const restaurantBody = `{
  "success": true,
  "message": "ok",
  "data": {
    "id": 42,
    "name": "Burger King",
    "logo": "/logo.png",
    "menus": [
      {"id": 1, "name": "Whopper Burger", "price": 50000, "image_url": "/m1.png"},
      {"id": "2", "name": "Chicken Burger", "price": 45000, "is_available": false}
    ]
  }
}`

func newTestCatalog(t *testing.T) (*HTTPCatalog, *string) {
	t.Helper()
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/resto/42":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(restaurantBody))
		case "/api/resto/broken":
			w.Write([]byte(`{"success": false, "message": "maintenance"}`))
		case "/api/resto/boom":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return NewHTTPCatalog(server.URL+"/api/", "secret-token", 2*time.Second), &gotAuth
}

func TestHTTPCatalog_GetRestaurant(t *testing.T) {
	c, gotAuth := newTestCatalog(t)

	restaurant, err := c.GetRestaurant(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, &Restaurant{ID: "42", Name: "Burger King", Logo: "/logo.png"}, restaurant)
	assert.Equal(t, "Bearer secret-token", *gotAuth)
}

func TestHTTPCatalog_GetMenuItem(t *testing.T) {
	c, _ := newTestCatalog(t)

	item, err := c.GetMenuItem(context.Background(), "42", "1")
	require.NoError(t, err)
	assert.Equal(t, "1", item.ID)
	assert.Equal(t, "42", item.RestaurantID)
	assert.Equal(t, int64(50000), item.Price)
	assert.True(t, item.IsAvailable)

	item, err = c.GetMenuItem(context.Background(), "42", "2")
	require.NoError(t, err)
	assert.False(t, item.IsAvailable)

	_, err = c.GetMenuItem(context.Background(), "42", "99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHTTPCatalog_Errors(t *testing.T) {
	c, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := c.GetRestaurant(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.GetRestaurant(ctx, "broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maintenance")

	_, err = c.GetRestaurant(ctx, "boom")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPCatalog_LookupFetchesRestaurantOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/resto/42" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(restaurantBody))
	}))
	defer server.Close()
	c := NewHTTPCatalog(server.URL, "", 2*time.Second)

	restaurant, item, err := c.Lookup(context.Background(), "42", "1")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "Burger King", restaurant.Name)
	assert.Equal(t, "/logo.png", restaurant.Logo)
	assert.Equal(t, "Whopper Burger", item.Name)
	assert.Equal(t, int64(50000), item.Price)

	_, _, err = c.Lookup(context.Background(), "42", "99")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = c.Lookup(context.Background(), "7", "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
