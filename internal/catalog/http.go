package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang-food-cart/internal/cart"
)

// HTTPCatalog reads restaurants and their menus from the remote restaurant API.
type HTTPCatalog struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewHTTPCatalog(baseURL, token string, timeout time.Duration) *HTTPCatalog {
	return &HTTPCatalog{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// flexibleID accepts ids sent either as JSON strings or numbers.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexibleID(n.String())
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type restaurantPayload struct {
	ID    flexibleID    `json:"id"`
	Name  string        `json:"name"`
	Logo  string        `json:"logo"`
	Menus []menuPayload `json:"menus"`
}

type menuPayload struct {
	ID          flexibleID `json:"id"`
	Name        string     `json:"name"`
	Price       int64      `json:"price"`
	ImageURL    string     `json:"image_url"`
	IsAvailable *bool      `json:"is_available"`
}

func (h *HTTPCatalog) GetRestaurant(ctx context.Context, restaurantID string) (*Restaurant, error) {
	payload, err := h.fetchRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return payload.toRestaurant(), nil
}

func (h *HTTPCatalog) GetMenuItem(ctx context.Context, restaurantID, menuItemID string) (*cart.MenuItem, error) {
	payload, err := h.fetchRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return payload.menuItem(restaurantID, menuItemID)
}

// Lookup answers both questions from a single /resto/{id} call.
func (h *HTTPCatalog) Lookup(ctx context.Context, restaurantID, menuItemID string) (*Restaurant, *cart.MenuItem, error) {
	payload, err := h.fetchRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, nil, err
	}
	item, err := payload.menuItem(restaurantID, menuItemID)
	if err != nil {
		return nil, nil, err
	}
	return payload.toRestaurant(), item, nil
}

func (p *restaurantPayload) toRestaurant() *Restaurant {
	return &Restaurant{ID: string(p.ID), Name: p.Name, Logo: p.Logo}
}

func (p *restaurantPayload) menuItem(restaurantID, menuItemID string) (*cart.MenuItem, error) {
	for _, menu := range p.Menus {
		if string(menu.ID) != menuItemID {
			continue
		}
		// the API omits the flag for items that are always on sale
		available := menu.IsAvailable == nil || *menu.IsAvailable
		return &cart.MenuItem{
			ID:           menuItemID,
			RestaurantID: restaurantID,
			Name:         menu.Name,
			Price:        menu.Price,
			ImageURL:     menu.ImageURL,
			IsAvailable:  available,
		}, nil
	}
	return nil, fmt.Errorf("menu item %q: %w", menuItemID, ErrNotFound)
}

func (h *HTTPCatalog) fetchRestaurant(ctx context.Context, restaurantID string) (*restaurantPayload, error) {
	respBody, status, err := h.makeRequest(ctx, http.MethodGet, h.baseURL+"/resto/"+url.PathEscape(restaurantID))
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("restaurant %q: %w", restaurantID, ErrNotFound)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("catalog API error (status %d): %s", status, string(respBody))
	}

	var resp apiResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode catalog response: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("catalog API error: %s", resp.Message)
	}

	var payload restaurantPayload
	if err := json.Unmarshal(resp.Data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode restaurant: %w", err)
	}
	if payload.ID == "" {
		payload.ID = flexibleID(restaurantID)
	}
	return &payload, nil
}

func (h *HTTPCatalog) makeRequest(ctx context.Context, method, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
