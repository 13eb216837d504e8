package cart

// MenuItem is a catalog record as supplied by the catalog collaborator.
// The cart only reads it; Price is in minor currency units.
type MenuItem struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	Price        int64  `json:"price"`
	ImageURL     string `json:"image_url,omitempty"`
	IsAvailable  bool   `json:"is_available"`
}

// LineItem is one purchasable line in a restaurant group.
type LineItem struct {
	ID           string `json:"id"`
	MenuItemID   string `json:"menu_item_id"`
	RestaurantID string `json:"restaurant_id"`
	Name         string `json:"name"`
	ImageURL     string `json:"image_url,omitempty"`
	UnitPrice    int64  `json:"unit_price"` // snapshot taken at add time
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"line_total"`
}

// RestaurantGroup is one restaurant's sub-cart.
type RestaurantGroup struct {
	RestaurantID   string     `json:"restaurant_id"`
	RestaurantName string     `json:"restaurant_name"`
	RestaurantLogo string     `json:"restaurant_logo,omitempty"`
	Items          []LineItem `json:"items"`
	Subtotal       int64      `json:"subtotal"`
}

// Cart is the aggregate root.
type Cart struct {
	Groups      []RestaurantGroup `json:"restaurants"`
	TotalAmount int64             `json:"total_amount"`
	ItemCount   int               `json:"item_count"`
}

// Empty returns a cart with no groups and zero totals.
func Empty() Cart {
	return Cart{Groups: []RestaurantGroup{}}
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Groups) == 0
}

// Group returns the group for restaurantID, if present.
func (c Cart) Group(restaurantID string) (RestaurantGroup, bool) {
	if i := c.groupIndex(restaurantID); i >= 0 {
		return c.Groups[i], true
	}
	return RestaurantGroup{}, false
}

// Clone returns a deep copy so callers can hold it without seeing later mutations.
func (c Cart) Clone() Cart {
	out := Cart{
		Groups:      make([]RestaurantGroup, len(c.Groups)),
		TotalAmount: c.TotalAmount,
		ItemCount:   c.ItemCount,
	}
	for i, g := range c.Groups {
		g.Items = append([]LineItem(nil), g.Items...)
		if g.Items == nil {
			g.Items = []LineItem{}
		}
		out.Groups[i] = g
	}
	return out
}

func (c Cart) groupIndex(restaurantID string) int {
	for i := range c.Groups {
		if c.Groups[i].RestaurantID == restaurantID {
			return i
		}
	}
	return -1
}

func (g RestaurantGroup) lineIndexByMenuItem(menuItemID string) int {
	for i := range g.Items {
		if g.Items[i].MenuItemID == menuItemID {
			return i
		}
	}
	return -1
}

func (g RestaurantGroup) lineIndex(lineItemID string) int {
	for i := range g.Items {
		if g.Items[i].ID == lineItemID {
			return i
		}
	}
	return -1
}
