package cart

import "github.com/google/uuid"

// LineTotal is unitPrice * quantity.
func LineTotal(unitPrice int64, quantity int) int64 {
	return unitPrice * int64(quantity)
}

// Subtotal sums the line totals of items.
func Subtotal(items []LineItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.LineTotal
	}
	return subtotal
}

// Recalculate recomputes every derived value of the cart from its line items:
// each line total, each group subtotal, the cart total and the item count.
func Recalculate(groups []RestaurantGroup) Cart {
	c := Cart{Groups: groups}
	if c.Groups == nil {
		c.Groups = []RestaurantGroup{}
	}
	for gi := range c.Groups {
		g := &c.Groups[gi]
		for ii := range g.Items {
			g.Items[ii].LineTotal = LineTotal(g.Items[ii].UnitPrice, g.Items[ii].Quantity)
			c.ItemCount += g.Items[ii].Quantity
		}
		g.Subtotal = Subtotal(g.Items)
		c.TotalAmount += g.Subtotal
	}
	return c
}

// Normalize repairs a cart that did not come from the store, such as a
// persisted record: lines with non-positive quantity, out-of-range price or
// missing references are dropped, duplicate groups and duplicate menu items
// are merged, a line id seen twice gets a fresh id, quantities are capped at
// MaxQuantity, empty groups are removed and all derived values are recomputed.
func Normalize(c Cart) Cart {
	groups := make([]RestaurantGroup, 0, len(c.Groups))
	index := make(map[string]int, len(c.Groups))
	lineIDs := make(map[string]bool)

	for _, g := range c.Groups {
		if g.RestaurantID == "" {
			continue
		}
		gi, ok := index[g.RestaurantID]
		if !ok {
			gi = len(groups)
			index[g.RestaurantID] = gi
			groups = append(groups, RestaurantGroup{
				RestaurantID:   g.RestaurantID,
				RestaurantName: g.RestaurantName,
				RestaurantLogo: g.RestaurantLogo,
				Items:          []LineItem{},
			})
		}
		target := &groups[gi]
		for _, item := range g.Items {
			if item.Quantity <= 0 || item.MenuItemID == "" || item.ID == "" || item.UnitPrice < 0 || item.UnitPrice > MaxUnitPrice {
				continue
			}
			item.RestaurantID = g.RestaurantID
			item.Quantity = capQuantity(item.Quantity)
			if li := target.lineIndexByMenuItem(item.MenuItemID); li >= 0 {
				target.Items[li].Quantity = capQuantity(target.Items[li].Quantity + item.Quantity)
				continue
			}
			for lineIDs[item.ID] {
				item.ID = uuid.NewString()
			}
			lineIDs[item.ID] = true
			target.Items = append(target.Items, item)
		}
	}

	kept := groups[:0]
	for _, g := range groups {
		if len(g.Items) > 0 {
			kept = append(kept, g)
		}
	}
	return Recalculate(kept)
}

func capQuantity(q int) int {
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}
