package domain

import (
	"sort"
	"strings"
	"time"
)

// Addon is an optional extra attached to a line item. Price is snapshotted
// at add-time and only corrected by checkout validation.
type Addon struct {
	ID    string  `bson:"id" json:"id"`
	Name  string  `bson:"name" json:"name"`
	Price float64 `bson:"price" json:"price"`
}

// CartLineItem is one distinct product+selection combination in the cart.
// CartItemID is derived deterministically from the selection, so re-adding
// an identical combination merges into the existing line.
type CartLineItem struct {
	CartItemID          string            `bson:"cart_item_id" json:"cart_item_id"`
	ProductID           string            `bson:"product_id" json:"product_id"`
	Name                string            `bson:"name" json:"name"`
	Image               string            `bson:"image,omitempty" json:"image,omitempty"`
	UnitPrice           float64           `bson:"unit_price" json:"unit_price"`
	OriginalPrice       float64           `bson:"original_price" json:"original_price"`
	Quantity            int               `bson:"quantity" json:"quantity"`
	SelectedVariants    map[string]string `bson:"selected_variants,omitempty" json:"selected_variants,omitempty"`
	SelectedAddons      []Addon           `bson:"selected_addons,omitempty" json:"selected_addons,omitempty"`
	ProductSizeID       string            `bson:"product_size_id,omitempty" json:"product_size_id,omitempty"`
	ProductSizeColourID string            `bson:"product_size_colour_id,omitempty" json:"product_size_colour_id,omitempty"`
	AddedAt             time.Time         `bson:"added_at" json:"added_at"`
}

// LineTotal is (unit price + add-on prices) x quantity, from snapshots.
func (li CartLineItem) LineTotal() float64 {
	addons := 0.0
	for _, a := range li.SelectedAddons {
		addons += a.Price
	}
	return (li.UnitPrice + addons) * float64(li.Quantity)
}

// Cart is one customer's session cart for one tenant. Insertion order of
// Items is display order.
type Cart struct {
	ID            string         `bson:"_id,omitempty" json:"-"`
	UserID        string         `bson:"user_id" json:"user_id"`
	Domain        string         `bson:"domain" json:"domain"`
	Items         []CartLineItem `bson:"items" json:"items"`
	AppliedCoupon string         `bson:"applied_coupon,omitempty" json:"applied_coupon,omitempty"`
	LastAddedID   string         `bson:"last_added_id,omitempty" json:"last_added_id,omitempty"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updated_at"`
}

func (c *Cart) Subtotal() float64 {
	total := 0.0
	for _, li := range c.Items {
		total += li.LineTotal()
	}
	return total
}

// ItemsCount is the sum of quantities, not the number of lines.
func (c *Cart) ItemsCount() int {
	count := 0
	for _, li := range c.Items {
		count += li.Quantity
	}
	return count
}

func (c *Cart) FindItem(cartItemID string) *CartLineItem {
	for i := range c.Items {
		if c.Items[i].CartItemID == cartItemID {
			return &c.Items[i]
		}
	}
	return nil
}

// LineItemID derives the deterministic line identity: product id, the sorted
// set of selected variant values, the sorted add-on ids, and the selected
// size/size-colour ids. Selection order never changes the identity.
func LineItemID(productID string, variants map[string]string, addons []Addon, sizeID, sizeColourID string) string {
	values := make([]string, 0, len(variants))
	for _, v := range variants {
		values = append(values, v)
	}
	sort.Strings(values)

	addonIDs := make([]string, 0, len(addons))
	for _, a := range addons {
		addonIDs = append(addonIDs, a.ID)
	}
	sort.Strings(addonIDs)

	parts := make([]string, 0, 3+len(values)+len(addonIDs))
	parts = append(parts, productID)
	parts = append(parts, values...)
	parts = append(parts, addonIDs...)
	if sizeID != "" {
		parts = append(parts, sizeID)
	}
	if sizeColourID != "" {
		parts = append(parts, sizeColourID)
	}
	return strings.Join(parts, "|")
}
