package query

import (
	"github.com/shopspring/decimal"
)

// CartItemReadModel represents an item in the cart, priced for display.
type CartItemReadModel struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	ImageURL  string          `json:"image_url,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	Available bool            `json:"available"`
}

// CartReadModel is the read model for shopping cart. Prices come from the
// browse cache and are indicative; checkout re-prices from the products table.
type CartReadModel struct {
	UserID    string              `json:"user_id"`
	Items     []CartItemReadModel `json:"items"`
	ItemCount int                 `json:"item_count"`
	Subtotal  decimal.Decimal     `json:"subtotal"`
	Currency  string              `json:"currency"`
}
