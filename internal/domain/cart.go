package domain

import "github.com/shopspring/decimal"

type Cart struct {
	ID     int64      `json:"id"`
	Status string     `json:"status"`
	Items  []CartItem `json:"items"`
	Totals Totals     `json:"totals"`
}

// CartItem keeps the unit price captured when the product was added,
// which may differ from the current catalog price.
type CartItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineNet   decimal.Decimal `json:"line_net"`
	LineVAT   decimal.Decimal `json:"line_vat"`
	LineGross decimal.Decimal `json:"line_gross"`
	Product   Product         `json:"product"`
}

// Totals are computed by the cart service. Clients display them as received.
type Totals struct {
	Net   decimal.Decimal `json:"total_net"`
	VAT   decimal.Decimal `json:"total_vat"`
	Gross decimal.Decimal `json:"total_gross"`
}

// Consistent reports whether the server figures satisfy gross = net + vat.
func (t Totals) Consistent() bool {
	return t.Gross.Equal(t.Net.Add(t.VAT))
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Item(itemID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) ItemForProduct(productID int64) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, it := range c.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return CartItem{}, false
}
