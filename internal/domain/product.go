package domain

import "github.com/shopspring/decimal"

// Product is read-only catalog data. Price and VATRate travel as decimal text.
type Product struct {
	ID          int64           `json:"id"`
	CategoryID  *int64          `json:"category_id,omitempty"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	Stock       int             `json:"stock,omitempty"`
	Size        *string         `json:"size,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
