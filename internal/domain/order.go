package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// OrderStatus is the status text as sent by the order service.
type OrderStatus string

// StatusKind is the closed set of statuses the client distinguishes.
type StatusKind int

const (
	StatusOther StatusKind = iota
	StatusCreated
	StatusPaid
)

func (s OrderStatus) Kind() StatusKind {
	switch strings.ToLower(strings.TrimSpace(string(s))) {
	case "created":
		return StatusCreated
	case "paid":
		return StatusPaid
	default:
		return StatusOther
	}
}

func (s OrderStatus) String() string {
	return string(s)
}

func (k StatusKind) String() string {
	switch k {
	case StatusCreated:
		return "created"
	case StatusPaid:
		return "paid"
	default:
		return "other"
	}
}

// Badge is the display color for the status kind.
func (k StatusKind) Badge() string {
	switch k {
	case StatusCreated:
		return "blue"
	case StatusPaid:
		return "green"
	default:
		return "slate"
	}
}

// OrderItem snapshots product data at checkout time so history stays
// accurate when the catalog changes.
type OrderItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	VATRate     decimal.Decimal `json:"vat_rate"`
	ProductName *string         `json:"product_name,omitempty"`
}

type Order struct {
	ID     int64           `json:"id"`
	UserID int64           `json:"user_id"`
	Total  decimal.Decimal `json:"total"`
	Status OrderStatus     `json:"status"`
	Items  []OrderItem     `json:"items"`
}
