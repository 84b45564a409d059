// Package cart reads and mutates the shopper's cart. Every call answers with
// a cart freshly fetched from the cart service; no totals are computed here.
package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
)

const (
	MinQuantity = 1
	MaxQuantity = 9999
)

// ErrEmptyCart is returned by callers that refuse to check out an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// ClampQuantity bounds a user-entered quantity to [MinQuantity, MaxQuantity].
func ClampQuantity(q int) int {
	if q < MinQuantity {
		return MinQuantity
	}
	if q > MaxQuantity {
		return MaxQuantity
	}
	return q
}

// Checkouter turns the current cart into an order.
type Checkouter interface {
	Checkout(ctx context.Context) (domain.Order, error)
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

type Controller struct {
	gw       gateway.Requester
	baseURL  string
	checkout Checkouter
}

func NewController(gw gateway.Requester, baseURL string, checkout Checkouter) *Controller {
	return &Controller{
		gw:       gw,
		baseURL:  strings.TrimRight(baseURL, "/"),
		checkout: checkout,
	}
}

func (c *Controller) Get(ctx context.Context) (domain.Cart, error) {
	return gateway.Fetch[domain.Cart](ctx, c.gw, http.MethodGet, c.baseURL+"/cart", nil)
}

// AddItem sends quantity as given. Callers clamp user input with ClampQuantity.
func (c *Controller) AddItem(ctx context.Context, productID int64, quantity int) (domain.Cart, error) {
	req := AddItemRequestDTO{ProductID: productID, Quantity: quantity}
	return c.mutate(ctx, http.MethodPost, c.baseURL+"/cart/items", req)
}

// UpdateItemQuantity sets the line quantity. The cart service removes the
// line when quantity is zero or negative.
func (c *Controller) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) (domain.Cart, error) {
	req := UpdateQuantityRequestDTO{Quantity: quantity}
	return c.mutate(ctx, http.MethodPut, c.itemURL(itemID), req)
}

func (c *Controller) RemoveItem(ctx context.Context, itemID int64) (domain.Cart, error) {
	return c.mutate(ctx, http.MethodDelete, c.itemURL(itemID), nil)
}

func (c *Controller) Clear(ctx context.Context) (domain.Cart, error) {
	return c.mutate(ctx, http.MethodDelete, c.baseURL+"/cart", nil)
}

// Checkout places an order for the current cart. It does not re-fetch the
// cart; callers call Get afterwards.
func (c *Controller) Checkout(ctx context.Context) (domain.Order, error) {
	return c.checkout.Checkout(ctx)
}

// mutate fires the request, ignores its answer and returns the cart as the
// service now sees it.
func (c *Controller) mutate(ctx context.Context, method, url string, body any) (domain.Cart, error) {
	if _, err := c.gw.Request(ctx, method, url, body); err != nil {
		return domain.Cart{}, err
	}
	return c.Get(ctx)
}

func (c *Controller) itemURL(itemID int64) string {
	return fmt.Sprintf("%s/cart/items/%d", c.baseURL, itemID)
}
