// Package orders places orders and reads order history.
package orders

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
)

type Service struct {
	gw      gateway.Requester
	baseURL string
}

func NewService(gw gateway.Requester, baseURL string) *Service {
	return &Service{gw: gw, baseURL: strings.TrimRight(baseURL, "/")}
}

// Checkout converts the server-side cart into an order. It sends no body; the
// order service reads the cart itself.
func (s *Service) Checkout(ctx context.Context) (domain.Order, error) {
	return gateway.Fetch[domain.Order](ctx, s.gw, http.MethodPost, s.baseURL+"/orders/checkout", nil)
}

// MyOrders lists the shopper's orders in the order the service returns them.
func (s *Service) MyOrders(ctx context.Context) ([]domain.Order, error) {
	return gateway.Fetch[[]domain.Order](ctx, s.gw, http.MethodGet, s.baseURL+"/orders", nil)
}

func (s *Service) Get(ctx context.Context, id int64) (domain.Order, error) {
	return gateway.Fetch[domain.Order](ctx, s.gw, http.MethodGet, fmt.Sprintf("%s/orders/%d", s.baseURL, id), nil)
}
