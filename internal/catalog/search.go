// Package catalog queries the product catalog service.
package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"golang.org/x/sync/singleflight"
)

type Search struct {
	gw      gateway.Requester
	baseURL string
	sfg     singleflight.Group // collapses identical in-flight searches
}

func NewSearch(gw gateway.Requester, baseURL string) *Search {
	return &Search{gw: gw, baseURL: strings.TrimRight(baseURL, "/")}
}

// Search returns the products matching query. An empty query lists the whole
// catalog; any other query is sent as given. Results are never cached.
func (s *Search) Search(ctx context.Context, query string) ([]domain.Product, error) {
	return s.list(ctx, query, nil)
}

// SearchInCategory narrows Search to one category.
func (s *Search) SearchInCategory(ctx context.Context, query string, categoryID int64) ([]domain.Product, error) {
	return s.list(ctx, query, &categoryID)
}

func (s *Search) list(ctx context.Context, query string, categoryID *int64) ([]domain.Product, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if categoryID != nil {
		params.Set("category_id", strconv.FormatInt(*categoryID, 10))
	}

	target := s.baseURL + "/products"
	if len(params) > 0 {
		target += "?" + params.Encode()
	}

	// the shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends
	fetchCtx := context.WithoutCancel(ctx)
	ch := s.sfg.DoChan(target, func() (interface{}, error) {
		return gateway.Fetch[[]domain.Product](fetchCtx, s.gw, http.MethodGet, target, nil)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		return nil, res.Err
	}

	shared := res.Val.([]domain.Product)
	products := make([]domain.Product, len(shared))
	copy(products, shared)
	return products, nil
}

func (s *Search) Product(ctx context.Context, id int64) (domain.Product, error) {
	return gateway.Fetch[domain.Product](ctx, s.gw, http.MethodGet, fmt.Sprintf("%s/products/%d", s.baseURL, id), nil)
}

func (s *Search) Categories(ctx context.Context) ([]domain.Category, error) {
	return gateway.Fetch[[]domain.Category](ctx, s.gw, http.MethodGet, s.baseURL+"/categories", nil)
}
