package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRequester struct {
	mu       sync.RWMutex
	calls    []string
	response any
	err      error
	delay    time.Duration
	gate     chan struct{}
}

func (m *mockRequester) Request(ctx context.Context, method, target string, body any) (*gateway.Payload, error) {
	m.mu.Lock()
	m.calls = append(m.calls, method+" "+target)
	m.mu.Unlock()

	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	data, err := json.Marshal(m.response)
	if err != nil {
		return nil, err
	}
	return gateway.NewPayload(200, "application/json", data), nil
}

func (m *mockRequester) Calls() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.calls...)
}

func products(names ...string) []domain.Product {
	out := make([]domain.Product, 0, len(names))
	for i, name := range names {
		out = append(out, domain.Product{ID: int64(i + 1), Name: name, Price: decimal.NewFromInt(10), VATRate: decimal.NewFromInt(19)})
	}
	return out
}

func TestSearch_EmptyQueryListsAll(t *testing.T) {
	gw := &mockRequester{response: products("a", "b", "c", "d", "e")}
	s := NewSearch(gw, "http://catalog:8002/")

	got, err := s.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, got, 5)
	assert.Equal(t, []string{"GET http://catalog:8002/products"}, gw.Calls())
}

func TestSearch_EncodesQuery(t *testing.T) {
	gw := &mockRequester{response: products("Blue Jeans")}
	s := NewSearch(gw, "http://catalog:8002")

	got, err := s.Search(context.Background(), " blue jeans ")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Blue Jeans", got[0].Name)

	calls := gw.Calls()
	require.Len(t, calls, 1)
	u, err := url.Parse(calls[0][len("GET "):])
	require.NoError(t, err)
	assert.Equal(t, "/products", u.Path)
	assert.Equal(t, " blue jeans ", u.Query().Get("q"))
}

func TestSearchInCategory(t *testing.T) {
	gw := &mockRequester{response: products("shirt")}
	s := NewSearch(gw, "http://catalog:8002")

	_, err := s.SearchInCategory(context.Background(), "", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"GET http://catalog:8002/products?category_id=4"}, gw.Calls())
}

func TestSearch_NoCaching(t *testing.T) {
	gw := &mockRequester{response: products("jeans")}
	s := NewSearch(gw, "http://catalog:8002")

	for i := 0; i < 3; i++ {
		_, err := s.Search(context.Background(), "jeans")
		require.NoError(t, err)
	}
	assert.Len(t, gw.Calls(), 3)
}

func TestSearch_CollapsesConcurrentIdenticalSearches(t *testing.T) {
	gw := &mockRequester{response: products("jeans"), delay: 50 * time.Millisecond}
	s := NewSearch(gw, "http://catalog:8002")

	var wg sync.WaitGroup
	results := make([][]domain.Product, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := s.Search(context.Background(), "jeans")
			assert.NoError(t, err)
			results[i] = got
		}(i)
	}
	wg.Wait()

	assert.Less(t, len(gw.Calls()), 5)
	results[0][0].Name = "changed"
	for _, r := range results[1:] {
		assert.Equal(t, "jeans", r[0].Name)
	}
}

func TestSearch_CancelledCallerDoesNotFailSharedSearch(t *testing.T) {
	gw := &mockRequester{response: products("jeans"), gate: make(chan struct{})}
	s := NewSearch(gw, "http://catalog:8002")

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := s.Search(ctxA, "jeans")
		errA <- err
	}()
	require.Eventually(t, func() bool { return len(gw.Calls()) == 1 }, time.Second, 5*time.Millisecond)

	type result struct {
		products []domain.Product
		err      error
	}
	resB := make(chan result, 1)
	go func() {
		got, err := s.Search(context.Background(), "jeans")
		resB <- result{got, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(gw.gate)
	b := <-resB
	require.NoError(t, b.err)
	require.Len(t, b.products, 1)
	assert.Equal(t, "jeans", b.products[0].Name)
	assert.Len(t, gw.Calls(), 1)
}

func TestSearch_PropagatesGatewayError(t *testing.T) {
	want := &gateway.HTTPError{StatusCode: 503, StatusText: "Service Unavailable", Body: "down"}
	s := NewSearch(&mockRequester{err: want}, "http://catalog:8002")

	_, err := s.Search(context.Background(), "x")
	httpErr, ok := gateway.AsHTTPError(err)
	require.True(t, ok)
	assert.Same(t, want, httpErr)
}

func TestProductAndCategories(t *testing.T) {
	gw := &mockRequester{response: domain.Product{ID: 3, Name: "Hat"}}
	s := NewSearch(gw, "http://catalog:8002")

	p, err := s.Product(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Hat", p.Name)

	gw.response = []domain.Category{{ID: 1, Name: "Clothing"}}
	cats, err := s.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Clothing", cats[0].Name)

	assert.Equal(t, []string{"GET http://catalog:8002/products/3", "GET http://catalog:8002/categories"}, gw.Calls())
}

func TestSearch_NetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	s := NewSearch(&mockRequester{err: &gateway.NetworkError{Method: "GET", URL: "u", Err: cause}}, "http://c")

	_, err := s.Search(context.Background(), "")
	assert.True(t, gateway.IsNetworkError(err))
	assert.ErrorIs(t, err, cause)
}
