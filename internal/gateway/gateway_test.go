package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token() (string, bool) {
	return string(s), s != ""
}

func TestRequest_InjectsHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	gw := New(staticToken("abc"))
	_, err := gw.Request(context.Background(), http.MethodGet, server.URL+"/cart", nil)
	require.NoError(t, err)

	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.Equal(t, "Bearer abc", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get(RequestIDHeader))
}

func TestRequest_NoTokenNoAuthorization(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	gw := New(staticToken(""))
	_, err := gw.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)

	assert.Empty(t, got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
}

func TestRequest_EncodesBody(t *testing.T) {
	var body map[string]any
	var method string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	gw := New(staticToken(""))
	_, err := gw.Request(context.Background(), http.MethodPost, server.URL, map[string]int{"product_id": 7, "quantity": 3})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.EqualValues(t, 7, body["product_id"])
	assert.EqualValues(t, 3, body["quantity"])
}

func TestRequest_JSONNegotiation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"status":"ok","n":2}`))
	}))
	defer server.Close()

	payload, err := New(staticToken("")).Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	require.True(t, payload.IsJSON())

	v, err := payload.Value()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"status": "ok", "n": 2.0}, v)
}

func TestRequest_TextNegotiation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}))
	defer server.Close()

	payload, err := New(staticToken("")).Request(context.Background(), http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	assert.False(t, payload.IsJSON())

	v, err := payload.Value()
	require.NoError(t, err)
	assert.Equal(t, "pong", v)

	var out map[string]any
	assert.ErrorIs(t, payload.Decode(&out), ErrNotJSON)
}

func TestRequest_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"insufficient stock"}`))
	}))
	defer server.Close()

	_, err := New(staticToken("t")).Request(context.Background(), http.MethodPost, server.URL, nil)
	require.Error(t, err)

	httpErr, ok := AsHTTPError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, "Bad Request", httpErr.StatusText)
	assert.Equal(t, `{"detail":"insufficient stock"}`, httpErr.Body)
	assert.Equal(t, `400 Bad Request: {"detail":"insufficient stock"}`, err.Error())
	assert.False(t, IsNetworkError(err))
	assert.False(t, IsUnauthorized(err))
}

func TestRequest_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "token expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New(staticToken("stale")).Request(context.Background(), http.MethodGet, server.URL, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestRequest_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := New(staticToken("")).Request(context.Background(), http.MethodGet, url, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.Equal(t, 0, StatusCode(err))
}

func TestRequest_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	gw := New(staticToken(""), WithTimeout(20*time.Millisecond))
	_, err := gw.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestRequest_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	m := metrics.NewGatewayMetrics(prometheus.NewRegistry())
	gw := New(staticToken(""), WithMetrics(m))
	_, err := gw.Request(context.Background(), http.MethodGet, server.URL, nil)
	require.Error(t, err)

	host := server.Listener.Addr().String()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(host, "GET", "404")))
}

func TestBreaker_OpensOnNetworkFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	gw := New(staticToken(""), WithBreaker(2, time.Minute))
	for i := 0; i < 2; i++ {
		_, err := gw.Request(context.Background(), http.MethodGet, url, nil)
		require.True(t, IsNetworkError(err))
	}

	_, err := gw.Request(context.Background(), http.MethodGet, url, nil)
	assert.True(t, IsNetworkError(err))
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestBreaker_HTTPErrorsDoNotTrip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	gw := New(staticToken(""), WithBreaker(1, time.Minute))
	for i := 0; i < 3; i++ {
		_, err := gw.Request(context.Background(), http.MethodGet, server.URL, nil)
		assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	}
}

type failingBody struct{}

func (failingBody) Read([]byte) (int, error) { return 0, errors.New("connection reset") }
func (failingBody) Close() error             { return nil }

func TestNewHTTPError_UnreadableBodyFallsBackToStatusText(t *testing.T) {
	resp := &http.Response{
		StatusCode: http.StatusBadGateway,
		Status:     "502 Bad Gateway",
		Body:       failingBody{},
	}
	err := newHTTPError(resp)
	assert.Equal(t, "Bad Gateway", err.Body)
	assert.Equal(t, "Bad Gateway", err.StatusText)
}

type requesterFunc func(ctx context.Context, method, url string, body any) (*Payload, error)

func (f requesterFunc) Request(ctx context.Context, method, url string, body any) (*Payload, error) {
	return f(ctx, method, url, body)
}

func TestFetch_Decodes(t *testing.T) {
	r := requesterFunc(func(context.Context, string, string, any) (*Payload, error) {
		return &Payload{StatusCode: 200, ContentType: "application/json", raw: []byte(`{"id":4}`)}, nil
	})

	out, err := Fetch[struct {
		ID int `json:"id"`
	}](context.Background(), r, http.MethodGet, "http://x", nil)
	require.NoError(t, err)
	assert.Equal(t, 4, out.ID)
}

func TestFetch_PropagatesErrorUnchanged(t *testing.T) {
	want := &HTTPError{StatusCode: 409, StatusText: "Conflict", Body: "nope"}
	r := requesterFunc(func(context.Context, string, string, any) (*Payload, error) {
		return nil, want
	})

	_, err := Fetch[map[string]any](context.Background(), r, http.MethodGet, "http://x", nil)
	assert.Same(t, want, err)
}

var _ io.ReadCloser = failingBody{}
