// Package fakeshop is an in-memory implementation of the auth, catalog, cart
// and order services. It backs the storefront tests and local runs.
package fakeshop

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const (
	SeedEmail    = "admin@shop.com"
	SeedPassword = "Admin123!"
)

type Server struct {
	store    *store
	secret   []byte
	tokenTTL time.Duration
	router   chi.Router
}

type seedUser struct {
	email, password string
	fullName        *string
	admin           bool
}

type options struct {
	secret   string
	tokenTTL time.Duration
	products []domain.Product
	users    []seedUser
}

type Option func(*options)

func WithSecret(secret string) Option {
	return func(o *options) { o.secret = secret }
}

func WithTokenTTL(d time.Duration) Option {
	return func(o *options) { o.tokenTTL = d }
}

// WithProducts replaces the default catalog.
func WithProducts(products ...domain.Product) Option {
	return func(o *options) { o.products = products }
}

// WithUser adds an account next to the seeded admin.
func WithUser(email, password string) Option {
	return func(o *options) {
		o.users = append(o.users, seedUser{email: email, password: password})
	}
}

func NewServer(opts ...Option) (*Server, error) {
	adminName := "Admin"
	o := &options{
		secret:   "change_this_secret",
		tokenTTL: 120 * time.Minute,
		products: DefaultProducts(),
		users:    []seedUser{{email: SeedEmail, password: SeedPassword, fullName: &adminName, admin: true}},
	}
	for _, opt := range opts {
		opt(o)
	}

	s := &Server{store: newStore(), secret: []byte(o.secret), tokenTTL: o.tokenTTL}
	for _, c := range DefaultCategories() {
		s.store.addCategory(c)
	}
	for _, p := range o.products {
		s.store.addProduct(p)
	}
	for _, u := range o.users {
		if _, err := s.store.signup(u.email, u.password, u.fullName, u.admin); err != nil {
			return nil, err
		}
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// auth
	r.Post("/login", s.Login)
	r.Post("/signup", s.Signup)

	// catalog
	r.Get("/products", s.ListProducts)
	r.Get("/products/{id}", s.GetProduct)
	r.Get("/categories", s.ListCategories)

	r.Group(func(r chi.Router) {
		r.Use(s.AuthMiddleware)

		r.Get("/me", s.Me)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.GetCart)
			r.Delete("/", s.ClearCart)
			r.Post("/items", s.AddItem)
			r.Delete("/items", s.ClearCart)
			r.Put("/items/{id}", s.UpdateItem)
			r.Delete("/items/{id}", s.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.ListOrders)
			r.Post("/checkout", s.Checkout)
			r.Get("/{id}", s.GetOrder)
		})
	})
	return r
}

func DefaultCategories() []domain.Category {
	return []domain.Category{
		{ID: 1, Name: "Clothing"},
		{ID: 2, Name: "Accessories"},
	}
}

// DefaultProducts is the five-item seed catalog.
func DefaultProducts() []domain.Product {
	clothing, accessories := int64(1), int64(2)
	vat := decimal.RequireFromString("19.00")
	size := func(s string) *string { return &s }

	return []domain.Product{
		{ID: 1, CategoryID: &clothing, Name: "Classic Blue Jeans", Price: decimal.RequireFromString("49.90"), VATRate: vat, Stock: 100, Size: size("32")},
		{ID: 2, CategoryID: &clothing, Name: "White T-Shirt", Price: decimal.RequireFromString("14.90"), VATRate: vat, Stock: 200, Size: size("M")},
		{ID: 3, CategoryID: &clothing, Name: "Wool Sweater", Price: decimal.RequireFromString("59.00"), VATRate: vat, Stock: 50, Size: size("L")},
		{ID: 4, CategoryID: &accessories, Name: "Leather Belt", Price: decimal.RequireFromString("24.50"), VATRate: vat, Stock: 75},
		{ID: 5, CategoryID: &accessories, Name: "Canvas Tote Bag", Price: decimal.RequireFromString("19.99"), VATRate: vat, Stock: 120},
	}
}
