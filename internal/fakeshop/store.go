package fakeshop

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrEmptyCart          = errors.New("empty cart")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	cartActive    = "active"
	cartConverted = "converted"
	orderCreated  = "created"
)

var hundred = decimal.NewFromInt(100)

type user struct {
	domain.User
	passwordHash []byte
}

type cartLine struct {
	id        int64
	productID int64
	quantity  int
	unitPrice decimal.Decimal
}

type cart struct {
	id     int64
	userID int64
	status string
	lines  []*cartLine
}

// store holds every service's state. One mutex guards all of it.
type store struct {
	mu         sync.Mutex
	users      map[int64]*user
	products   map[int64]*domain.Product
	categories []domain.Category
	carts      map[int64]*cart // active cart by user id
	orders     []domain.Order
	nextID     map[string]int64
}

func newStore() *store {
	return &store{
		users:    make(map[int64]*user),
		products: make(map[int64]*domain.Product),
		carts:    make(map[int64]*cart),
		nextID:   make(map[string]int64),
	}
}

func (s *store) id(kind string) int64 {
	s.nextID[kind]++
	return s.nextID[kind]
}

func (s *store) addProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.id("product")
	} else if p.ID > s.nextID["product"] {
		s.nextID["product"] = p.ID
	}
	s.products[p.ID] = &p
}

func (s *store) addCategory(c domain.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = append(s.categories, c)
}

// signup registers a user. Emails are unique ignoring case.
func (s *store) signup(email, password string, fullName *string, admin bool) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return domain.User{}, ErrEmailTaken
		}
	}

	u := &user{
		User:         domain.User{ID: s.id("user"), Email: email, FullName: fullName, IsAdmin: admin},
		passwordHash: hash,
	}
	s.users[u.ID] = u
	return u.User, nil
}

func (s *store) authenticate(email, password string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	s.mu.Lock()
	var found *user
	for _, u := range s.users {
		if u.Email == email {
			found = u
			break
		}
	}
	s.mu.Unlock()

	if found == nil {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(found.passwordHash, []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return found.User, nil
}

func (s *store) user(id int64) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u.User, nil
}

// listProducts filters by a case-insensitive name match and an optional
// category, ordered by id.
func (s *store) listProducts(query string, categoryID *int64) []domain.Product {
	query = strings.ToLower(strings.TrimSpace(query))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), query) {
			continue
		}
		if categoryID != nil && (p.CategoryID == nil || *p.CategoryID != *categoryID) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *store) product(id int64) (domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return domain.Product{}, ErrNotFound
	}
	return *p, nil
}

func (s *store) listCategories() []domain.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Category{}, s.categories...)
}

// activeCart returns the user's active cart, creating it on first access.
// Callers hold s.mu.
func (s *store) activeCart(userID int64) *cart {
	c, ok := s.carts[userID]
	if !ok {
		c = &cart{id: s.id("cart"), userID: userID, status: cartActive}
		s.carts[userID] = c
	}
	return c
}

func (s *store) getCart(userID int64) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(s.activeCart(userID))
}

// addItem merges into an existing line for the same product. Quantities
// below one are raised to one.
func (s *store) addItem(userID, productID int64, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[productID]
	if !ok {
		return domain.Cart{}, ErrNotFound
	}
	if quantity < 1 {
		quantity = 1
	}

	c := s.activeCart(userID)
	for _, l := range c.lines {
		if l.productID == productID {
			l.quantity += quantity
			return s.snapshot(c), nil
		}
	}
	c.lines = append(c.lines, &cartLine{
		id:        s.id("cart_item"),
		productID: productID,
		quantity:  quantity,
		unitPrice: p.Price,
	})
	return s.snapshot(c), nil
}

// updateItem sets a line's quantity; zero or less removes the line.
func (s *store) updateItem(userID, itemID int64, quantity int) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.activeCart(userID)
	for i, l := range c.lines {
		if l.id != itemID {
			continue
		}
		if quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			l.quantity = quantity
		}
		return s.snapshot(c), nil
	}
	return domain.Cart{}, ErrNotFound
}

func (s *store) removeItem(userID, itemID int64) (domain.Cart, error) {
	return s.updateItem(userID, itemID, 0)
}

func (s *store) clearCart(userID int64) domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.activeCart(userID)
	c.lines = nil
	return s.snapshot(c)
}

// checkout turns the active cart into an order, takes the stock and leaves
// the user with a fresh empty cart.
func (s *store) checkout(userID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.activeCart(userID)
	if len(c.lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	for _, l := range c.lines {
		p, ok := s.products[l.productID]
		if !ok {
			return domain.Order{}, ErrNotFound
		}
		if p.Stock < l.quantity {
			return domain.Order{}, fmt.Errorf("%w for %s", ErrInsufficientStock, p.Name)
		}
	}

	snap := s.snapshot(c)
	order := domain.Order{
		ID:     s.id("order"),
		UserID: userID,
		Total:  snap.Totals.Gross,
		Status: orderCreated,
		Items:  make([]domain.OrderItem, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		p := s.products[l.productID]
		p.Stock -= l.quantity
		name := p.Name
		order.Items = append(order.Items, domain.OrderItem{
			ID:          s.id("order_item"),
			ProductID:   l.productID,
			Quantity:    l.quantity,
			UnitPrice:   l.unitPrice,
			VATRate:     p.VATRate,
			ProductName: &name,
		})
	}

	c.status = cartConverted
	delete(s.carts, userID)
	s.orders = append(s.orders, order)
	return order, nil
}

// listOrders returns the user's orders, newest first.
func (s *store) listOrders(userID int64) []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Order, 0)
	for i := len(s.orders) - 1; i >= 0; i-- {
		if s.orders[i].UserID == userID {
			out = append(out, s.orders[i])
		}
	}
	return out
}

func (s *store) order(userID, orderID int64) (domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID != orderID {
			continue
		}
		if o.UserID != userID {
			return domain.Order{}, ErrForbidden
		}
		return o, nil
	}
	return domain.Order{}, ErrNotFound
}

// snapshot prices the cart. VAT is rounded per line to cents, so the totals
// always satisfy gross = net + vat. Callers hold s.mu.
func (s *store) snapshot(c *cart) domain.Cart {
	out := domain.Cart{
		ID:     c.id,
		Status: c.status,
		Items:  make([]domain.CartItem, 0, len(c.lines)),
		Totals: domain.Totals{Net: decimal.Zero, VAT: decimal.Zero, Gross: decimal.Zero},
	}
	for _, l := range c.lines {
		p := s.products[l.productID]
		qty := decimal.NewFromInt(int64(l.quantity))
		net := l.unitPrice.Mul(qty).Round(2)
		vat := net.Mul(p.VATRate).Div(hundred).Round(2)
		gross := net.Add(vat)

		out.Items = append(out.Items, domain.CartItem{
			ID:        l.id,
			ProductID: l.productID,
			Quantity:  l.quantity,
			UnitPrice: l.unitPrice,
			LineNet:   net,
			LineVAT:   vat,
			LineGross: gross,
			Product:   *p,
		})
		out.Totals.Net = out.Totals.Net.Add(net)
		out.Totals.VAT = out.Totals.VAT.Add(vat)
	}
	out.Totals.Gross = out.Totals.Net.Add(out.Totals.VAT)
	return out
}
