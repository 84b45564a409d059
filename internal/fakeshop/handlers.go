package fakeshop

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignupRequestDTO struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name"`
}

type TokenResponseDTO struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int `json:"quantity"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	u, err := s.store.authenticate(req.Email, req.Password)
	if err != nil {
		handleStoreError(w, err)
		return
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "internal_error", "could not issue token")
		return
	}
	respondJSON(w, http.StatusOK, TokenResponseDTO{AccessToken: token, TokenType: "bearer"})
}

func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if !strings.Contains(req.Email, "@") || len(req.Password) < 6 {
		respondError(w, http.StatusBadRequest, "invalid_request", "valid email and a password of at least 6 characters are required")
		return
	}

	u, err := s.store.signup(req.Email, req.Password, req.FullName, false)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	u, err := s.store.user(getUserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "unknown user")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

// GET /products?q=<term>&category_id=<id>
func (s *Server) ListProducts(w http.ResponseWriter, r *http.Request) {
	var categoryID *int64
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_category_id", "category_id must be an integer")
			return
		}
		categoryID = &id
	}
	respondJSON(w, http.StatusOK, s.store.listProducts(r.URL.Query().Get("q"), categoryID))
}

func (s *Server) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "id must be a positive integer")
		return
	}
	p, err := s.store.product(id)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listCategories())
}

func (s *Server) GetCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.getCart(getUserIDFromContext(r.Context())))
}

func (s *Server) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	c, err := s.store.addItem(getUserIDFromContext(r.Context()), req.ProductID, req.Quantity)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := s.store.updateItem(getUserIDFromContext(r.Context()), id, req.Quantity)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_item_id", "id must be a positive integer")
		return
	}

	c, err := s.store.removeItem(getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

func (s *Server) ClearCart(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.clearCart(getUserIDFromContext(r.Context())))
}

func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	order, err := s.store.checkout(getUserIDFromContext(r.Context()))
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, order)
}

// GET /orders, newest first
func (s *Server) ListOrders(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.store.listOrders(getUserIDFromContext(r.Context())))
}

func (s *Server) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "id must be a positive integer")
		return
	}

	order, err := s.store.order(getUserIDFromContext(r.Context()), id)
	if err != nil {
		handleStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}
