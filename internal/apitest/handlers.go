package apitest

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type ctxKey string

const userIDKey ctxKey = "user_id"

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /products") {
		return
	}
	s.mu.Lock()
	products := append([]domain.Product{}, s.products...)
	envelope := s.envelope
	s.mu.Unlock()

	if envelope {
		respondJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Productos obtenidos",
			"data":    products,
		})
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (s *Server) availableProducts(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /products/available") {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Product{}
	for _, p := range s.products {
		if p.InStock() {
			out = append(out, p)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /products/search") {
		return
	}
	name := strings.ToLower(r.URL.Query().Get("nombre"))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.Product{}
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.Name), name) {
			out = append(out, p)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /products/{productID}") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id de producto inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := domain.FindProduct(s.products, id)
	if !ok {
		respondError(w, http.StatusNotFound, "Producto no encontrado")
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "POST /auth/login") {
		return
	}
	var creds domain.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[creds.Email]
	if !ok || acc.password != creds.Password {
		respondError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	user := acc.user
	respondJSON(w, http.StatusOK, domain.LoginResult{Token: s.issueToken(user.ID), User: &user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "POST /auth/register") {
		return
	}
	var reg domain.Registration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.accounts[reg.Email]; exists {
		respondError(w, http.StatusConflict, "El email ya está registrado")
		return
	}
	user := domain.User{
		ID:      s.nextUser,
		Name:    reg.Name,
		Email:   reg.Email,
		Address: reg.Address,
		Phone:   reg.Phone,
	}
	s.nextUser++
	s.accounts[reg.Email] = account{password: reg.Password, user: user}
	respondJSON(w, http.StatusCreated, user)
}

func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "Token requerido")
			return
		}

		s.mu.Lock()
		userID, ok := s.tokens[token]
		s.mu.Unlock()

		if !ok {
			respondError(w, http.StatusUnauthorized, "Token inválido")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "POST /orders") {
		return
	}
	var req struct {
		UserID int64 `json:"usuarioId"`
		Items  []struct {
			ProductID int64 `json:"productoId"`
			Quantity  int   `json:"cantidad"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "El pedido no tiene productos")
		return
	}
	if req.UserID != userFromContext(r.Context()) {
		respondError(w, http.StatusForbidden, "Usuario no autorizado")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// validate everything before touching stock
	items := make([]domain.OrderRecordItem, 0, len(req.Items))
	for _, it := range req.Items {
		idx, ok := s.findProduct(it.ProductID)
		if !ok {
			respondError(w, http.StatusNotFound, "Producto no encontrado")
			return
		}
		if it.Quantity <= 0 || it.Quantity > s.products[idx].Stock {
			respondError(w, http.StatusBadRequest, "Stock insuficiente para "+s.products[idx].Name)
			return
		}
		p := s.products[idx]
		items = append(items, domain.OrderRecordItem{
			ID:       int64(len(items) + 1),
			Product:  &p,
			Quantity: it.Quantity,
			Price:    p.Price,
		})
	}
	for _, it := range items {
		idx, _ := s.findProduct(it.Product.ID)
		s.products[idx].Stock -= it.Quantity
	}

	rec := domain.OrderRecord{
		ID:        s.nextOrd,
		CreatedAt: "2026-01-01T10:00:00",
		Total:     orderTotal(items),
		Status:    domain.OrderStatusPending,
		Items:     items,
	}
	s.nextOrd++
	s.orders = append(s.orders, placedOrder{owner: req.UserID, rec: rec})
	respondJSON(w, http.StatusCreated, rec)
}

func (s *Server) listUserOrders(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /orders/user/{userID}") {
		return
	}
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id de usuario inválido")
		return
	}
	if userID != userFromContext(r.Context()) {
		respondError(w, http.StatusForbidden, "Usuario no autorizado")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := []domain.OrderRecord{}
	for _, o := range s.orders {
		if o.owner == userID {
			out = append(out, o.rec)
		}
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "GET /orders/{orderID}") {
		return
	}
	s.withOrder(w, r, func(o *domain.OrderRecord) {
		respondJSON(w, http.StatusOK, o)
	})
}

func (s *Server) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if s.failed(w, "PUT /orders/{orderID}/cancel") {
		return
	}
	s.withOrder(w, r, func(o *domain.OrderRecord) {
		if !o.Status.Cancellable() {
			respondError(w, http.StatusConflict, "El pedido no puede ser cancelado")
			return
		}
		o.Status = domain.OrderStatusCancelled
		respondJSON(w, http.StatusOK, o)
	})
}

func (s *Server) withOrder(w http.ResponseWriter, r *http.Request, fn func(o *domain.OrderRecord)) {
	id, err := strconv.ParseInt(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "id de pedido inválido")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.orders {
		if s.orders[i].rec.ID != id {
			continue
		}
		if s.orders[i].owner != userFromContext(r.Context()) {
			respondError(w, http.StatusForbidden, "Usuario no autorizado")
			return
		}
		fn(&s.orders[i].rec)
		return
	}
	respondError(w, http.StatusNotFound, "Pedido no encontrado")
}

func userFromContext(ctx context.Context) int64 {
	if id, ok := ctx.Value(userIDKey).(int64); ok {
		return id
	}
	return 0
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// respondError writes the {message} body the storefront reads; an empty
// message writes an empty object.
func respondError(w http.ResponseWriter, status int, message string) {
	body := map[string]string{}
	if message != "" {
		body["message"] = message
	}
	respondJSON(w, status, body)
}
