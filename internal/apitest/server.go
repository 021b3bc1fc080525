// Package apitest runs an in-process fake of the shop REST API for tests.
package apitest

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// Recorded is one request seen by the fake, keyed by its route pattern.
type Recorded struct {
	Method string
	Route  string
	Path   string
	Header http.Header
	Body   []byte
}

type account struct {
	password string
	user     domain.User
}

type placedOrder struct {
	owner int64
	rec   domain.OrderRecord
}

type failure struct {
	status  int
	message string
}

type Server struct {
	srv *httptest.Server

	mu       sync.Mutex
	envelope bool
	products []domain.Product
	accounts map[string]account
	tokens   map[string]int64
	orders   []placedOrder
	nextUser int64
	nextOrd  int64
	failures map[string]failure
	requests []Recorded
}

// New starts a fake API and stops it when the test ends.
func New(t testing.TB) *Server {
	s := &Server{
		accounts: make(map[string]account),
		tokens:   make(map[string]int64),
		failures: make(map[string]failure),
		nextUser: 1,
		nextOrd:  1,
	}
	s.srv = httptest.NewServer(s.router())
	t.Cleanup(s.srv.Close)
	return s
}

// URL is the API base, including the /api prefix.
func (s *Server) URL() string {
	return s.srv.URL + "/api"
}

// Close stops the server early, which makes every later call a transport error.
func (s *Server) Close() {
	s.srv.Close()
}

// UseEnvelope switches product list bodies to the {success,message,data} form.
func (s *Server) UseEnvelope(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.envelope = on
}

func (s *Server) SetProducts(products ...domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append([]domain.Product(nil), products...)
}

// SetStock changes the stock of a product between client calls.
func (s *Server) SetStock(id int64, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i].Stock = stock
		}
	}
}

func (s *Server) RemoveProduct(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
}

// AddUser registers an account and returns a valid token for it.
func (s *Server) AddUser(u domain.User, password string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.nextUser
	}
	if u.ID >= s.nextUser {
		s.nextUser = u.ID + 1
	}
	s.accounts[u.Email] = account{password: password, user: u}
	return s.issueToken(u.ID)
}

// Fail makes every request on route answer with status and message until
// ClearFailures. Route is "METHOD /pattern", e.g. "POST /orders".
func (s *Server) Fail(route string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, message: message}
}

func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = make(map[string]failure)
}

// Calls counts the requests seen on route, in the same form as Fail.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Method+" "+r.Route == route {
			n++
		}
	}
	return n
}

// TotalCalls counts every request seen so far.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

func (s *Server) Orders() []domain.OrderRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.OrderRecord, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.rec)
	}
	return out
}

func (s *Server) Product(id int64) (domain.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.FindProduct(s.products, id)
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.listProducts)
			r.Get("/available", s.availableProducts)
			r.Get("/search", s.searchProducts)
			r.Get("/{productID}", s.getProduct)
		})
		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", s.login)
			r.Post("/register", s.register)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Use(s.requireBearer)
			r.Post("/", s.createOrder)
			r.Get("/user/{userID}", s.listUserOrders)
			r.Get("/{orderID}", s.getOrder)
			r.Put("/{orderID}/cancel", s.cancelOrder)
		})
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		next.ServeHTTP(w, r)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Route:  routeOf(r),
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
	})
}

// failed answers with the failure registered for route, if any.
func (s *Server) failed(w http.ResponseWriter, route string) bool {
	s.mu.Lock()
	f, ok := s.failures[route]
	s.mu.Unlock()

	if ok {
		respondError(w, f.status, f.message)
	}
	return ok
}

func (s *Server) issueToken(userID int64) string {
	token := fmt.Sprintf("token-%d-%d", userID, len(s.tokens)+1)
	s.tokens[token] = userID
	return token
}

func (s *Server) findProduct(id int64) (int, bool) {
	for i := range s.products {
		if s.products[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

func routeOf(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return r.URL.Path
	}
	return trimAPI(rctx.RoutePattern())
}

func trimAPI(pattern string) string {
	const prefix = "/api"
	if len(pattern) > len(prefix) && pattern[:len(prefix)] == prefix {
		pattern = pattern[len(prefix):]
	}
	// chi reports mounted roots with a trailing slash
	if len(pattern) > 1 && pattern[len(pattern)-1] == '/' {
		pattern = pattern[:len(pattern)-1]
	}
	return pattern
}

func orderTotal(items []domain.OrderRecordItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
