package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

type ProductCatalog interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type Authenticator interface {
	Authenticated() bool
}

// CartService owns the in-memory cart. Every mutation is checked against a
// freshly fetched catalog, written through to the store, and then announced
// to subscribers.
type CartService struct {
	catalog ProductCatalog
	auth    Authenticator
	store   storage.Store
	logger  *log.Logger

	mu        sync.Mutex
	cart      domain.Cart
	listeners []func(domain.Cart)
}

func NewCartService(catalog ProductCatalog, auth Authenticator, store storage.Store, logger *log.Logger) *CartService {
	return &CartService{
		catalog: catalog,
		auth:    auth,
		store:   store,
		logger:  logger,
	}
}

// Load replaces the in-memory cart with the persisted one. A missing or
// unreadable value leaves an empty cart.
func (s *CartService) Load(ctx context.Context) error {
	var cart domain.Cart
	found, err := s.store.Load(ctx, storage.KeyCart, &cart)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.cart = domain.Cart{}
		return fmt.Errorf("load cart: %w", err)
	}
	if !found {
		cart = domain.Cart{}
	}
	s.cart = cart
	return nil
}

// Subscribe registers fn to receive a snapshot after every mutation.
func (s *CartService) Subscribe(fn func(domain.Cart)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *CartService) Cart() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Count()
}

func (s *CartService) Summary() domain.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Summary()
}

// Add puts one unit of productID in the cart.
func (s *CartService) Add(ctx context.Context, productID int64) error {
	if !s.auth.Authenticated() {
		return ErrNotAuthenticated
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}

	// a product missing from the catalog can't be sold either
	p, ok := domain.FindProduct(products, productID)
	if !ok {
		return ErrOutOfStock
	}

	return s.mutate(ctx, func(c *domain.Cart) error {
		return c.AddProduct(p)
	})
}

// UpdateQuantity applies a quantity typed by the user.
func (s *CartService) UpdateQuantity(ctx context.Context, productID int64, raw string) error {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidQuantity, raw)
	}
	return s.SetQuantity(ctx, productID, n)
}

// SetQuantity sets the quantity of an item already in the cart. Zero or less
// removes it.
func (s *CartService) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity <= 0 {
		return s.Remove(ctx, productID)
	}

	s.mu.Lock()
	_, inCart := s.cart.Find(productID)
	s.mu.Unlock()
	if !inCart {
		return ErrItemNotInCart
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	p, ok := domain.FindProduct(products, productID)
	if !ok {
		return ErrProductNotFound
	}

	return s.mutate(ctx, func(c *domain.Cart) error {
		return c.SetQuantity(p, quantity)
	})
}

// Remove drops productID from the cart. Removing an absent item succeeds.
func (s *CartService) Remove(ctx context.Context, productID int64) error {
	return s.mutate(ctx, func(c *domain.Cart) error {
		c.Remove(productID)
		return nil
	})
}

func (s *CartService) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// mutate applies fn to the cart and writes the result through. A rejected
// change leaves the cart untouched. A failed write keeps the change in memory
// and is returned after listeners have run.
func (s *CartService) mutate(ctx context.Context, fn func(c *domain.Cart) error) error {
	s.mu.Lock()
	next := s.cart.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cart = next
	snapshot := next.Clone()
	errSave := s.store.Save(ctx, storage.KeyCart, snapshot)
	listeners := append([]func(domain.Cart){}, s.listeners...)
	s.mu.Unlock()

	if errSave != nil {
		s.logger.Printf("cart persist error: %v", errSave)
	}
	for _, fn := range listeners {
		fn(snapshot.Clone())
	}
	if errSave != nil {
		return fmt.Errorf("%w: cart: %w", ErrNotPersisted, errSave)
	}
	return nil
}
