package service

import (
	"context"
	"fmt"
	"log"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

type OrderAPI interface {
	CreateOrder(ctx context.Context, token string, order domain.Order) (domain.OrderRecord, error)
	ListByUser(ctx context.Context, token string, userID int64) ([]domain.OrderRecord, error)
	GetOrder(ctx context.Context, token string, id int64) (domain.OrderRecord, error)
	CancelOrder(ctx context.Context, token string, id int64) (domain.OrderRecord, error)
}

type SessionReader interface {
	Session() domain.Session
}

type CartSource interface {
	Cart() domain.Cart
	Clear(ctx context.Context) error
}

type CheckoutService struct {
	orders  OrderAPI
	session SessionReader
	cart    CartSource
	logger  *log.Logger
}

func NewCheckoutService(orders OrderAPI, session SessionReader, cart CartSource, logger *log.Logger) *CheckoutService {
	return &CheckoutService{
		orders:  orders,
		session: session,
		cart:    cart,
		logger:  logger,
	}
}

// Checkout submits the cart as an order and empties it once the order service
// accepts. A refused order leaves the cart as it was.
func (s *CheckoutService) Checkout(ctx context.Context) (domain.OrderRecord, error) {
	sess := s.session.Session()
	if !sess.Authenticated() {
		return domain.OrderRecord{}, ErrNotAuthenticated
	}
	cart := s.cart.Cart()
	if cart.Len() == 0 {
		return domain.OrderRecord{}, ErrCartEmpty
	}

	rec, err := s.orders.CreateOrder(ctx, sess.Token, domain.NewOrder(sess.User.ID, cart))
	if err != nil {
		s.logger.Printf("create order error: %v", err)
		return domain.OrderRecord{}, err
	}

	if err := s.cart.Clear(ctx); err != nil {
		return rec, fmt.Errorf("order placed, clear cart: %w", err)
	}
	return rec, nil
}

// History lists the orders of the logged-in user.
func (s *CheckoutService) History(ctx context.Context) ([]domain.OrderRecord, error) {
	sess := s.session.Session()
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return s.orders.ListByUser(ctx, sess.Token, sess.User.ID)
}

func (s *CheckoutService) Get(ctx context.Context, id int64) (domain.OrderRecord, error) {
	sess := s.session.Session()
	if !sess.Authenticated() {
		return domain.OrderRecord{}, ErrNotAuthenticated
	}
	return s.orders.GetOrder(ctx, sess.Token, id)
}

func (s *CheckoutService) Cancel(ctx context.Context, id int64) (domain.OrderRecord, error) {
	sess := s.session.Session()
	if !sess.Authenticated() {
		return domain.OrderRecord{}, ErrNotAuthenticated
	}
	return s.orders.CancelOrder(ctx, sess.Token, id)
}
