package service

import (
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var (
	ErrNotAuthenticated    = errors.New("user is not authenticated")
	ErrCartEmpty           = errors.New("cart is empty, nothing to checkout")
	ErrProductNotFound     = errors.New("product not found in catalog")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidRegistration = errors.New("invalid registration")

	// ErrNotPersisted marks a change that was applied in memory but could not
	// be written to the local store.
	ErrNotPersisted = errors.New("state not persisted")
)

// Cart rule violations, so callers only need this package to classify errors.
var (
	ErrOutOfStock        = domain.ErrOutOfStock
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrItemNotInCart     = domain.ErrItemNotInCart
	ErrInvalidQuantity   = domain.ErrInvalidQuantity
)
