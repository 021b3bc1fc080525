package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (domain.LoginResult, error)
	Register(ctx context.Context, reg domain.Registration) error
}

// RegisterRequest is the sign-up form as typed by the user.
type RegisterRequest struct {
	Name            string `validate:"required"`
	Email           string `validate:"required,email"`
	Password        string `validate:"min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
	Address         string
	Phone           string
}

// SessionService holds the logged-in user and bearer token, mirrored to the
// token and user store keys.
type SessionService struct {
	api      AuthAPI
	store    storage.Store
	logger   *log.Logger
	validate *validator.Validate

	mu      sync.RWMutex
	session domain.Session
}

func NewSessionService(api AuthAPI, store storage.Store, logger *log.Logger) *SessionService {
	return &SessionService{
		api:      api,
		store:    store,
		logger:   logger,
		validate: validator.New(),
	}
}

// Restore loads the persisted session. Anything short of a readable token and
// user pair is wiped so the next run starts anonymous.
func (s *SessionService) Restore(ctx context.Context) error {
	var token string
	hasToken, err := s.store.Load(ctx, storage.KeyToken, &token)
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}
	var user *domain.User
	hasUser, err := s.store.Load(ctx, storage.KeyUser, &user)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	// a stored null or {} decodes fine but names nobody
	hasUser = hasUser && user != nil && user.ID != 0

	if hasToken && token != "" && hasUser {
		s.mu.Lock()
		s.session = domain.Session{User: user, Token: token}
		s.mu.Unlock()
		return nil
	}

	if hasToken || hasUser {
		s.logger.Printf("discarding partial session (token=%t user=%t)", hasToken, hasUser)
	}
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()
	s.clearStored(ctx)
	return nil
}

func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, error) {
	res, err := s.api.Login(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return domain.User{}, err
	}

	user := *res.User
	s.mu.Lock()
	s.session = domain.Session{User: &user, Token: res.Token}
	s.mu.Unlock()

	if err := s.store.Save(ctx, storage.KeyToken, res.Token); err != nil {
		return user, fmt.Errorf("%w: token: %w", ErrNotPersisted, err)
	}
	if err := s.store.Save(ctx, storage.KeyUser, user); err != nil {
		return user, fmt.Errorf("%w: user: %w", ErrNotPersisted, err)
	}
	return user, nil
}

// Register creates an account. It does not log the user in.
func (s *SessionService) Register(ctx context.Context, req RegisterRequest) error {
	if err := s.validate.Struct(req); err != nil {
		return registrationError(err)
	}

	return s.api.Register(ctx, domain.Registration{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Address:  req.Address,
		Phone:    req.Phone,
	})
}

// Logout always succeeds; storage failures are only logged.
func (s *SessionService) Logout(ctx context.Context) {
	s.mu.Lock()
	s.session = domain.Session{}
	s.mu.Unlock()
	s.clearStored(ctx)
}

func (s *SessionService) Session() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session.User == nil {
		return s.session
	}
	user := *s.session.User
	return domain.Session{User: &user, Token: s.session.Token}
}

func (s *SessionService) Current() *domain.User {
	return s.Session().User
}

func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *SessionService) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Authenticated()
}

func (s *SessionService) clearStored(ctx context.Context) {
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Printf("session delete %s error: %v", key, err)
		}
	}
}

// registrationError picks the error shown for a failed form. A confirmation
// mismatch wins over everything else.
func registrationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "eqfield" {
			return ErrPasswordMismatch
		}
	}
	for _, fe := range verrs {
		if fe.Field() == "Password" {
			return ErrPasswordTooShort
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRegistration, verrs[0].Field())
}
