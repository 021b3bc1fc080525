package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

type mockAuthAPI struct {
	m          sync.Mutex
	result     domain.LoginResult
	loginErr   error
	registered []domain.Registration
	calls      int
}

func (m *mockAuthAPI) Login(context.Context, domain.Credentials) (domain.LoginResult, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.loginErr != nil {
		return domain.LoginResult{}, m.loginErr
	}
	return m.result, nil
}

func (m *mockAuthAPI) Register(_ context.Context, reg domain.Registration) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	m.registered = append(m.registered, reg)
	return nil
}

func newSession(api *mockAuthAPI, store *mockStore) *SessionService {
	return NewSessionService(api, store, discardLogger())
}

func TestLogin_PersistsSession(t *testing.T) {
	api := &mockAuthAPI{result: domain.LoginResult{
		Token: "tok",
		User:  &domain.User{ID: 4, Name: "Ana", Email: "ana@example.com"},
	}}
	store := newMockStore()
	svc := newSession(api, store)

	user, err := svc.Login(context.Background(), "ana@example.com", "secreto")

	require.NoError(t, err)
	assert.Equal(t, int64(4), user.ID)
	assert.True(t, svc.Authenticated())
	assert.Equal(t, "tok", svc.Token())

	token, _ := store.raw(storage.KeyToken)
	assert.Equal(t, `"tok"`, token)
	stored, _ := store.raw(storage.KeyUser)
	assert.JSONEq(t, `{"id":4,"nombre":"Ana","email":"ana@example.com"}`, stored)
}

func TestLogin_RejectedLeavesSession(t *testing.T) {
	rejected := errors.New("credenciales inválidas")
	api := &mockAuthAPI{loginErr: rejected}
	store := newMockStore()
	svc := newSession(api, store)

	_, err := svc.Login(context.Background(), "ana@example.com", "mal")

	assert.ErrorIs(t, err, rejected)
	assert.False(t, svc.Authenticated())
	assert.Equal(t, 0, store.saves)
}

func TestRestore(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		user      string
		wantAuth  bool
		wantClean bool
	}{
		{name: "anonymous"},
		{name: "complete", token: `"tok"`, user: `{"id":1,"nombre":"Ana"}`, wantAuth: true},
		{name: "token only", token: `"tok"`, wantClean: true},
		{name: "user only", user: `{"id":1}`, wantClean: true},
		{name: "malformed user", token: `"tok"`, user: `{"id":`, wantClean: true},
		{name: "malformed token", token: `tok`, user: `{"id":1}`, wantClean: true},
		{name: "empty token", token: `""`, user: `{"id":1}`, wantClean: true},
		{name: "null user", token: `"tok"`, user: `null`, wantClean: true},
		{name: "empty user", token: `"tok"`, user: `{}`, wantClean: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			if tt.token != "" {
				store.put(storage.KeyToken, tt.token)
			}
			if tt.user != "" {
				store.put(storage.KeyUser, tt.user)
			}
			svc := newSession(&mockAuthAPI{}, store)

			require.NoError(t, svc.Restore(context.Background()))

			assert.Equal(t, tt.wantAuth, svc.Authenticated())
			if tt.wantClean {
				_, hasToken := store.raw(storage.KeyToken)
				_, hasUser := store.raw(storage.KeyUser)
				assert.False(t, hasToken)
				assert.False(t, hasUser)
			}
		})
	}
}

func TestLogout(t *testing.T) {
	store := newMockStore()
	store.put(storage.KeyToken, `"tok"`)
	store.put(storage.KeyUser, `{"id":1}`)
	svc := newSession(&mockAuthAPI{}, store)
	require.NoError(t, svc.Restore(context.Background()))
	require.True(t, svc.Authenticated())

	svc.Logout(context.Background())
	svc.Logout(context.Background())

	assert.False(t, svc.Authenticated())
	assert.Nil(t, svc.Current())
	_, hasToken := store.raw(storage.KeyToken)
	assert.False(t, hasToken)
}

func TestRegister_Validation(t *testing.T) {
	valid := RegisterRequest{
		Name:            "Luis",
		Email:           "luis@example.com",
		Password:        "123456",
		ConfirmPassword: "123456",
		Address:         "Calle 1",
		Phone:           "555",
	}

	tests := []struct {
		name    string
		mutate  func(r *RegisterRequest)
		wantErr error
	}{
		{name: "valid", mutate: func(r *RegisterRequest) {}},
		{name: "mismatch", mutate: func(r *RegisterRequest) { r.ConfirmPassword = "654321" }, wantErr: ErrPasswordMismatch},
		{name: "mismatch wins over length", mutate: func(r *RegisterRequest) {
			r.Password = "123"
			r.ConfirmPassword = "1234"
		}, wantErr: ErrPasswordMismatch},
		{name: "too short", mutate: func(r *RegisterRequest) {
			r.Password = "12345"
			r.ConfirmPassword = "12345"
		}, wantErr: ErrPasswordTooShort},
		{name: "bad email", mutate: func(r *RegisterRequest) { r.Email = "luis" }, wantErr: ErrInvalidRegistration},
		{name: "missing name", mutate: func(r *RegisterRequest) { r.Name = "" }, wantErr: ErrInvalidRegistration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAuthAPI{}
			svc := newSession(api, newMockStore())
			req := valid
			tt.mutate(&req)

			err := svc.Register(context.Background(), req)

			if tt.wantErr == nil {
				require.NoError(t, err)
				require.Len(t, api.registered, 1)
				assert.Equal(t, domain.Registration{
					Name:     "Luis",
					Email:    "luis@example.com",
					Password: "123456",
					Address:  "Calle 1",
					Phone:    "555",
				}, api.registered[0])
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, 0, api.calls)
		})
	}
}

func TestRegister_DoesNotLogIn(t *testing.T) {
	svc := newSession(&mockAuthAPI{}, newMockStore())

	err := svc.Register(context.Background(), RegisterRequest{
		Name:            "Luis",
		Email:           "luis@example.com",
		Password:        "123456",
		ConfirmPassword: "123456",
	})

	require.NoError(t, err)
	assert.False(t, svc.Authenticated())
}

func TestSession_ReturnsCopy(t *testing.T) {
	api := &mockAuthAPI{result: domain.LoginResult{Token: "tok", User: &domain.User{ID: 1, Name: "Ana"}}}
	svc := newSession(api, newMockStore())
	_, err := svc.Login(context.Background(), "a", "b")
	require.NoError(t, err)

	svc.Current().Name = "changed"

	assert.Equal(t, "Ana", svc.Current().Name)
}
