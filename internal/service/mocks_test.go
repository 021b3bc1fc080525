package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var errStoreDown = errors.New("store down")

type mockCatalog struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
	calls    int
}

func (m *mockCatalog) ListProducts(context.Context) ([]domain.Product, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Product(nil), m.products...), nil
}

func (m *mockCatalog) setStock(id int64, stock int) {
	m.m.Lock()
	defer m.m.Unlock()
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Stock = stock
		}
	}
}

func (m *mockCatalog) callCount() int {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.calls
}

type mockAuth struct {
	authenticated bool
}

func (m mockAuth) Authenticated() bool { return m.authenticated }

// mockStore keeps raw JSON per key, like the real backends.
type mockStore struct {
	m       sync.RWMutex
	data    map[string][]byte
	saveErr error
	loadErr error
	saves   int
	deletes int
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string][]byte)}
}

func (m *mockStore) Load(_ context.Context, key string, out any) (bool, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.loadErr != nil {
		return false, m.loadErr
	}
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *mockStore) Save(_ context.Context, key string, value any) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	return nil
}

func (m *mockStore) Delete(_ context.Context, key string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.deletes++
	delete(m.data, key)
	return nil
}

func (m *mockStore) Close() error { return nil }

func (m *mockStore) raw(key string) (string, bool) {
	m.m.RLock()
	defer m.m.RUnlock()
	v, ok := m.data[key]
	return string(v), ok
}

func (m *mockStore) put(key, raw string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.data[key] = []byte(raw)
}

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Café", Price: decimal.NewFromInt(10), Stock: 2, Image: "cafe.png"},
		{ID: 2, Name: "Taza", Price: decimal.RequireFromString("7.25"), Stock: 0},
		{ID: 3, Name: "Tetera", Price: decimal.NewFromInt(30), Stock: 5},
	}
}
