package client

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, failures uint32) *Client {
	t.Helper()
	c, err := New(Config{
		Name:            "shop",
		BaseURL:         baseURL,
		Logger:          log.New(io.Discard, "", 0),
		BreakerFailures: failures,
	})
	require.NoError(t, err)
	return c
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(Config{Name: "shop", BaseURL: "not a url"})
	assert.Error(t, err)

	_, err = New(Config{Name: "shop", BaseURL: "::"})
	assert.Error(t, err)
}

func TestDo_HeadersAndPath(t *testing.T) {
	type seen struct {
		path   string
		header http.Header
		body   string
	}
	ch := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		ch <- seen{path: r.URL.Path, header: r.Header.Clone(), body: string(data)}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/api", 0)
	err := c.DoJSON(context.Background(), Request{
		Method: http.MethodPost,
		Path:   "/orders",
		Token:  "abc",
		Body:   map[string]int{"usuarioId": 7},
	}, nil)
	require.NoError(t, err)

	got := <-ch
	assert.Equal(t, "/api/orders", got.path)
	assert.Equal(t, "Bearer abc", got.header.Get("Authorization"))
	assert.Equal(t, "application/json", got.header.Get("Content-Type"))
	_, err = uuid.Parse(got.header.Get(HeaderRequestID))
	assert.NoError(t, err)
	assert.JSONEq(t, `{"usuarioId":7}`, got.body)
}

func TestDo_NoBodyNoContentType(t *testing.T) {
	type seen struct {
		query  string
		header http.Header
	}
	ch := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ch <- seen{query: r.URL.RawQuery, header: r.Header.Clone()}
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	var out []int
	err := c.DoJSON(context.Background(), Request{
		Method: http.MethodGet,
		Path:   "/products/search",
		Query:  map[string][]string{"nombre": {"café"}},
	}, &out)

	require.NoError(t, err)
	got := <-ch
	assert.Equal(t, "nombre=caf%C3%A9", got.query)
	assert.Empty(t, got.header.Get("Content-Type"))
	assert.Empty(t, got.header.Get("Authorization"))
}

func TestDo_APIErrorWithMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Credenciales inválidas"}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	err := c.DoJSON(context.Background(), Request{Method: http.MethodPost, Path: "/auth/login"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Credenciales inválidas", apiErr.Message)
}

func TestDo_APIErrorWithoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 0)
	err := c.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/products"}, nil)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Empty(t, apiErr.Message)
	assert.Contains(t, apiErr.Error(), "unexpected status 500")
}

func TestDo_ServerErrorsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	for i := 0; i < 5; i++ {
		err := c.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/products"}, nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestDo_TransportFailuresOpenBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := c.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/products"}, nil)
		require.Error(t, err)
		assert.False(t, errors.Is(err, gobreaker.ErrOpenState))
	}

	err := c.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/products"}, nil)
	assert.True(t, errors.Is(err, gobreaker.ErrOpenState))
}

func TestDo_CancelledCallsDoNotOpenBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 4; i++ {
		err := c.DoJSON(ctx, Request{Method: http.MethodGet, Path: "/products"}, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, context.Canceled))
	}

	err := c.DoJSON(context.Background(), Request{Method: http.MethodGet, Path: "/products"}, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestDecodeBody(t *testing.T) {
	type item struct {
		ID int `json:"id"`
	}

	tests := []struct {
		name    string
		body    string
		want    []item
		wantErr bool
	}{
		{name: "bare array", body: `[{"id":1},{"id":2}]`, want: []item{{1}, {2}}},
		{name: "envelope", body: `{"success":true,"message":"ok","data":[{"id":1},{"id":2}]}`, want: []item{{1}, {2}}},
		{name: "empty body", body: "  ", want: nil},
		{name: "garbage", body: `{"id":`, wantErr: true},
		{name: "object instead of list", body: `{"success":false,"message":"x"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []item
			err := decodeBody(strings.NewReader(tt.body), &got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeBody_ObjectWithoutEnvelope(t *testing.T) {
	var got struct {
		Token string `json:"token"`
	}
	require.NoError(t, decodeBody(strings.NewReader(`{"token":"t1"}`), &got))
	assert.Equal(t, "t1", got.Token)
}
